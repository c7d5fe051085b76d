package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateItemRequest is the body of POST /trips/{id}/items.
type CreateItemRequest struct {
	Title         string          `json:"title"`
	ItemType      domain.ItemType `json:"item_type"`
	StartDatetime *time.Time      `json:"start_datetime"`
	EndDatetime   *time.Time      `json:"end_datetime"`
	LocationName  string          `json:"location_name"`
	Cost          *float64        `json:"cost"`
	Notes         string          `json:"notes"`
	SortOrder     *int            `json:"sort_order"`
}

// UpdateItemRequest is the body of PATCH /trips/{id}/items/{itemId}.
// EndDatetime is kept raw so an explicit null can clear the end time while
// an omitted field leaves it unchanged.
type UpdateItemRequest struct {
	Title         *string          `json:"title"`
	ItemType      *domain.ItemType `json:"item_type"`
	StartDatetime *time.Time       `json:"start_datetime"`
	EndDatetime   json.RawMessage  `json:"end_datetime"`
	LocationName  *string          `json:"location_name"`
	Cost          *float64         `json:"cost"`
	Notes         *string          `json:"notes"`
	SortOrder     *int             `json:"sort_order"`
}

// ReorderItemsRequest is the body of PUT /trips/{id}/items/order.
type ReorderItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// ItemList is the body of GET /trips/{id}/items.
type ItemList struct {
	Data []domain.TripItem `json:"data"`
}

// CreateItem handles POST /trips/{id}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body CreateItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	draft := domain.ItemDraft{
		Title:        body.Title,
		ItemType:     body.ItemType,
		EndDatetime:  body.EndDatetime,
		LocationName: body.LocationName,
		Cost:         body.Cost,
		Notes:        body.Notes,
		SortOrder:    body.SortOrder,
	}
	if body.StartDatetime != nil {
		draft.StartDatetime = *body.StartDatetime
	}

	created, err := s.items.Create(r.Context(), tripID, draft)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListItems handles GET /trips/{id}/items.
// Items come back in itinerary order; an unknown trip yields an empty list.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	items, err := s.items.ListByTrip(r.Context(), tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, ItemList{Data: items})
}

// GetItem handles GET /trips/{id}/items/{itemId}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := itemPath(w, r)
	if !ok {
		return
	}

	item, err := s.items.GetByID(r.Context(), tripID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PATCH /trips/{id}/items/{itemId}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := itemPath(w, r)
	if !ok {
		return
	}
	var body UpdateItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	patch := domain.ItemPatch{
		Title:         body.Title,
		ItemType:      body.ItemType,
		StartDatetime: body.StartDatetime,
		LocationName:  body.LocationName,
		Cost:          body.Cost,
		Notes:         body.Notes,
		SortOrder:     body.SortOrder,
	}
	switch raw := bytes.TrimSpace(body.EndDatetime); {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		patch.ClearEndDatetime = true
	default:
		var end time.Time
		if err := json.Unmarshal(raw, &end); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "malformed request body: end_datetime: "+err.Error())
			return
		}
		patch.EndDatetime = &end
	}

	updated, err := s.items.Update(r.Context(), tripID, itemID, patch)
	if err != nil {
		s.writeServiceError(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /trips/{id}/items/{itemId}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := itemPath(w, r)
	if !ok {
		return
	}

	deleted, err := s.items.Delete(r.Context(), tripID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err, "item not found")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderItems handles PUT /trips/{id}/items/order.
// The listed items get sort_order equal to their position in item_ids.
func (s *Server) ReorderItems(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body ReorderItemsRequest
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.items.Reorder(r.Context(), tripID, body.ItemIDs); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itemPath(w http.ResponseWriter, r *http.Request) (tripID, itemID uuid.UUID, ok bool) {
	if tripID, ok = pathUUID(w, r, "id"); !ok {
		return
	}
	itemID, ok = pathUUID(w, r, "itemId")
	return
}
