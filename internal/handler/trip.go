package handler

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateTripRequest is the body of POST /trips.
// Dates are pointers so a missing field reaches validation as "required"
// instead of decoding to the zero date.
type CreateTripRequest struct {
	OwnerID     string              `json:"owner_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Status      domain.Status       `json:"status"`
	Destination string              `json:"destination"`
	Coordinates *domain.Coordinates `json:"coordinates"`
}

// UpdateTripRequest is the body of PATCH /trips/{id}. Omitted fields are kept.
type UpdateTripRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Status      *domain.Status      `json:"status"`
	Destination *string             `json:"destination"`
	Coordinates *domain.Coordinates `json:"coordinates"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []domain.Trip `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ListTripsParams holds the optional query parameters of GET /trips.
type ListTripsParams struct {
	Status *string
	Search *string
	Sort   *string
	Owner  *string
	Page   *int
	Limit  *int
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), requestToDraft(body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /trips.
// Supports ?status=, ?search=, ?sort=, ?owner= and the paging parameters
// ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, err := bindListTripsParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	filter := domain.ListFilter{
		OwnerID: deref(params.Owner),
		Status:  domain.Status(deref(params.Status)),
		Search:  deref(params.Search),
		Sort:    domain.SortKey(deref(params.Sort)),
	}
	page := domain.NewPaginationParams(params.Page, params.Limit)

	trips, total, err := s.trips.ListPaged(r.Context(), filter, page)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       trips,
		Pagination: Pagination{Page: page.Page, Limit: page.Limit, Total: total},
	})
}

// GetTripStats handles GET /trips/stats.
func (s *Server) GetTripStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.trips.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PATCH /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.Update(r.Context(), id, domain.TripPatch{
		Title:       body.Title,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Status:      body.Status,
		Destination: body.Destination,
		Coordinates: body.Coordinates,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /trips/{id}. Every item of the trip goes with it.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := s.trips.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func bindListTripsParams(r *http.Request) (ListTripsParams, error) {
	var p ListTripsParams
	q := r.URL.Query()
	for name, dst := range map[string]any{
		"status": &p.Status,
		"search": &p.Search,
		"sort":   &p.Sort,
		"owner":  &p.Owner,
		"page":   &p.Page,
		"limit":  &p.Limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dst); err != nil {
			return ListTripsParams{}, err
		}
	}
	return p, nil
}

func requestToDraft(body CreateTripRequest) domain.TripDraft {
	d := domain.TripDraft{
		OwnerID:     body.OwnerID,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Destination: body.Destination,
		Coordinates: body.Coordinates,
	}
	if body.StartDate != nil {
		d.StartDate = *body.StartDate
	}
	if body.EndDate != nil {
		d.EndDate = *body.EndDate
	}
	return d
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
