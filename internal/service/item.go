package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/query"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ItemService implements business logic for TripItem operations.
// It holds the trips repo as well because creating an item requires
// verifying that the parent trip exists.
type ItemService struct {
	trips repo.TripRepo
	items repo.ItemRepo
	options
}

// NewItemService constructs an ItemService backed by the provided repos.
func NewItemService(trips repo.TripRepo, items repo.ItemRepo, opts ...Option) *ItemService {
	return &ItemService{trips: trips, items: items, options: buildOptions(opts)}
}

// Create verifies the parent trip exists, validates the draft, then persists
// it and touches the trip's updated_at.
// Returns a *domain.ReferenceError (matching domain.ErrNotFound) if the trip
// does not exist and a *domain.ValidationError for invalid input.
func (s *ItemService) Create(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft) (domain.TripItem, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &domain.ReferenceError{Entity: "trip", ID: tripID}
		}
		return domain.TripItem{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}

	item := domain.TripItem{
		ID:            uuid.New(),
		TripID:        tripID,
		Title:         strings.TrimSpace(draft.Title),
		ItemType:      draft.ItemType,
		StartDatetime: draft.StartDatetime.UTC(),
		EndDatetime:   utcPtr(draft.EndDatetime),
		LocationName:  draft.LocationName,
		Cost:          cloneFloat(draft.Cost),
		Notes:         draft.Notes,
		SortOrder:     cloneInt(draft.SortOrder),
	}
	if item.ItemType == "" {
		item.ItemType = domain.ItemOther
	}
	if err := validateItem(item); err != nil {
		return domain.TripItem{}, err
	}

	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventItemCreated, TripID: tripID, ItemID: result.ID})
	return result, nil
}

// GetByID returns a single item scoped to tripID.
// Returns domain.ErrNotFound if no such item exists under that trip.
func (s *ItemService) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error) {
	result, err := s.items.GetByID(ctx, tripID, itemID)
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("service.ItemService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTrip returns the items of a trip: by sort_order when every item has
// one, otherwise by start_datetime, with ties in insertion order.
// An unknown trip yields an empty slice. The result is never nil.
func (s *ItemService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error) {
	items, err := s.items.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByTrip: %w", err)
	}
	out := query.SortItems(items)
	if out == nil {
		return []domain.TripItem{}, nil
	}
	return out, nil
}

// Update merges patch onto the stored item, re-validates it and touches the
// parent trip. Returns domain.ErrNotFound or a *domain.ValidationError.
func (s *ItemService) Update(ctx context.Context, tripID, itemID uuid.UUID, patch domain.ItemPatch) (domain.TripItem, error) {
	now := s.now()
	result, err := s.items.Update(ctx, tripID, itemID, func(it *domain.TripItem) error {
		applyItemPatch(it, patch)
		if err := validateItem(*it); err != nil {
			return err
		}
		if now.After(it.UpdatedAt) {
			it.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventItemUpdated, TripID: tripID, ItemID: itemID})
	return result, nil
}

// Delete removes one item. It reports false, without error, when the item
// does not exist under the given trip.
func (s *ItemService) Delete(ctx context.Context, tripID, itemID uuid.UUID) (bool, error) {
	err := s.items.Delete(ctx, tripID, itemID, s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventItemDeleted, TripID: tripID, ItemID: itemID})
	return true, nil
}

// Reorder sets each listed item's sort_order to its position in itemIDs.
// Items of the trip that are not listed keep their sort_order.
// Returns domain.ErrNotFound for an unknown trip and a *domain.ValidationError,
// with nothing changed, when an id is repeated or belongs to another trip.
func (s *ItemService) Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID) error {
	if err := s.items.Reorder(ctx, tripID, itemIDs, s.now()); err != nil {
		return fmt.Errorf("service.ItemService.Reorder: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventItemsReordered, TripID: tripID})
	return nil
}

func applyItemPatch(it *domain.TripItem, p domain.ItemPatch) {
	if p.Title != nil {
		it.Title = strings.TrimSpace(*p.Title)
	}
	if p.ItemType != nil {
		it.ItemType = *p.ItemType
	}
	if p.StartDatetime != nil {
		it.StartDatetime = p.StartDatetime.UTC()
	}
	if p.ClearEndDatetime {
		it.EndDatetime = nil
	}
	if p.EndDatetime != nil {
		it.EndDatetime = utcPtr(p.EndDatetime)
	}
	if p.LocationName != nil {
		it.LocationName = *p.LocationName
	}
	if p.Cost != nil {
		it.Cost = cloneFloat(p.Cost)
	}
	if p.Notes != nil {
		it.Notes = *p.Notes
	}
	if p.SortOrder != nil {
		it.SortOrder = cloneInt(p.SortOrder)
	}
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
