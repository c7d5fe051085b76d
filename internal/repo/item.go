package repo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

// ItemRepo defines the persistence operations for TripItems.
// Every single-item operation is scoped by tripID, and every write also
// advances the parent trip's UpdatedAt in the same store unit.
type ItemRepo interface {
	// Create appends a fully populated item. Returns a *domain.ReferenceError
	// (matching domain.ErrNotFound) when item.TripID does not exist; nothing
	// is written in that case.
	Create(ctx context.Context, item domain.TripItem) (domain.TripItem, error)

	// GetByID retrieves a single item scoped to tripID.
	// Returns domain.ErrNotFound if no such item exists under that trip.
	GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error)

	// ListByTripID returns the items of one trip in insertion order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error)

	// List returns every item of every trip in insertion order.
	List(ctx context.Context) ([]domain.TripItem, error)

	// Update applies mutate to a copy of the item and stores it in one unit.
	// ID, TripID and CreatedAt cannot be changed by mutate.
	// Returns domain.ErrNotFound if no such item exists under that trip.
	Update(ctx context.Context, tripID, itemID uuid.UUID, mutate func(*domain.TripItem) error) (domain.TripItem, error)

	// Delete removes one item and touches the parent trip at the given time.
	// Returns domain.ErrNotFound if no such item exists under that trip.
	Delete(ctx context.Context, tripID, itemID uuid.UUID, at time.Time) error

	// Reorder sets SortOrder to the position of each id in itemIDs.
	// Returns a *domain.ValidationError, without writing anything, if an id is
	// repeated or does not belong to the trip.
	Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID, at time.Time) error
}

// kvItemRepo is the key-value store implementation of ItemRepo.
type kvItemRepo struct {
	store *kvstore.Store
}

// NewItemRepo constructs an ItemRepo backed by the provided store.
func NewItemRepo(store *kvstore.Store) ItemRepo {
	return &kvItemRepo{store: store}
}

func (r *kvItemRepo) Create(ctx context.Context, item domain.TripItem) (domain.TripItem, error) {
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		trips, err := loadTrips(tx)
		if err != nil {
			return err
		}
		ti := tripIndex(trips, item.TripID)
		if ti < 0 {
			return &domain.ReferenceError{Entity: "trip", ID: item.TripID}
		}

		items, err := loadItems(tx)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(items, func(it domain.TripItem) bool { return it.ID == item.ID }) {
			return fmt.Errorf("trip item %s already exists", item.ID)
		}

		trips[ti].Touch(item.UpdatedAt)
		if err := saveTrips(tx, trips); err != nil {
			return err
		}
		return saveItems(tx, append(items, item))
	})
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}
	return item, nil
}

func (r *kvItemRepo) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error) {
	var items []domain.TripItem
	if _, err := r.store.Get(ctx, ItemsKey, &items); err != nil {
		return domain.TripItem{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	i := itemIndex(items, tripID, itemID)
	if i < 0 {
		return domain.TripItem{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", domain.ErrNotFound)
	}
	return items[i], nil
}

func (r *kvItemRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error) {
	var items []domain.TripItem
	if _, err := r.store.Get(ctx, ItemsKey, &items); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByTripID: %w", err)
	}
	return slices.DeleteFunc(items, func(it domain.TripItem) bool { return it.TripID != tripID }), nil
}

func (r *kvItemRepo) List(ctx context.Context) ([]domain.TripItem, error) {
	var items []domain.TripItem
	if _, err := r.store.Get(ctx, ItemsKey, &items); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.List: %w", err)
	}
	return items, nil
}

func (r *kvItemRepo) Update(ctx context.Context, tripID, itemID uuid.UUID, mutate func(*domain.TripItem) error) (domain.TripItem, error) {
	var result domain.TripItem
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		items, err := loadItems(tx)
		if err != nil {
			return err
		}
		i := itemIndex(items, tripID, itemID)
		if i < 0 {
			return domain.ErrNotFound
		}

		next := items[i]
		if err := mutate(&next); err != nil {
			return err
		}
		next.ID = items[i].ID
		next.TripID = items[i].TripID
		next.CreatedAt = items[i].CreatedAt

		items[i] = next
		result = next
		if err := touchTrip(tx, tripID, next.UpdatedAt); err != nil {
			return err
		}
		return saveItems(tx, items)
	})
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}
	return result, nil
}

func (r *kvItemRepo) Delete(ctx context.Context, tripID, itemID uuid.UUID, at time.Time) error {
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		items, err := loadItems(tx)
		if err != nil {
			return err
		}
		i := itemIndex(items, tripID, itemID)
		if i < 0 {
			return domain.ErrNotFound
		}
		if err := touchTrip(tx, tripID, at); err != nil {
			return err
		}
		return saveItems(tx, slices.Delete(items, i, i+1))
	})
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", err)
	}
	return nil
}

func (r *kvItemRepo) Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID, at time.Time) error {
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		trips, err := loadTrips(tx)
		if err != nil {
			return err
		}
		ti := tripIndex(trips, tripID)
		if ti < 0 {
			return domain.ErrNotFound
		}

		items, err := loadItems(tx)
		if err != nil {
			return err
		}
		position := make(map[uuid.UUID]int, len(itemIDs))
		verr := &domain.ValidationError{}
		for pos, id := range itemIDs {
			if _, dup := position[id]; dup {
				verr.Add("item_ids", fmt.Sprintf("item %s is listed more than once", id))
				continue
			}
			position[id] = pos
			if itemIndex(items, tripID, id) < 0 {
				verr.Referential = true
				verr.Add("item_ids", fmt.Sprintf("item %s does not belong to trip %s", id, tripID))
			}
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		for i := range items {
			pos, ok := position[items[i].ID]
			if !ok || items[i].TripID != tripID {
				continue
			}
			items[i].SortOrder = &pos
			if at.After(items[i].UpdatedAt) {
				items[i].UpdatedAt = at
			}
		}

		trips[ti].Touch(at)
		if err := saveTrips(tx, trips); err != nil {
			return err
		}
		return saveItems(tx, items)
	})
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Reorder: %w", err)
	}
	return nil
}

// touchTrip advances the UpdatedAt of trip id inside tx. A missing trip is
// ignored: items are only ever written through an existing parent.
func touchTrip(tx *kvstore.Tx, id uuid.UUID, at time.Time) error {
	trips, err := loadTrips(tx)
	if err != nil {
		return err
	}
	i := tripIndex(trips, id)
	if i < 0 {
		return nil
	}
	trips[i].Touch(at)
	return saveTrips(tx, trips)
}
