package repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the store-backed
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create appends a fully populated trip (id and timestamps already set)
	// to the collection and returns it.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips in insertion order.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update loads the trip, applies mutate to a copy and stores the result in
	// one unit. An error from mutate aborts without writing. ID and CreatedAt
	// cannot be changed by mutate.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Trip) error) (domain.Trip, error)

	// Delete removes a trip and every item that belongs to it in one unit.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// kvTripRepo is the key-value store implementation of TripRepo.
type kvTripRepo struct {
	store *kvstore.Store
}

// NewTripRepo constructs a TripRepo backed by the provided store.
func NewTripRepo(store *kvstore.Store) TripRepo {
	return &kvTripRepo{store: store}
}

func (r *kvTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		trips, err := loadTrips(tx)
		if err != nil {
			return err
		}
		if tripIndex(trips, trip.ID) >= 0 {
			return fmt.Errorf("trip %s already exists", trip.ID)
		}
		return saveTrips(tx, append(trips, trip))
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return trip, nil
}

func (r *kvTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var trips []domain.Trip
	if _, err := r.store.Get(ctx, TripsKey, &trips); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	i := tripIndex(trips, id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return trips[i], nil
}

func (r *kvTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	if _, err := r.store.Get(ctx, TripsKey, &trips); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

func (r *kvTripRepo) Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Trip) error) (domain.Trip, error) {
	var result domain.Trip
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		trips, err := loadTrips(tx)
		if err != nil {
			return err
		}
		i := tripIndex(trips, id)
		if i < 0 {
			return domain.ErrNotFound
		}

		next := trips[i]
		if err := mutate(&next); err != nil {
			return err
		}
		next.ID = trips[i].ID
		next.CreatedAt = trips[i].CreatedAt

		trips[i] = next
		result = next
		return saveTrips(tx, trips)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *kvTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.store.Update(ctx, func(tx *kvstore.Tx) error {
		trips, err := loadTrips(tx)
		if err != nil {
			return err
		}
		i := tripIndex(trips, id)
		if i < 0 {
			return domain.ErrNotFound
		}

		items, err := loadItems(tx)
		if err != nil {
			return err
		}
		items = slices.DeleteFunc(items, func(it domain.TripItem) bool { return it.TripID == id })

		if err := saveTrips(tx, slices.Delete(trips, i, i+1)); err != nil {
			return err
		}
		return saveItems(tx, items)
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return nil
}
