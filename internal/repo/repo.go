// Package repo contains all persistence logic for the Trip Planner.
// Trips and trip items live in two JSON collections in the key-value store,
// linked only by TripItem.TripID. No business validation lives here; the
// repos enforce referential integrity and make every multi-record change
// (cascade delete, parent touch, reorder) a single store unit.
package repo

import (
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

// Store keys of the two collections.
const (
	TripsKey = "trips"
	ItemsKey = "tripItems"
)

func loadTrips(tx *kvstore.Tx) ([]domain.Trip, error) {
	var trips []domain.Trip
	if _, err := tx.Get(TripsKey, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func saveTrips(tx *kvstore.Tx, trips []domain.Trip) error {
	if trips == nil {
		trips = []domain.Trip{}
	}
	return tx.Set(TripsKey, trips)
}

func loadItems(tx *kvstore.Tx) ([]domain.TripItem, error) {
	var items []domain.TripItem
	if _, err := tx.Get(ItemsKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveItems(tx *kvstore.Tx, items []domain.TripItem) error {
	if items == nil {
		items = []domain.TripItem{}
	}
	return tx.Set(ItemsKey, items)
}

func tripIndex(trips []domain.Trip, id uuid.UUID) int {
	return slices.IndexFunc(trips, func(t domain.Trip) bool { return t.ID == id })
}

func itemIndex(items []domain.TripItem, tripID, itemID uuid.UUID) int {
	return slices.IndexFunc(items, func(it domain.TripItem) bool {
		return it.ID == itemID && it.TripID == tripID
	})
}
