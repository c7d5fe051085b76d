// Package query holds the pure filter, search and sort functions applied to
// trip and item listings. Functions never mutate their input slice or the
// records in it; they always return a new slice.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// FilterByStatus keeps trips whose status equals status.
// An empty status or domain.StatusAll keeps every trip.
func FilterByStatus(trips []domain.Trip, status domain.Status) []domain.Trip {
	if status == "" || status == domain.StatusAll {
		return slices.Clone(trips)
	}
	return filter(trips, func(t domain.Trip) bool { return t.Status == status })
}

// FilterByOwner keeps trips owned by ownerID. An empty ownerID keeps every trip.
func FilterByOwner(trips []domain.Trip, ownerID string) []domain.Trip {
	if ownerID == "" {
		return slices.Clone(trips)
	}
	return filter(trips, func(t domain.Trip) bool { return t.OwnerID == ownerID })
}

// SearchByText keeps trips whose title or description contains text,
// ignoring case. Blank text keeps every trip.
func SearchByText(trips []domain.Trip, text string) []domain.Trip {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return slices.Clone(trips)
	}
	return filter(trips, func(t domain.Trip) bool {
		return strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle)
	})
}

// SortTrips orders trips by key. The sort is stable, so equal keys keep their
// input order; the empty key returns the input order unchanged.
func SortTrips(trips []domain.Trip, key domain.SortKey) []domain.Trip {
	out := slices.Clone(trips)

	var compare func(a, b domain.Trip) int
	switch key {
	case domain.SortStartDateAsc:
		compare = func(a, b domain.Trip) int { return a.StartDate.Compare(b.StartDate.Time) }
	case domain.SortStartDateDesc:
		compare = func(a, b domain.Trip) int { return b.StartDate.Compare(a.StartDate.Time) }
	case domain.SortCreatedDesc:
		compare = func(a, b domain.Trip) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case domain.SortUpdatedDesc:
		compare = func(a, b domain.Trip) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	default:
		return out
	}
	slices.SortStableFunc(out, compare)
	return out
}

// Apply runs the status, owner and search filters then sorts, in that order.
func Apply(trips []domain.Trip, f domain.ListFilter) []domain.Trip {
	out := FilterByOwner(trips, f.OwnerID)
	out = FilterByStatus(out, f.Status)
	out = SearchByText(out, f.Search)
	return SortTrips(out, f.Sort)
}

// SortItems orders the items of one trip: by sort_order when every item has
// one, otherwise by start_datetime. Ties keep insertion order.
func SortItems(items []domain.TripItem) []domain.TripItem {
	out := slices.Clone(items)

	ordered := !slices.ContainsFunc(out, func(it domain.TripItem) bool { return it.SortOrder == nil })
	if ordered {
		slices.SortStableFunc(out, func(a, b domain.TripItem) int {
			return cmp.Compare(*a.SortOrder, *b.SortOrder)
		})
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.TripItem) int {
		return a.StartDatetime.Compare(b.StartDatetime)
	})
	return out
}

func filter(trips []domain.Trip, keep func(domain.Trip) bool) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
