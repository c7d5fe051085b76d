package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/query"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ExportService assembles a full flat export of all trips and their items.
type ExportService struct {
	trips repo.TripRepo
	items repo.ItemRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, items repo.ItemRepo) *ExportService {
	return &ExportService{trips: trips, items: items}
}

// Export returns one ExportRow per trip item across all trips, trips in
// start-date order and items in itinerary order.
// Trips with no items contribute one row with empty item fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	byTrip := make(map[uuid.UUID][]domain.TripItem, len(trips))
	for _, it := range items {
		byTrip[it.TripID] = append(byTrip[it.TripID], it)
	}

	rows := make([]domain.ExportRow, 0, len(items)+len(trips))
	for _, t := range query.SortTrips(trips, domain.SortStartDateAsc) {
		base := domain.ExportRow{
			TripID:        t.ID.String(),
			TripTitle:     t.Title,
			TripStatus:    t.Status,
			TripStartDate: t.StartDate.Format(openapi_types.DateFormat),
			TripEndDate:   t.EndDate.Format(openapi_types.DateFormat),
			Destination:   t.Destination,
		}
		tripItems := query.SortItems(byTrip[t.ID])
		if len(tripItems) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, it := range tripItems {
			row := base
			start := it.StartDatetime
			row.ItemTitle = it.Title
			row.ItemType = it.ItemType
			row.StartDatetime = &start
			row.EndDatetime = it.EndDatetime
			row.LocationName = it.LocationName
			row.Cost = it.Cost
			row.Notes = it.Notes
			rows = append(rows, row)
		}
	}
	return rows, nil
}
