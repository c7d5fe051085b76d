package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func tripFixtureExport(title string, start, end time.Time) domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		Title:     title,
		Status:    domain.StatusPlanning,
		StartDate: date(start.Year(), start.Month(), start.Day()),
		EndDate:   date(end.Year(), end.Month(), end.Day()),
	}
}

func itemFixtureExport(tripID uuid.UUID, title string, start time.Time) domain.TripItem {
	return domain.TripItem{
		ID:            uuid.New(),
		TripID:        tripID,
		Title:         title,
		ItemType:      domain.ItemActivity,
		StartDatetime: start,
	}
}

func exportWith(trips []domain.Trip, items []domain.TripItem) *service.ExportService {
	return service.NewExportService(
		&mockTripRepo{
			list: func(context.Context) ([]domain.Trip, error) { return trips, nil },
		},
		&mockItemRepo{
			list: func(context.Context) ([]domain.TripItem, error) { return items, nil },
		},
	)
}

// ---- Export ----------------------------------------------------------------

func TestExportService_Export_OneTripOneItem(t *testing.T) {
	trip := tripFixtureExport("Summer Tour",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	trip.Destination = "Lisbon"
	item := itemFixtureExport(trip.ID, "Tram 28", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	item.Cost = ptr(3.0)

	rows, err := exportWith([]domain.Trip{trip}, []domain.TripItem{item}).Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, trip.ID.String(), rows[0].TripID)
	assert.Equal(t, "Summer Tour", rows[0].TripTitle)
	assert.Equal(t, "2025-06-01", rows[0].TripStartDate)
	assert.Equal(t, "2025-06-15", rows[0].TripEndDate)
	assert.Equal(t, "Lisbon", rows[0].Destination)
	assert.Equal(t, "Tram 28", rows[0].ItemTitle)
	require.NotNil(t, rows[0].StartDatetime)
	assert.Equal(t, item.StartDatetime, *rows[0].StartDatetime)
	assert.Equal(t, 3.0, *rows[0].Cost)
}

func TestExportService_Export_TripWithNoItems(t *testing.T) {
	trip := tripFixtureExport("Empty Trip",
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))

	rows, err := exportWith([]domain.Trip{trip}, nil).Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1, "trips with no items should still produce one row")
	assert.Equal(t, "Empty Trip", rows[0].TripTitle)
	assert.Empty(t, rows[0].ItemTitle)
	assert.Nil(t, rows[0].StartDatetime)
}

func TestExportService_Export_OrdersTripsAndItems(t *testing.T) {
	later := tripFixtureExport("Trip B",
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC))
	earlier := tripFixtureExport("Trip A",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC))

	items := []domain.TripItem{
		itemFixtureExport(earlier.ID, "A2", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)),
		itemFixtureExport(later.ID, "B1", time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)),
		itemFixtureExport(earlier.ID, "A1", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
	}

	rows, err := exportWith([]domain.Trip{later, earlier}, items).Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Trip A", rows[0].TripTitle)
	assert.Equal(t, "A1", rows[0].ItemTitle)
	assert.Equal(t, "A2", rows[1].ItemTitle)
	assert.Equal(t, "Trip B", rows[2].TripTitle)
	assert.Equal(t, "B1", rows[2].ItemTitle)
}

func TestExportService_Export_NoTrips(t *testing.T) {
	rows, err := exportWith(nil, nil).Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_RepoErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("trips", func(t *testing.T) {
		svc := service.NewExportService(
			&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return nil, boom }},
			&mockItemRepo{},
		)
		_, err := svc.Export(context.Background())
		assert.ErrorIs(t, err, boom)
	})
	t.Run("items", func(t *testing.T) {
		svc := service.NewExportService(
			&mockTripRepo{list: func(context.Context) ([]domain.Trip, error) { return nil, nil }},
			&mockItemRepo{list: func(context.Context) ([]domain.TripItem, error) { return nil, boom }},
		)
		_, err := svc.Export(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestExportService_Export_EndToEnd(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip, err := s.trips.Create(ctx, validDraft())
	require.NoError(t, err)
	_, err = s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	rows, err := s.export.Export(ctx)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Summer Tour", rows[0].TripTitle)
	assert.Equal(t, domain.ItemTransport, rows[0].ItemType)
}
