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

func itemTitles(items []domain.TripItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func newTrip(t *testing.T, s services) domain.Trip {
	t.Helper()
	trip, err := s.trips.Create(context.Background(), validDraft())
	require.NoError(t, err)
	return trip
}

// ---- Create ----------------------------------------------------------------

func TestItemService_Create_TouchesParent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)

	item, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	assert.Equal(t, trip.ID, item.TripID)
	parent, err := s.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, item.UpdatedAt, parent.UpdatedAt)
	assert.True(t, parent.UpdatedAt.After(trip.UpdatedAt))
}

func TestItemService_Create_DefaultsItemType(t *testing.T) {
	s := newServices(t)
	trip := newTrip(t, s)

	draft := validItemDraft()
	draft.ItemType = ""
	item, err := s.items.Create(context.Background(), trip.ID, draft)

	require.NoError(t, err)
	assert.Equal(t, domain.ItemOther, item.ItemType)
}

func TestItemService_Create_UnknownTrip(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := s.items.Create(ctx, missing, validItemDraft())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrReferential)
	items, err := s.items.ListByTrip(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemService_Create_Validation(t *testing.T) {
	s := newServices(t)
	trip := newTrip(t, s)

	draft := validItemDraft()
	draft.Title = ""
	draft.ItemType = "spaceship"
	draft.EndDatetime = ptr(draft.StartDatetime) // must be strictly after
	draft.Cost = ptr(-5.0)
	draft.SortOrder = ptr(-1)

	_, err := s.items.Create(context.Background(), trip.ID, draft)

	assert.ElementsMatch(t,
		[]string{"title", "item_type", "end_datetime", "cost", "sort_order"},
		fieldsOf(t, err))
}

func TestItemService_Create_MissingStart(t *testing.T) {
	s := newServices(t)
	trip := newTrip(t, s)

	draft := validItemDraft()
	draft.StartDatetime = time.Time{}

	_, err := s.items.Create(context.Background(), trip.ID, draft)

	assert.Equal(t, []string{"start_datetime"}, fieldsOf(t, err))
}

func TestItemService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("disk exploded")
	trips := &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: id}, nil
		},
	}
	items := &mockItemRepo{
		create: func(context.Context, domain.TripItem) (domain.TripItem, error) {
			return domain.TripItem{}, repoErr
		},
	}
	svc := service.NewItemService(trips, items)

	_, err := svc.Create(context.Background(), uuid.New(), validItemDraft())

	assert.ErrorIs(t, err, repoErr)
}

// ---- ListByTrip ------------------------------------------------------------

func TestItemService_ListByTrip_SortOrderWins(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)

	for _, order := range []int{2, 0, 1} {
		d := validItemDraft()
		d.Title = []string{"zero", "one", "two"}[order]
		d.SortOrder = ptr(order)
		_, err := s.items.Create(ctx, trip.ID, d)
		require.NoError(t, err)
	}

	got, err := s.items.ListByTrip(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"zero", "one", "two"}, itemTitles(got))
}

func TestItemService_ListByTrip_FallsBackToStartTime(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	drafts := []domain.ItemDraft{
		{Title: "dinner", StartDatetime: base.Add(10 * time.Hour), SortOrder: ptr(0)},
		{Title: "museum", StartDatetime: base},
		{Title: "lunch", StartDatetime: base.Add(3 * time.Hour)},
		{Title: "museum shop", StartDatetime: base},
	}
	for _, d := range drafts {
		_, err := s.items.Create(ctx, trip.ID, d)
		require.NoError(t, err)
	}

	got, err := s.items.ListByTrip(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"museum", "museum shop", "lunch", "dinner"}, itemTitles(got))
}

func TestItemService_ListByTrip_Empty(t *testing.T) {
	svc := service.NewItemService(&mockTripRepo{}, &mockItemRepo{
		listByTripID: func(context.Context, uuid.UUID) ([]domain.TripItem, error) { return nil, nil },
	})

	got, err := svc.ListByTrip(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Update ----------------------------------------------------------------

func TestItemService_Update(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	item, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	end := item.StartDatetime.Add(2 * time.Hour)
	updated, err := s.items.Update(ctx, trip.ID, item.ID, domain.ItemPatch{
		Title:       ptr("Flight LH124"),
		EndDatetime: &end,
		Cost:        ptr(129.5),
	})

	require.NoError(t, err)
	assert.Equal(t, "Flight LH124", updated.Title)
	require.NotNil(t, updated.EndDatetime)
	assert.Equal(t, end, *updated.EndDatetime)
	assert.Equal(t, 129.5, *updated.Cost)

	parent, err := s.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, parent.UpdatedAt)
}

func TestItemService_Update_ClearEndDatetime(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	draft := validItemDraft()
	draft.EndDatetime = ptr(draft.StartDatetime.Add(time.Hour))
	item, err := s.items.Create(ctx, trip.ID, draft)
	require.NoError(t, err)

	updated, err := s.items.Update(ctx, trip.ID, item.ID, domain.ItemPatch{ClearEndDatetime: true})

	require.NoError(t, err)
	assert.Nil(t, updated.EndDatetime)
}

func TestItemService_Update_Invalid(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	item, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	before := item.StartDatetime.Add(-time.Hour)
	_, err = s.items.Update(ctx, trip.ID, item.ID, domain.ItemPatch{EndDatetime: &before})

	assert.Equal(t, []string{"end_datetime"}, fieldsOf(t, err))
}

func TestItemService_Update_NotFound(t *testing.T) {
	s := newServices(t)
	trip := newTrip(t, s)

	_, err := s.items.Update(context.Background(), trip.ID, uuid.New(), domain.ItemPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestItemService_Delete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	item, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	ok, err := s.items.Delete(ctx, trip.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.items.Delete(ctx, trip.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.items.GetByID(ctx, trip.ID, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Cascade ---------------------------------------------------------------

func TestTripDelete_CascadesToItems(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		s := newServices(t)
		ctx := context.Background()
		trip := newTrip(t, s)
		for range n {
			_, err := s.items.Create(ctx, trip.ID, validItemDraft())
			require.NoError(t, err)
		}

		ok, err := s.trips.Delete(ctx, trip.ID)
		require.NoError(t, err)
		require.True(t, ok)

		items, err := s.items.ListByTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Empty(t, items, "n=%d", n)
	}
}

// ---- Reorder ---------------------------------------------------------------

func TestItemService_Reorder(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		d := validItemDraft()
		d.Title = title
		it, err := s.items.Create(ctx, trip.ID, d)
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}

	require.NoError(t, s.items.Reorder(ctx, trip.ID, []uuid.UUID{ids[2], ids[0], ids[1]}))

	got, err := s.items.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, itemTitles(got))
	assert.Contains(t, s.observer.kinds(), service.EventItemsReordered)
}

func TestItemService_Reorder_ForeignID(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	a, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)
	b, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)

	err = s.items.Reorder(ctx, trip.ID, []uuid.UUID{a.ID, b.ID, uuid.New()})

	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err := s.items.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	for _, it := range got {
		assert.Nil(t, it.SortOrder)
	}
}

func TestItemService_Reorder_Rejects(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	other := newTrip(t, s)
	a, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)
	foreign, err := s.items.Create(ctx, other.ID, validItemDraft())
	require.NoError(t, err)

	t.Run("foreign id", func(t *testing.T) {
		err := s.items.Reorder(ctx, trip.ID, []uuid.UUID{a.ID, foreign.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrReferential)
	})
	t.Run("duplicate id", func(t *testing.T) {
		err := s.items.Reorder(ctx, trip.ID, []uuid.UUID{a.ID, a.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("unknown trip", func(t *testing.T) {
		err := s.items.Reorder(ctx, uuid.New(), []uuid.UUID{a.ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	got, err := s.items.GetByID(ctx, trip.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SortOrder)
	assert.NotContains(t, s.observer.kinds(), service.EventItemsReordered)
}

func TestItemService_EmitsEvents(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	trip := newTrip(t, s)
	item, err := s.items.Create(ctx, trip.ID, validItemDraft())
	require.NoError(t, err)
	_, err = s.items.Update(ctx, trip.ID, item.ID, domain.ItemPatch{Notes: ptr("window seat")})
	require.NoError(t, err)
	_, err = s.items.Delete(ctx, trip.ID, item.ID)
	require.NoError(t, err)
	_, err = s.trips.Delete(ctx, trip.ID)
	require.NoError(t, err)

	assert.Equal(t, []service.EventKind{
		service.EventTripCreated,
		service.EventItemCreated,
		service.EventItemUpdated,
		service.EventItemDeleted,
		service.EventTripDeleted,
	}, s.observer.kinds())
}
