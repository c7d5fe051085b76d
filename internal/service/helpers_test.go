package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list    func(ctx context.Context) ([]domain.Trip, error)
	update  func(ctx context.Context, id uuid.UUID, mutate func(*domain.Trip) error) (domain.Trip, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Trip) error) (domain.Trip, error) {
	return m.update(ctx, id, mutate)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockItemRepo is a hand-written test double for repo.ItemRepo.
type mockItemRepo struct {
	create       func(ctx context.Context, item domain.TripItem) (domain.TripItem, error)
	getByID      func(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error)
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error)
	list         func(ctx context.Context) ([]domain.TripItem, error)
	update       func(ctx context.Context, tripID, itemID uuid.UUID, mutate func(*domain.TripItem) error) (domain.TripItem, error)
	delete       func(ctx context.Context, tripID, itemID uuid.UUID, at time.Time) error
	reorder      func(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID, at time.Time) error
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.TripItem) (domain.TripItem, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error) {
	return m.getByID(ctx, tripID, itemID)
}
func (m *mockItemRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockItemRepo) List(ctx context.Context) ([]domain.TripItem, error) {
	return m.list(ctx)
}
func (m *mockItemRepo) Update(ctx context.Context, tripID, itemID uuid.UUID, mutate func(*domain.TripItem) error) (domain.TripItem, error) {
	return m.update(ctx, tripID, itemID, mutate)
}
func (m *mockItemRepo) Delete(ctx context.Context, tripID, itemID uuid.UUID, at time.Time) error {
	return m.delete(ctx, tripID, itemID, at)
}
func (m *mockItemRepo) Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID, at time.Time) error {
	return m.reorder(ctx, tripID, itemIDs, at)
}

var _ repo.ItemRepo = (*mockItemRepo)(nil)

// fakeClock hands out strictly increasing times one minute apart.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

// recordingObserver collects every event it is given.
type recordingObserver struct {
	events []service.Event
}

func (o *recordingObserver) TripChanged(_ context.Context, ev service.Event) {
	o.events = append(o.events, ev)
}

func (o *recordingObserver) kinds() []service.EventKind {
	out := make([]service.EventKind, len(o.events))
	for i, ev := range o.events {
		out[i] = ev.Kind
	}
	return out
}

// services bundles trip and item services over one in-memory store.
type services struct {
	trips    *service.TripService
	items    *service.ItemService
	export   *service.ExportService
	observer *recordingObserver
	clock    *fakeClock
}

func newServices(t *testing.T, storeOpts ...kvstore.Option) services {
	t.Helper()
	store := kvstore.NewMemoryStore(storeOpts...)
	t.Cleanup(func() { _ = store.Close() })

	tripRepo := repo.NewTripRepo(store)
	itemRepo := repo.NewItemRepo(store)
	clock := newFakeClock()
	obs := &recordingObserver{}
	opts := []service.Option{service.WithClock(clock.Now), service.WithObserver(obs)}

	return services{
		trips:    service.NewTripService(tripRepo, opts...),
		items:    service.NewItemService(tripRepo, itemRepo, opts...),
		export:   service.NewExportService(tripRepo, itemRepo),
		observer: obs,
		clock:    clock,
	}
}

func date(y int, m time.Month, d int) openapi_types.Date {
	return openapi_types.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func validDraft() domain.TripDraft {
	return domain.TripDraft{
		Title:     "Summer Tour",
		StartDate: date(2025, 6, 1),
		EndDate:   date(2025, 6, 15),
	}
}

func validItemDraft() domain.ItemDraft {
	return domain.ItemDraft{
		Title:         "Flight LH123",
		ItemType:      domain.ItemTransport,
		StartDatetime: time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC),
	}
}

func ptr[T any](v T) *T { return &v }
