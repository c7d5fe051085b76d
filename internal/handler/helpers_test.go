package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create    func(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, f domain.ListFilter, p domain.PaginationParams) ([]domain.Trip, int, error)
	update    func(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	delete    func(ctx context.Context, id uuid.UUID) (bool, error)
	stats     func(ctx context.Context) (domain.Stats, error)
}

func (m *mockTripServicer) Create(ctx context.Context, d domain.TripDraft) (domain.Trip, error) {
	return m.create(ctx, d)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, f domain.ListFilter, p domain.PaginationParams) ([]domain.Trip, int, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripServicer) Update(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, id, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) Stats(ctx context.Context) (domain.Stats, error) {
	return m.stats(ctx)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockItemServicer is a test double for handler.ItemServicer.
type mockItemServicer struct {
	create     func(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft) (domain.TripItem, error)
	getByID    func(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error)
	update     func(ctx context.Context, tripID, itemID uuid.UUID, patch domain.ItemPatch) (domain.TripItem, error)
	delete     func(ctx context.Context, tripID, itemID uuid.UUID) (bool, error)
	reorder    func(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID) error
}

func (m *mockItemServicer) Create(ctx context.Context, tripID uuid.UUID, d domain.ItemDraft) (domain.TripItem, error) {
	return m.create(ctx, tripID, d)
}
func (m *mockItemServicer) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error) {
	return m.getByID(ctx, tripID, itemID)
}
func (m *mockItemServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockItemServicer) Update(ctx context.Context, tripID, itemID uuid.UUID, p domain.ItemPatch) (domain.TripItem, error) {
	return m.update(ctx, tripID, itemID, p)
}
func (m *mockItemServicer) Delete(ctx context.Context, tripID, itemID uuid.UUID) (bool, error) {
	return m.delete(ctx, tripID, itemID)
}
func (m *mockItemServicer) Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID) error {
	return m.reorder(ctx, tripID, itemIDs)
}

var _ handler.ItemServicer = (*mockItemServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// serve runs one request through the full router, exactly as main.go mounts it.
func serve(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			//nolint:errcheck
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func tripFixture() domain.Trip {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:          uuid.New(),
		Title:       "Summer Tour",
		Description: "test notes",
		StartDate:   openapi_types.Date{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		EndDate:     openapi_types.Date{Time: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		Status:      domain.StatusPlanning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func itemFixture(tripID uuid.UUID) domain.TripItem {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.TripItem{
		ID:            uuid.New(),
		TripID:        tripID,
		Title:         "Flight LH123",
		ItemType:      domain.ItemTransport,
		StartDatetime: time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
