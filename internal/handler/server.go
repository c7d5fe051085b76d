// Package handler implements the HTTP handlers for the Trip Planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, item.go, export.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the store or service layer.
type TripServicer interface {
	Create(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, f domain.ListFilter, p domain.PaginationParams) ([]domain.Trip, int, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// ItemServicer defines the business operations the item handlers depend on.
type ItemServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft) (domain.TripItem, error)
	GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.TripItem, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripItem, error)
	Update(ctx context.Context, tripID, itemID uuid.UUID, patch domain.ItemPatch) (domain.TripItem, error)
	Delete(ctx context.Context, tripID, itemID uuid.UUID) (bool, error)
	Reorder(ctx context.Context, tripID uuid.UUID, itemIDs []uuid.UUID) error
}

// ExportServicer defines the operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips  TripServicer
	items  ItemServicer
	export ExportServicer
	logger *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(trips TripServicer, items ItemServicer, export ExportServicer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{trips: trips, items: items, export: export, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes registers every endpoint on a fresh chi router.
// main.go mounts the result under "/" after the middleware chain.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/stats", s.GetTripStats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/items", s.ListItems)
			r.Post("/items", s.CreateItem)
			r.Put("/items/order", s.ReorderItems)
			r.Get("/items/{itemId}", s.GetItem)
			r.Patch("/items/{itemId}", s.UpdateItem)
			r.Delete("/items/{itemId}", s.DeleteItem)
		})
	})

	r.Get("/export", s.GetExport)
	return r
}
