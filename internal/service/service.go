// Package service contains the business logic for the Trip Planner.
// Services validate inputs, assign ids and timestamps, and orchestrate repo
// calls. No storage details live here; services depend on repo interfaces.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventKind names a change reported to an Observer.
type EventKind string

const (
	EventTripCreated    EventKind = "trip_created"
	EventTripUpdated    EventKind = "trip_updated"
	EventTripDeleted    EventKind = "trip_deleted"
	EventItemCreated    EventKind = "item_created"
	EventItemUpdated    EventKind = "item_updated"
	EventItemDeleted    EventKind = "item_deleted"
	EventItemsReordered EventKind = "items_reordered"
)

// Event describes a committed change. ItemID is uuid.Nil for trip-level events.
type Event struct {
	Kind   EventKind
	TripID uuid.UUID
	ItemID uuid.UUID
}

// Observer is notified after a change has been persisted, e.g. by a reminder
// scheduler that needs to recompute due items. Calls are synchronous.
type Observer interface {
	TripChanged(ctx context.Context, ev Event)
}

type nopObserver struct{}

func (nopObserver) TripChanged(context.Context, Event) {}

// LogObserver writes one debug line per event.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an Observer that logs to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) TripChanged(ctx context.Context, ev Event) {
	attrs := []any{"kind", string(ev.Kind), "trip_id", ev.TripID}
	if ev.ItemID != uuid.Nil {
		attrs = append(attrs, "item_id", ev.ItemID)
	}
	o.logger.DebugContext(ctx, "trip changed", attrs...)
}

type options struct {
	now      func() time.Time
	observer Observer
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source used for created_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithObserver registers an Observer for committed changes.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

func buildOptions(opts []Option) options {
	o := options{
		now:      func() time.Time { return time.Now().UTC() },
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
