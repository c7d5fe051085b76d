package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/query"
	"github.com/pkordes/trip-planner/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
	options
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, opts ...Option) *TripService {
	return &TripService{repo: r, options: buildOptions(opts)}
}

// Create validates and persists a new trip. It assigns the id and both
// timestamps and defaults an empty status to planning.
// Returns a *domain.ValidationError listing every invalid field.
func (s *TripService) Create(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	trip := domain.Trip{
		ID:          uuid.New(),
		OwnerID:     draft.OwnerID,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		StartDate:   normalizeDate(draft.StartDate),
		EndDate:     normalizeDate(draft.EndDate),
		Status:      draft.Status,
		Destination: draft.Destination,
	}
	if trip.Status == "" {
		trip.Status = domain.StatusPlanning
	}
	if draft.Coordinates != nil {
		c := *draft.Coordinates
		trip.Coordinates = &c
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	now := s.now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventTripCreated, TripID: result.ID})
	return result, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// Update merges patch onto the stored trip, re-validates the result and
// bumps updated_at. The merge, validation and write happen in one store unit.
// Returns domain.ErrNotFound or a *domain.ValidationError.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	now := s.now()
	result, err := s.repo.Update(ctx, id, func(t *domain.Trip) error {
		applyTripPatch(t, patch)
		if err := validateTrip(*t); err != nil {
			return err
		}
		t.Touch(now)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventTripUpdated, TripID: id})
	return result, nil
}

// Delete removes a trip and all of its items.
// It reports false, without error, when the trip does not exist.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.observer.TripChanged(ctx, Event{Kind: EventTripDeleted, TripID: id})
	return true, nil
}

// List returns the trips matching f, ordered by f.Sort.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, f domain.ListFilter) ([]domain.Trip, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	out := query.Apply(trips, f)
	if out == nil {
		return []domain.Trip{}, nil
	}
	return out, nil
}

// ListPaged returns one page of List(f) and the total number of matches.
func (s *TripService) ListPaged(ctx context.Context, f domain.ListFilter, p domain.PaginationParams) ([]domain.Trip, int, error) {
	trips, err := s.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	lo, hi := p.Bounds(len(trips))
	return trips[lo:hi], len(trips), nil
}

// Stats counts trips in total and per status. Every status is present in
// ByStatus, with zero when no trip has it.
func (s *TripService) Stats(ctx context.Context) (domain.Stats, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.TripService.Stats: %w", err)
	}
	stats := domain.Stats{Total: len(trips), ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, t := range trips {
		stats.ByStatus[t.Status]++
	}
	return stats, nil
}

func applyTripPatch(t *domain.Trip, p domain.TripPatch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StartDate != nil {
		t.StartDate = normalizeDate(*p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate = normalizeDate(*p.EndDate)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		t.Coordinates = &c
	}
}
