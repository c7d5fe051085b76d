package service

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// validateTrip enforces business rules common to both Create and Update and
// reports every violated field at once.
//   - Title must be non-empty (whitespace-only is rejected) and at most 200 characters.
//   - StartDate and EndDate are required and EndDate must not be before StartDate.
//   - Status must be one of the five lifecycle states.
//   - Coordinates, if set, must be a valid longitude/latitude pair.
func validateTrip(t domain.Trip) error {
	verr := &domain.ValidationError{}

	switch title := strings.TrimSpace(t.Title); {
	case title == "":
		verr.Add("title", "is required")
	case utf8.RuneCountInString(title) > domain.TripTitleMaxLen:
		verr.Add("title", fmt.Sprintf("must be at most %d characters", domain.TripTitleMaxLen))
	}

	if t.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	}
	if t.EndDate.IsZero() {
		verr.Add("end_date", "is required")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		verr.Add("end_date", "must not be before start_date")
	}

	if !t.Status.Valid() {
		verr.Add("status", fmt.Sprintf("must be one of %s", joinStatuses()))
	}

	if c := t.Coordinates; c != nil {
		if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
			verr.Add("coordinates.lng", "must be between -180 and 180")
		}
		if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
			verr.Add("coordinates.lat", "must be between -90 and 90")
		}
	}

	return verr.OrNil()
}

// validateItem enforces business rules common to both Create and Update.
//   - Title must be non-empty.
//   - ItemType must be a known type.
//   - StartDatetime is required; EndDatetime, if set, must be strictly after it.
//   - Cost and SortOrder, if set, must not be negative.
func validateItem(it domain.TripItem) error {
	verr := &domain.ValidationError{}

	if strings.TrimSpace(it.Title) == "" {
		verr.Add("title", "is required")
	}
	if !it.ItemType.Valid() {
		verr.Add("item_type", fmt.Sprintf("must be one of %s", joinItemTypes()))
	}
	if it.StartDatetime.IsZero() {
		verr.Add("start_datetime", "is required")
	} else if it.EndDatetime != nil && !it.EndDatetime.After(it.StartDatetime) {
		verr.Add("end_datetime", "must be after start_datetime")
	}
	if it.Cost != nil && (math.IsNaN(*it.Cost) || *it.Cost < 0) {
		verr.Add("cost", "must not be negative")
	}
	if it.SortOrder != nil && *it.SortOrder < 0 {
		verr.Add("sort_order", "must not be negative")
	}

	return verr.OrNil()
}

// validateFilter rejects unknown status and sort values rather than
// silently returning an empty or unsorted listing.
func validateFilter(f domain.ListFilter) error {
	verr := &domain.ValidationError{}
	if f.Status != "" && f.Status != domain.StatusAll && !f.Status.Valid() {
		verr.Add("status", fmt.Sprintf("must be all or one of %s", joinStatuses()))
	}
	if !f.Sort.Valid() {
		verr.Add("sort", "must be one of start_date_desc, start_date_asc, created_desc, updated_desc")
	}
	return verr.OrNil()
}

// normalizeDate drops any time-of-day and location from d.
func normalizeDate(d openapi_types.Date) openapi_types.Date {
	if d.IsZero() {
		return d
	}
	y, m, day := d.Date()
	return openapi_types.Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func joinStatuses() string {
	parts := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func joinItemTypes() string {
	parts := make([]string, len(domain.ItemTypes))
	for i, t := range domain.ItemTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
