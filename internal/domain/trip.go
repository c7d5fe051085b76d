// Package domain contains the core data types for the Trip Planner.
// It has no dependencies on other internal packages and is imported by every
// other internal package (kvstore, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TripTitleMaxLen is the maximum number of characters allowed in a trip title.
const TripTitleMaxLen = 200

// Status is the lifecycle state of a trip.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// StatusAll is accepted by list filters and disables status filtering.
const StatusAll Status = "all"

// Statuses lists every valid Status in lifecycle order.
var Statuses = []Status{StatusPlanning, StatusConfirmed, StatusOngoing, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the five lifecycle states.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Coordinates is a WGS84 point as used by the map view.
type Coordinates struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Trip represents a planned journey.
// A trip is the top-level aggregate; trip items belong to a trip and are
// deleted with it.
type Trip struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     string             `json:"owner_id,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Status      Status             `json:"status"`
	Destination string             `json:"destination,omitempty"`
	Coordinates *Coordinates       `json:"coordinates,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TripDraft carries the caller-supplied fields for a new trip.
// An empty Status defaults to StatusPlanning.
type TripDraft struct {
	OwnerID     string
	Title       string
	Description string
	StartDate   openapi_types.Date
	EndDate     openapi_types.Date
	Status      Status
	Destination string
	Coordinates *Coordinates
}

// TripPatch is a partial update. Nil fields are left unchanged.
// It has no ID field because a trip's id never changes.
type TripPatch struct {
	Title       *string
	Description *string
	StartDate   *openapi_types.Date
	EndDate     *openapi_types.Date
	Status      *Status
	Destination *string
	Coordinates *Coordinates
}

// SortKey selects the ordering applied by trip listings.
// The empty SortKey keeps insertion order.
type SortKey string

const (
	SortStartDateDesc SortKey = "start_date_desc"
	SortStartDateAsc  SortKey = "start_date_asc"
	SortCreatedDesc   SortKey = "created_desc"
	SortUpdatedDesc   SortKey = "updated_desc"
)

// Valid reports whether k is empty or one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case "", SortStartDateDesc, SortStartDateAsc, SortCreatedDesc, SortUpdatedDesc:
		return true
	}
	return false
}

// ListFilter narrows and orders a trip listing.
// Status "all" or empty means no status filtering.
type ListFilter struct {
	OwnerID string
	Status  Status
	Search  string
	Sort    SortKey
}

// Stats summarises the trip collection.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

// Touch advances UpdatedAt to at. It never moves UpdatedAt backwards, so a
// clock step or an out-of-order write cannot make it decrease.
func (t *Trip) Touch(at time.Time) {
	if at.After(t.UpdatedAt) {
		t.UpdatedAt = at
	}
}
