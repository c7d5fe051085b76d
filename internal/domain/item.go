package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemType classifies a trip item.
type ItemType string

const (
	ItemTransport     ItemType = "transport"
	ItemAccommodation ItemType = "accommodation"
	ItemActivity      ItemType = "activity"
	ItemMeal          ItemType = "meal"
	ItemAttraction    ItemType = "attraction"
	ItemOther         ItemType = "other"
)

// ItemTypes lists every valid ItemType.
var ItemTypes = []ItemType{ItemTransport, ItemAccommodation, ItemActivity, ItemMeal, ItemAttraction, ItemOther}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// TripItem is a single scheduled entry within a trip (a flight, a hotel stay,
// a museum visit). EndDatetime is nil for open-ended entries.
// SortOrder is nil until the items of a trip are explicitly reordered.
type TripItem struct {
	ID            uuid.UUID  `json:"id"`
	TripID        uuid.UUID  `json:"trip_id"`
	Title         string     `json:"title"`
	ItemType      ItemType   `json:"item_type"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	LocationName  string     `json:"location_name,omitempty"`
	Cost          *float64   `json:"cost,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	SortOrder     *int       `json:"sort_order,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ItemDraft carries the caller-supplied fields for a new trip item, typically
// produced by a form or by the ticket import pipeline.
// An empty ItemType defaults to ItemOther.
type ItemDraft struct {
	Title         string
	ItemType      ItemType
	StartDatetime time.Time
	EndDatetime   *time.Time
	LocationName  string
	Cost          *float64
	Notes         string
	SortOrder     *int
}

// ItemPatch is a partial update. Nil fields are left unchanged.
// ClearEndDatetime removes an existing end time.
type ItemPatch struct {
	Title            *string
	ItemType         *ItemType
	StartDatetime    *time.Time
	EndDatetime      *time.Time
	ClearEndDatetime bool
	LocationName     *string
	Cost             *float64
	Notes            *string
	SortOrder        *int
}
