package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per trip item, with trip fields
// repeated for every item on that trip. Trips with no items yield one row
// with zero values for all item fields.
type ExportRow struct {
	// Trip fields, repeated for every item on the trip.
	TripID        string
	TripTitle     string
	TripStatus    Status
	TripStartDate string // "2006-01-02" formatted date
	TripEndDate   string
	Destination   string

	// Item fields, zero values when the trip has no items.
	ItemTitle     string
	ItemType      ItemType
	StartDatetime *time.Time
	EndDatetime   *time.Time
	LocationName  string
	Cost          *float64
	Notes         string
}
