package handler

import (
	"bytes"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_status", "trip_start_date", "trip_end_date",
	"destination", "item_title", "item_type", "start_datetime", "end_datetime",
	"location_name", "cost", "notes",
}

// ExportRow is the JSON form of one export row.
// Item fields are omitted for trips without items.
type ExportRow struct {
	TripID        uuid.UUID          `json:"trip_id"`
	TripTitle     string             `json:"trip_title"`
	TripStatus    domain.Status      `json:"trip_status"`
	TripStartDate openapi_types.Date `json:"trip_start_date"`
	TripEndDate   openapi_types.Date `json:"trip_end_date"`
	Destination   *string            `json:"destination,omitempty"`
	ItemTitle     *string            `json:"item_title,omitempty"`
	ItemType      *domain.ItemType   `json:"item_type,omitempty"`
	StartDatetime *time.Time         `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time         `json:"end_datetime,omitempty"`
	LocationName  *string            `json:"location_name,omitempty"`
	Cost          *float64           `json:"cost,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

// GetExport implements GET /export.
// It returns a flat table with one row per trip item.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json":
		default:
			writeError(w, http.StatusBadRequest, "bad_request", "format must be json or csv")
			return
		}
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "not found")
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, ToExportRows(rows))
}

// ToExportRows converts domain rows to their JSON form.
// Fields that are empty strings become nil pointers (omitempty in JSON).
func ToExportRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		tripID, _ := uuid.Parse(r.TripID)
		row := ExportRow{
			TripID:        tripID,
			TripTitle:     r.TripTitle,
			TripStatus:    r.TripStatus,
			TripStartDate: mustParseDate(r.TripStartDate),
			TripEndDate:   mustParseDate(r.TripEndDate),
			Destination:   optional(r.Destination),
			ItemTitle:     optional(r.ItemTitle),
			StartDatetime: r.StartDatetime,
			EndDatetime:   r.EndDatetime,
			LocationName:  optional(r.LocationName),
			Cost:          r.Cost,
			Notes:         optional(r.Notes),
		}
		if r.ItemType != "" {
			it := r.ItemType
			row.ItemType = &it
		}
		out = append(out, row)
	}
	return out
}

// writeCSV encodes domain rows as CSV with a header line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	EncodeCSV(&buf, rows)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// EncodeCSV writes the header line followed by one record per row.
// tripctl uses it so the CLI and the API produce identical files.
func EncodeCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(domainRowToCSVRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil pointers are encoded as empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	cost := ""
	if r.Cost != nil {
		cost = strconv.FormatFloat(*r.Cost, 'f', -1, 64)
	}
	return []string{
		r.TripID,
		r.TripTitle,
		string(r.TripStatus),
		r.TripStartDate,
		r.TripEndDate,
		r.Destination,
		r.ItemTitle,
		string(r.ItemType),
		formatOptionalTime(r.StartDatetime),
		formatOptionalTime(r.EndDatetime),
		r.LocationName,
		cost,
		r.Notes,
	}
}

// mustParseDate parses a "2006-01-02" string into an openapi_types.Date.
// Panics on malformed input; callers are expected to pass service-generated dates.
func mustParseDate(s string) openapi_types.Date {
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		panic("handler: malformed date from service: " + s)
	}
	return openapi_types.Date{Time: t}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
