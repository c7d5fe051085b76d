package main

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
)

// run executes tripctl against db and returns its trimmed stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"tripctl", "--db", db}, args...))
	return strings.TrimSpace(out.String()), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	require.NoError(t, err, "tripctl %v", args)
	return out
}

func TestTripctl_TripLifecycle(t *testing.T) {
	db := t.TempDir()

	id := mustRun(t, db, "trip", "add", "--title", "Lisbon", "--start", "2025-06-01", "--end", "2025-06-05",
		"--destination", "Portugal")
	require.Len(t, id, 36)

	list := mustRun(t, db, "trip", "list")
	assert.Contains(t, list, "Lisbon")
	assert.Contains(t, list, "planning")
	assert.Contains(t, list, "2025-06-01")

	stats := mustRun(t, db, "trip", "stats")
	assert.Contains(t, stats, "total")
	assert.Regexp(t, `planning\s+1`, stats)

	mustRun(t, db, "trip", "rm", id)
	assert.NotContains(t, mustRun(t, db, "trip", "list"), "Lisbon")

	_, err := run(t, db, "trip", "rm", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripctl_TripAddValidation(t *testing.T) {
	db := t.TempDir()

	_, err := run(t, db, "trip", "add", "--title", "Backwards", "--start", "2025-06-05", "--end", "2025-06-01")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = run(t, db, "trip", "add", "--title", "Bad", "--start", "June 1st", "--end", "2025-06-01")
	assert.ErrorContains(t, err, "--start")

	_, err = run(t, db, "trip", "add", "--title", "Missing")
	assert.Error(t, err)
}

func TestTripctl_ItemsAndExport(t *testing.T) {
	db := t.TempDir()
	tripID := mustRun(t, db, "trip", "add", "--title", "Rome", "--start", "2025-07-01", "--end", "2025-07-04")

	first := mustRun(t, db, "item", "add", "--trip", tripID, "--title", "Colosseum",
		"--type", "attraction", "--start", "2025-07-02T09:00:00Z", "--cost", "18")
	second := mustRun(t, db, "item", "add", "--trip", tripID, "--title", "Flight home",
		"--type", "transport", "--start", "2025-07-04T18:00:00Z")

	list := mustRun(t, db, "item", "list", "--trip", tripID)
	assert.Less(t, strings.Index(list, "Colosseum"), strings.Index(list, "Flight home"))

	mustRun(t, db, "item", "reorder", "--trip", tripID, second, first)
	list = mustRun(t, db, "item", "list", "--trip", tripID)
	assert.Less(t, strings.Index(list, "Flight home"), strings.Index(list, "Colosseum"))

	out := mustRun(t, db, "export")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Flight home", records[1][6])
	assert.Equal(t, "18", records[2][11])

	assert.Contains(t, mustRun(t, db, "export", "--format", "json"), `"trip_title": "Rome"`)

	mustRun(t, db, "item", "rm", "--trip", tripID, first)
	assert.NotContains(t, mustRun(t, db, "item", "list", "--trip", tripID), "Colosseum")
}

func TestTripctl_ItemOnMissingTrip(t *testing.T) {
	db := t.TempDir()

	_, err := run(t, db, "item", "add", "--trip", "6f1c1a4e-0000-4000-8000-000000000000",
		"--title", "Orphan", "--start", "2025-07-02T09:00:00Z")

	assert.ErrorIs(t, err, domain.ErrReferential)
}

func TestTripctl_RejectsUnknownLogLevel(t *testing.T) {
	_, err := run(t, t.TempDir(), "--log-level", "loud", "trip", "list")

	assert.ErrorContains(t, err, "invalid log level")
}
