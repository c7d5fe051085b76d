// Package sqlitestore is a kvstore.Backend on a single-file SQLite database,
// using the pure-Go modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Backend stores each key as one row of kv_entries.
type Backend struct {
	db *sql.DB
}

var _ kvstore.Backend = (*Backend)(nil)

// Open opens (or creates) the database at path in WAL mode and ensures the
// kv_entries table exists. An empty path opens a private in-memory database.
func Open(ctx context.Context, path string) (*Backend, error) {
	dsn := "file::memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlitestore.Open: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore.Open: %w", err)
	}
	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore.Open: create schema: %w", err)
	}
	return &Backend{db: db}, nil
}

// Load selects the value for key.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlitestore.Backend.Load: %w", err)
	}
	return value, true, nil
}

// Apply upserts and deletes the batch inside one SQL transaction.
func (b *Backend) Apply(ctx context.Context, batch []kvstore.Write) error {
	const (
		upsert = `
			INSERT INTO kv_entries (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE
			SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
		remove = `DELETE FROM kv_entries WHERE key = ?`
	)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore.Backend.Apply: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range batch {
		if w.Delete {
			_, err = tx.ExecContext(ctx, remove, w.Key)
		} else {
			_, err = tx.ExecContext(ctx, upsert, w.Key, w.Value)
		}
		if err != nil {
			return fmt.Errorf("sqlitestore.Backend.Apply: %q: %w", w.Key, mapErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore.Backend.Apply: commit: %w", mapErr(err))
	}
	return nil
}

// Size returns the summed byte length of every key and value.
func (b *Backend) Size(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(value)), 0) FROM kv_entries`

	var size int64
	if err := b.db.QueryRowContext(ctx, q).Scan(&size); err != nil {
		return 0, fmt.Errorf("sqlitestore.Backend.Size: %w", err)
	}
	return size, nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// mapErr turns SQLITE_FULL and SQLITE_TOOBIG into domain.ErrCapacityExceeded.
func mapErr(err error) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() & 0xff {
		case sqlite3.SQLITE_FULL, sqlite3.SQLITE_TOOBIG:
			return fmt.Errorf("%w: %w", domain.ErrCapacityExceeded, err)
		}
	}
	return err
}
