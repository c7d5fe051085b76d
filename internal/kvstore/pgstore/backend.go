// Package pgstore is a kvstore.Backend on a Postgres table.
// The kv_entries schema is created by the goose migrations in /migrations.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/kvstore"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting pgx.Tx lets integration tests run every case inside a transaction
// that is rolled back afterwards; Begin on a pgx.Tx opens a savepoint.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Backend stores each key as one row of kv_entries.
type Backend struct {
	db db
}

var _ kvstore.Backend = (*Backend)(nil)

// New constructs a Backend on the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
// The caller owns the connection; Close does not close it.
func New(db db) *Backend {
	return &Backend{db: db}
}

// Load selects the value for key.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT value FROM kv_entries WHERE key = @key`

	var value []byte
	err := b.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pgstore.Backend.Load: %w", err)
	}
	return value, true, nil
}

// Apply upserts and deletes the batch inside one SQL transaction.
func (b *Backend) Apply(ctx context.Context, batch []kvstore.Write) error {
	const (
		upsert = `
			INSERT INTO kv_entries (key, value)
			VALUES (@key, @value)
			ON CONFLICT (key) DO UPDATE
			SET value      = EXCLUDED.value,
			    updated_at = now()`
		remove = `DELETE FROM kv_entries WHERE key = @key`
	)

	tx, err := b.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore.Backend.Apply: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	for _, w := range batch {
		if w.Delete {
			_, err = tx.Exec(ctx, remove, pgx.NamedArgs{"key": w.Key})
		} else {
			_, err = tx.Exec(ctx, upsert, pgx.NamedArgs{"key": w.Key, "value": w.Value})
		}
		if err != nil {
			return fmt.Errorf("pgstore.Backend.Apply: %q: %w", w.Key, mapErr(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore.Backend.Apply: commit: %w", mapErr(err))
	}
	return nil
}

// Size returns the summed byte length of every key and value.
func (b *Backend) Size(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0)::bigint FROM kv_entries`

	var size int64
	if err := b.db.QueryRow(ctx, q).Scan(&size); err != nil {
		return 0, fmt.Errorf("pgstore.Backend.Size: %w", err)
	}
	return size, nil
}

// Close is a no-op; the connection belongs to the caller.
func (b *Backend) Close() error { return nil }

// Postgres error codes that mean the server cannot take more data.
const (
	codeDiskFull             = "53100"
	codeProgramLimitExceeded = "54000"
)

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeDiskFull, codeProgramLimitExceeded:
			return fmt.Errorf("%w: %w", domain.ErrCapacityExceeded, err)
		}
	}
	return err
}
