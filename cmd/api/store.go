package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/kvstore"
	"github.com/pkordes/trip-planner/internal/kvstore/badgerstore"
	"github.com/pkordes/trip-planner/internal/kvstore/pgstore"
	"github.com/pkordes/trip-planner/internal/kvstore/sqlitestore"
	"github.com/pkordes/trip-planner/migrations"
)

// openStore builds the kvstore.Store selected by cfg.StoreDriver.
// The returned func releases the store and whatever it was opened on.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*kvstore.Store, func(), error) {
	opts := []kvstore.Option{kvstore.WithMaxBytes(cfg.StoreMaxBytes), kvstore.WithLogger(logger)}

	switch cfg.StoreDriver {
	case config.DriverBadger:
		backend, err := badgerstore.Open(cfg.BadgerDir, false, logger)
		if err != nil {
			return nil, nil, err
		}
		store := kvstore.New(backend, opts...)
		return store, func() { _ = store.Close() }, nil

	case config.DriverSQLite:
		backend, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store := kvstore.New(backend, opts...)
		return store, func() { _ = store.Close() }, nil

	case config.DriverPostgres:
		// pgxpool.New does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(ctx, db)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database migrations applied", "count", applied)

		store := kvstore.New(pgstore.New(pool), opts...)
		return store, func() {
			_ = store.Close()
			pool.Close()
		}, nil

	default:
		store := kvstore.NewMemoryStore(opts...)
		return store, func() { _ = store.Close() }, nil
	}
}
