// Command tripctl manages trips and their items in a local BadgerDB store
// without running the API server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pkordes/trip-planner/internal/kvstore"
	"github.com/pkordes/trip-planner/internal/kvstore/badgerstore"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tripctl",
		Usage: "Manage trips and itinerary items in a local store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				EnvVars:  []string{"BADGER_DIR"},
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "max-bytes",
				Usage: "Store byte budget (0 disables the limit)",
				Value: kvstore.DefaultMaxBytes,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			tripCommand(),
			itemCommand(),
			{
				Name:   "export",
				Usage:  "Write every trip and item as a flat table",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (csv, json)",
						Value: "csv",
					},
				},
			},
		},
	}
}

// services is what every command runs against.
type services struct {
	trips  *service.TripService
	items  *service.ItemService
	export *service.ExportService
}

// withServices opens the store named by --db, runs fn and closes the store.
// Badger holds a directory lock, so the store is only open for one command.
func withServices(c *cli.Context, fn func(ctx context.Context, s services) error) error {
	logger := slog.Default()
	backend, err := badgerstore.Open(c.String("db"), false, logger)
	if err != nil {
		return err
	}
	store := kvstore.New(backend, kvstore.WithMaxBytes(c.Int64("max-bytes")), kvstore.WithLogger(logger))
	defer store.Close()

	trips := repo.NewTripRepo(store)
	items := repo.NewItemRepo(store)
	return fn(c.Context, services{
		trips:  service.NewTripService(trips),
		items:  service.NewItemService(trips, items),
		export: service.NewExportService(trips, items),
	})
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
