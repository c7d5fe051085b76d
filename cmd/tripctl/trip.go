package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/urfave/cli/v2"

	"github.com/pkordes/trip-planner/internal/domain"
)

func tripCommand() *cli.Command {
	return &cli.Command{
		Name:  "trip",
		Usage: "Create, list and delete trips",
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Create a trip and print its id",
				Action: tripAddCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Trip title", Required: true},
					&cli.StringFlag{Name: "start", Usage: "Start date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "end", Usage: "End date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "status", Usage: "planning, confirmed, ongoing, completed or cancelled"},
					&cli.StringFlag{Name: "description", Usage: "Free-text description"},
					&cli.StringFlag{Name: "destination", Usage: "Destination name"},
					&cli.StringFlag{Name: "owner", Usage: "Owner id"},
				},
			},
			{
				Name:   "list",
				Usage:  "List trips",
				Action: tripListCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Only trips with this status (or all)"},
					&cli.StringFlag{Name: "search", Usage: "Case-insensitive text in title or description"},
					&cli.StringFlag{Name: "sort", Usage: "start_date_desc, start_date_asc, created_desc or updated_desc"},
					&cli.StringFlag{Name: "owner", Usage: "Only trips of this owner"},
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a trip and all of its items",
				ArgsUsage: "<trip-id>",
				Action:    tripRemoveCommand,
			},
			{
				Name:   "stats",
				Usage:  "Count trips per status",
				Action: tripStatsCommand,
			},
		},
	}
}

func tripAddCommand(c *cli.Context) error {
	start, err := parseDate(c.String("start"))
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parseDate(c.String("end"))
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	return withServices(c, func(ctx context.Context, s services) error {
		trip, err := s.trips.Create(ctx, domain.TripDraft{
			OwnerID:     c.String("owner"),
			Title:       c.String("title"),
			Description: c.String("description"),
			StartDate:   start,
			EndDate:     end,
			Status:      domain.Status(c.String("status")),
			Destination: c.String("destination"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, trip.ID)
		return nil
	})
}

func tripListCommand(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, s services) error {
		trips, err := s.trips.List(ctx, domain.ListFilter{
			OwnerID: c.String("owner"),
			Status:  domain.Status(c.String("status")),
			Search:  c.String("search"),
			Sort:    domain.SortKey(c.String("sort")),
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tSTART\tEND\tDESTINATION")
		for _, t := range trips {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Title, t.Status,
				t.StartDate.Format(openapi_types.DateFormat), t.EndDate.Format(openapi_types.DateFormat), t.Destination)
		}
		return tw.Flush()
	})
}

func tripRemoveCommand(c *cli.Context) error {
	id, err := uuidArg(c, 0, "trip-id")
	if err != nil {
		return err
	}

	return withServices(c, func(ctx context.Context, s services) error {
		deleted, err := s.trips.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("trip %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

func tripStatsCommand(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, s services) error {
		stats, err := s.trips.Stats(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "total\t%d\n", stats.Total)
		for _, st := range domain.Statuses {
			fmt.Fprintf(tw, "%s\t%d\n", st, stats.ByStatus[st])
		}
		return tw.Flush()
	})
}

func parseDate(s string) (openapi_types.Date, error) {
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		return openapi_types.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return openapi_types.Date{Time: t}, nil
}

func uuidArg(c *cli.Context, i int, name string) (uuid.UUID, error) {
	if c.NArg() <= i {
		return uuid.Nil, fmt.Errorf("missing <%s> argument", name)
	}
	id, err := uuid.Parse(c.Args().Get(i))
	if err != nil {
		return uuid.Nil, fmt.Errorf("<%s>: %w", name, err)
	}
	return id, nil
}
