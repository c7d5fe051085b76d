package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pkordes/trip-planner/internal/domain"
)

func itemCommand() *cli.Command {
	return &cli.Command{
		Name:  "item",
		Usage: "Manage the itinerary items of a trip",
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add an item to a trip and print its id",
				Action: itemAddCommand,
				Flags: []cli.Flag{
					tripFlag(),
					&cli.StringFlag{Name: "title", Usage: "Item title", Required: true},
					&cli.TimestampFlag{Name: "start", Usage: "Start time (RFC 3339)", Layout: time.RFC3339, Required: true},
					&cli.TimestampFlag{Name: "end", Usage: "End time (RFC 3339)", Layout: time.RFC3339},
					&cli.StringFlag{Name: "type", Usage: "transport, accommodation, activity, meal, attraction or other"},
					&cli.StringFlag{Name: "location", Usage: "Location name"},
					&cli.Float64Flag{Name: "cost", Usage: "Cost, not negative"},
					&cli.StringFlag{Name: "notes", Usage: "Free-text notes"},
				},
			},
			{
				Name:   "list",
				Usage:  "List the items of a trip in itinerary order",
				Action: itemListCommand,
				Flags:  []cli.Flag{tripFlag()},
			},
			{
				Name:      "rm",
				Usage:     "Delete an item",
				ArgsUsage: "<item-id>",
				Action:    itemRemoveCommand,
				Flags:     []cli.Flag{tripFlag()},
			},
			{
				Name:      "reorder",
				Usage:     "Set the order of a trip's items",
				ArgsUsage: "<item-id>...",
				Action:    itemReorderCommand,
				Flags:     []cli.Flag{tripFlag()},
			},
		},
	}
}

// tripFlag is built per command because urfave/cli flags record parse state.
func tripFlag() cli.Flag {
	return &cli.StringFlag{Name: "trip", Aliases: []string{"t"}, Usage: "Trip id", Required: true}
}

func itemAddCommand(c *cli.Context) error {
	tripID, err := uuid.Parse(c.String("trip"))
	if err != nil {
		return fmt.Errorf("--trip: %w", err)
	}

	draft := domain.ItemDraft{
		Title:        c.String("title"),
		ItemType:     domain.ItemType(c.String("type")),
		LocationName: c.String("location"),
		Notes:        c.String("notes"),
	}
	if start := c.Timestamp("start"); start != nil {
		draft.StartDatetime = *start
	}
	draft.EndDatetime = c.Timestamp("end")
	if c.IsSet("cost") {
		cost := c.Float64("cost")
		draft.Cost = &cost
	}

	return withServices(c, func(ctx context.Context, s services) error {
		item, err := s.items.Create(ctx, tripID, draft)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, item.ID)
		return nil
	})
}

func itemListCommand(c *cli.Context) error {
	tripID, err := uuid.Parse(c.String("trip"))
	if err != nil {
		return fmt.Errorf("--trip: %w", err)
	}

	return withServices(c, func(ctx context.Context, s services) error {
		items, err := s.items.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSTART\tEND\tLOCATION")
		for _, it := range items {
			end := ""
			if it.EndDatetime != nil {
				end = it.EndDatetime.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				it.ID, it.Title, it.ItemType, it.StartDatetime.Format(time.RFC3339), end, it.LocationName)
		}
		return tw.Flush()
	})
}

func itemRemoveCommand(c *cli.Context) error {
	tripID, err := uuid.Parse(c.String("trip"))
	if err != nil {
		return fmt.Errorf("--trip: %w", err)
	}
	itemID, err := uuidArg(c, 0, "item-id")
	if err != nil {
		return err
	}

	return withServices(c, func(ctx context.Context, s services) error {
		deleted, err := s.items.Delete(ctx, tripID, itemID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
		}
		return nil
	})
}

func itemReorderCommand(c *cli.Context) error {
	tripID, err := uuid.Parse(c.String("trip"))
	if err != nil {
		return fmt.Errorf("--trip: %w", err)
	}
	if c.NArg() == 0 {
		return fmt.Errorf("missing <item-id> arguments")
	}
	ids := make([]uuid.UUID, c.NArg())
	for i := range ids {
		if ids[i], err = uuidArg(c, i, "item-id"); err != nil {
			return err
		}
	}

	return withServices(c, func(ctx context.Context, s services) error {
		return s.items.Reorder(ctx, tripID, ids)
	})
}
