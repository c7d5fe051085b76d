package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pkordes/trip-planner/internal/handler"
)

func exportCommand(c *cli.Context) error {
	format := c.String("format")
	if format != "csv" && format != "json" {
		return fmt.Errorf("invalid format %q: must be csv or json", format)
	}

	return withServices(c, func(ctx context.Context, s services) error {
		rows, err := s.export.Export(ctx)
		if err != nil {
			return err
		}
		if format == "csv" {
			return handler.EncodeCSV(c.App.Writer, rows)
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.ToExportRows(rows))
	})
}
