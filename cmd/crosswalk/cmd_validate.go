package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.csv>",
		Short: "Validate a scenario file",
		Long: `Validate a scenario file against the configured grid.

This command checks for:
  - Malformed records (field count, coordinates, class symbol, agent id)
  - Coordinates outside the grid
  - Obstacles whose destination differs from their start
  - Two records starting on the same cell

Examples:
  crosswalk validate cross.csv
  crosswalk validate cross.csv --width 30 --height 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("width") {
				cfg.Grid.Width, _ = cmd.Flags().GetInt("width")
			}
			if cmd.Flags().Changed("height") {
				cfg.Grid.Height, _ = cmd.Flags().GetInt("height")
			}

			counts, err := validateScenario(path, cfg)
			if err != nil {
				if jsonOut {
					result := map[string]interface{}{
						"valid": false,
						"path":  path,
						"error": err.Error(),
					}
					var perr *scenario.ParseError
					if errors.As(err, &perr) {
						result["line"] = perr.Line
					}
					json.NewEncoder(cmd.OutOrStdout()).Encode(result)
				}
				return fmt.Errorf("invalid scenario: %w", err)
			}

			total := 0
			for _, n := range counts {
				total += n
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"valid":   true,
					"path":    path,
					"records": total,
					"classes": counts,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d records fit a %dx%d grid\n", path, total, cfg.Grid.Width, cfg.Grid.Height)
			printClassCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}

	cmd.Flags().Int("width", 0, "Grid width (default: config grid.width)")
	cmd.Flags().Int("height", 0, "Grid height (default: config grid.height)")

	return cmd
}

// validateScenario parses the file and places every record on an empty
// world, so start-cell collisions are caught as well.
func validateScenario(path string, cfg *config.CrosswalkConfig) (map[string]int, error) {
	records, err := scenario.ParseFile(path, cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return nil, err
	}
	w := engine.New(cfg.Grid.Width, cfg.Grid.Height, engine.Options{})
	if err := w.Populate(records); err != nil {
		return nil, err
	}
	return classCounts(records), nil
}
