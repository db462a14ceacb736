package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/backup"
	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/constants"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crosswalk configuration",
		Long: `View and modify crosswalk configuration settings.

Configuration is stored in ~/.crosswalk/config.yaml.

Examples:
  crosswalk config list                          # Show all settings
  crosswalk config get run.turns                 # Get a specific setting
  crosswalk config set run.turns 200             # Set a setting
  crosswalk config set output.snapshot_format png`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

// configKeys lists every settable key in display order.
var configKeys = []string{
	"grid.width",
	"grid.height",
	"run.turns",
	"run.seed",
	"run.tourist_max_moves",
	"run.stop_when_empty",
	"run.check_invariants",
	"generator.band_min_x",
	"generator.band_max_x",
	"generator.band_min_y",
	"generator.band_max_y",
	"generator.prob_mover",
	"generator.prob_path_follower",
	"generator.prob_tourist",
	"generator.walls",
	"output.trajectory_csv",
	"output.snapshot_dir",
	"output.snapshot_format",
	"output.snapshot_scale",
	"output.archive",
	"logging.level",
	"backup.compress",
	"backup.max_count",
	"backup.max_age",
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.CrosswalkConfig) {
	fmt.Fprintln(w, "Configuration (~/.crosswalk/config.yaml):")
	section := ""
	for _, key := range configKeys {
		value, _ := getConfigValue(cfg, key)
		prefix, _, _ := strings.Cut(key, ".")
		if prefix != section {
			section = prefix
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "  %-30s %s\n", key+":", displayValue(key, value))
	}
}

func displayValue(key string, value interface{}) string {
	switch key {
	case "run.turns":
		if value.(int) == 0 {
			return "0 (ask)"
		}
	case "run.seed":
		if value.(uint64) == 0 {
			return "0 (random)"
		}
	case "output.trajectory_csv", "backup.max_age":
		if value.(string) == "" {
			return "(not set)"
		}
	}
	return fmt.Sprint(value)
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			out := cmd.OutOrStdout()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				}
				return nil
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			} else {
				fmt.Fprintf(out, "%s = %v\n", key, value)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]
			out := cmd.OutOrStdout()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": err.Error(),
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
				return nil
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save invalid config: %w", err)
			}

			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			} else {
				fmt.Fprintf(out, "Set %s = %s\n", key, value)
			}
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.CrosswalkConfig, key string) (interface{}, bool) {
	switch key {
	case "grid.width":
		return cfg.Grid.Width, true
	case "grid.height":
		return cfg.Grid.Height, true
	case "run.turns":
		return cfg.Run.Turns, true
	case "run.seed":
		return cfg.Run.Seed, true
	case "run.tourist_max_moves":
		return cfg.Run.TouristMaxMoves, true
	case "run.stop_when_empty":
		return cfg.Run.StopWhenEmpty, true
	case "run.check_invariants":
		return cfg.Run.CheckInvariants, true
	case "generator.band_min_x":
		return cfg.Generator.BandMinX, true
	case "generator.band_max_x":
		return cfg.Generator.BandMaxX, true
	case "generator.band_min_y":
		return cfg.Generator.BandMinY, true
	case "generator.band_max_y":
		return cfg.Generator.BandMaxY, true
	case "generator.prob_mover":
		return cfg.Generator.ProbMover, true
	case "generator.prob_path_follower":
		return cfg.Generator.ProbPathFollower, true
	case "generator.prob_tourist":
		return cfg.Generator.ProbTourist, true
	case "generator.walls":
		return cfg.Generator.Walls, true
	case "output.trajectory_csv":
		return cfg.Output.TrajectoryCSV, true
	case "output.snapshot_dir":
		return cfg.Output.SnapshotDir, true
	case "output.snapshot_format":
		return string(cfg.Output.SnapshotFormat), true
	case "output.snapshot_scale":
		return cfg.Output.SnapshotScale, true
	case "output.archive":
		return cfg.Output.Archive, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "backup.compress":
		return cfg.Backup.Compress, true
	case "backup.max_count":
		return cfg.Backup.MaxCount, true
	case "backup.max_age":
		return cfg.Backup.MaxAge, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.CrosswalkConfig, key, value string) error {
	var err error
	switch key {
	case "grid.width":
		cfg.Grid.Width, err = parseIntValue(value)
	case "grid.height":
		cfg.Grid.Height, err = parseIntValue(value)
	case "run.turns":
		cfg.Run.Turns, err = parseIntValue(value)
	case "run.seed":
		cfg.Run.Seed, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			err = fmt.Errorf("invalid seed: %s", value)
		}
	case "run.tourist_max_moves":
		cfg.Run.TouristMaxMoves, err = parseIntValue(value)
	case "run.stop_when_empty":
		cfg.Run.StopWhenEmpty = parseBoolValue(value)
	case "run.check_invariants":
		cfg.Run.CheckInvariants = parseBoolValue(value)
	case "generator.band_min_x":
		cfg.Generator.BandMinX, err = parseIntValue(value)
	case "generator.band_max_x":
		cfg.Generator.BandMaxX, err = parseIntValue(value)
	case "generator.band_min_y":
		cfg.Generator.BandMinY, err = parseIntValue(value)
	case "generator.band_max_y":
		cfg.Generator.BandMaxY, err = parseIntValue(value)
	case "generator.prob_mover":
		cfg.Generator.ProbMover, err = parseProbability(value)
	case "generator.prob_path_follower":
		cfg.Generator.ProbPathFollower, err = parseProbability(value)
	case "generator.prob_tourist":
		cfg.Generator.ProbTourist, err = parseProbability(value)
	case "generator.walls":
		cfg.Generator.Walls = parseBoolValue(value)
	case "output.trajectory_csv":
		cfg.Output.TrajectoryCSV = value
	case "output.snapshot_dir":
		cfg.Output.SnapshotDir = value
	case "output.snapshot_format":
		format := constants.SnapshotFormat(value)
		if !format.Valid() {
			return fmt.Errorf("invalid snapshot format: %s (valid: none, txt, png)", value)
		}
		cfg.Output.SnapshotFormat = format
	case "output.snapshot_scale":
		cfg.Output.SnapshotScale, err = parseIntValue(value)
	case "output.archive":
		cfg.Output.Archive = parseBoolValue(value)
	case "logging.level":
		switch value {
		case "info", "debug", "trace":
			cfg.Logging.Level = value
		default:
			return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", value)
		}
	case "backup.compress":
		cfg.Backup.Compress = parseBoolValue(value)
	case "backup.max_count":
		cfg.Backup.MaxCount, err = parseIntValue(value)
	case "backup.max_age":
		if value != "" {
			if _, perr := backup.ParseDuration(value); perr != nil {
				return perr
			}
		}
		cfg.Backup.MaxAge = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return err
}

func parseIntValue(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", value)
	}
	return n, nil
}

func parseBoolValue(value string) bool {
	return value == "true" || value == "1"
}

func parseProbability(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid probability: %s (must be a number between 0 and 1)", value)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("probability must be between 0 and 1, got %g", f)
	}
	return f, nil
}
