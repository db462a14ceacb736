// Package config provides unified configuration loading for crosswalk.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/scenario"
)

// CrosswalkConfig contains all crosswalk configuration settings.
type CrosswalkConfig struct {
	// Grid sets the size of the simulated area.
	Grid GridConfig `json:"grid" yaml:"grid"`

	// Run controls the turn loop.
	Run RunConfig `json:"run" yaml:"run"`

	// Generator shapes scenarios produced by `crosswalk generate` and by
	// `crosswalk run` when no scenario file is given.
	Generator GeneratorConfig `json:"generator" yaml:"generator"`

	// Output selects the files a run writes.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Backup controls `crosswalk backup`.
	Backup BackupConfig `json:"backup" yaml:"backup"`
}

// GridConfig sets the grid dimensions.
type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// RunConfig controls a simulation run.
type RunConfig struct {
	// Turns is the number of turns to play. Zero means ask on stdin.
	Turns int `json:"turns" yaml:"turns"`

	// Seed fixes the random source. Zero picks a fresh seed per run.
	Seed uint64 `json:"seed" yaml:"seed"`

	// TouristMaxMoves caps the idle and random-walk actions of a Tourist.
	TouristMaxMoves int `json:"tourist_max_moves" yaml:"tourist_max_moves"`

	// StopWhenEmpty ends a run early once every agent has finished.
	StopWhenEmpty bool `json:"stop_when_empty" yaml:"stop_when_empty"`

	// CheckInvariants verifies occupancy bookkeeping after every turn.
	CheckInvariants bool `json:"check_invariants" yaml:"check_invariants"`
}

// GeneratorConfig is the start band and class mix of generated scenarios.
type GeneratorConfig struct {
	BandMinX         int     `json:"band_min_x" yaml:"band_min_x"`
	BandMaxX         int     `json:"band_max_x" yaml:"band_max_x"`
	BandMinY         int     `json:"band_min_y" yaml:"band_min_y"`
	BandMaxY         int     `json:"band_max_y" yaml:"band_max_y"`
	ProbMover        float64 `json:"prob_mover" yaml:"prob_mover"`
	ProbPathFollower float64 `json:"prob_path_follower" yaml:"prob_path_follower"`
	ProbTourist      float64 `json:"prob_tourist" yaml:"prob_tourist"`
	Walls            bool    `json:"walls" yaml:"walls"`
}

// OutputConfig selects run outputs. Relative paths resolve against the
// working directory.
type OutputConfig struct {
	// TrajectoryCSV is the trajectory file path; empty disables it.
	TrajectoryCSV string `json:"trajectory_csv" yaml:"trajectory_csv"`

	// SnapshotDir receives one file per turn when SnapshotFormat is not "none".
	SnapshotDir    string                   `json:"snapshot_dir" yaml:"snapshot_dir"`
	SnapshotFormat constants.SnapshotFormat `json:"snapshot_format" yaml:"snapshot_format"`
	SnapshotScale  int                      `json:"snapshot_scale" yaml:"snapshot_scale"`

	// Archive stores every run in .crosswalk/crosswalk.db.
	Archive bool `json:"archive" yaml:"archive"`
}

// LoggingConfig configures crosswalk's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .crosswalk/decisions.jsonl.
	// "trace" additionally logs every agent decision to stderr.
	Level string `json:"level" yaml:"level"`
}

// BackupConfig controls archive backups and their retention.
type BackupConfig struct {
	// Compress writes gzip backups with a checksummed header. Off writes plain JSON.
	Compress bool `json:"compress" yaml:"compress"`

	// MaxCount keeps at most this many backups in the backup directory.
	// Zero disables the count limit.
	MaxCount int `json:"max_count" yaml:"max_count"`

	// MaxAge drops backups older than this ("30d", "2w", "720h"). Empty keeps all.
	MaxAge string `json:"max_age" yaml:"max_age"`
}

// Default returns a CrosswalkConfig with sensible defaults.
func Default() *CrosswalkConfig {
	return &CrosswalkConfig{
		Grid: GridConfig{
			Width:  constants.DefaultWidth,
			Height: constants.DefaultHeight,
		},
		Run: RunConfig{
			TouristMaxMoves: constants.DefaultMaxTouristMoves,
		},
		Generator: GeneratorConfig{
			BandMinX:         constants.DefaultBandMinX,
			BandMaxX:         constants.DefaultBandMaxX,
			BandMinY:         constants.DefaultBandMinY,
			BandMaxY:         constants.DefaultBandMaxY,
			ProbMover:        constants.DefaultProbMover,
			ProbPathFollower: constants.DefaultProbPathFollower,
			ProbTourist:      constants.DefaultProbTourist,
			Walls:            true,
		},
		Output: OutputConfig{
			SnapshotDir:    "snapshots",
			SnapshotFormat: constants.FormatNone,
			SnapshotScale:  constants.DefaultSnapshotScale,
			Archive:        true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Backup: BackupConfig{
			Compress: true,
			MaxCount: 10,
		},
	}
}

// Path returns ~/.crosswalk/config.yaml.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DirName, constants.ConfigFile), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.crosswalk/config.yaml -> environment variables
func Load() (*CrosswalkConfig, error) {
	config := Default()

	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*CrosswalkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Save writes the configuration to path, creating the directory.
func Save(config *CrosswalkConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid, generator included.
func (c *CrosswalkConfig) Validate() error {
	err := c.ValidateRun()
	if gerr := c.ScenarioGenerator().Validate(); gerr != nil {
		err = errors.Join(err, fmt.Errorf("generator: %w", gerr))
	}
	return err
}

// ValidateRun checks every section a run reads when replaying a scenario
// file. The generator section is not consulted.
func (c *CrosswalkConfig) ValidateRun() error {
	var errs []error

	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height))
	} else if c.Grid.Width > constants.MaxGridCells/c.Grid.Height {
		errs = append(errs, fmt.Errorf("grid %dx%d exceeds %d cells", c.Grid.Width, c.Grid.Height, constants.MaxGridCells))
	}
	if c.Run.Turns < 0 || c.Run.Turns > constants.MaxTurns {
		errs = append(errs, fmt.Errorf("turns must be between 0 and %d, got %d", constants.MaxTurns, c.Run.Turns))
	}
	if c.Run.TouristMaxMoves <= 0 {
		errs = append(errs, fmt.Errorf("tourist_max_moves must be positive, got %d", c.Run.TouristMaxMoves))
	}
	if !c.Output.SnapshotFormat.Valid() {
		errs = append(errs, fmt.Errorf("invalid snapshot format: %s (valid: none, txt, png)", c.Output.SnapshotFormat))
	}
	if c.Output.SnapshotScale <= 0 {
		errs = append(errs, fmt.Errorf("snapshot_scale must be positive, got %d", c.Output.SnapshotScale))
	}

	if c.Backup.MaxCount < 0 {
		errs = append(errs, fmt.Errorf("backup max_count must be non-negative, got %d", c.Backup.MaxCount))
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// ScenarioGenerator combines the grid and generator sections.
func (c *CrosswalkConfig) ScenarioGenerator() scenario.GeneratorConfig {
	return scenario.GeneratorConfig{
		Width:            c.Grid.Width,
		Height:           c.Grid.Height,
		MinX:             c.Generator.BandMinX,
		MaxX:             c.Generator.BandMaxX,
		MinY:             c.Generator.BandMinY,
		MaxY:             c.Generator.BandMaxY,
		ProbMover:        c.Generator.ProbMover,
		ProbPathFollower: c.Generator.ProbPathFollower,
		ProbTourist:      c.Generator.ProbTourist,
		Walls:            c.Generator.Walls,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *CrosswalkConfig) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"CROSSWALK_TURNS", &config.Run.Turns},
		{"CROSSWALK_WIDTH", &config.Grid.Width},
		{"CROSSWALK_HEIGHT", &config.Grid.Height},
		{"CROSSWALK_TOURIST_MAX_MOVES", &config.Run.TouristMaxMoves},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", e.name, v)
		}
		*e.dst = n
	}

	if v := os.Getenv("CROSSWALK_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CROSSWALK_SEED: %q is not an unsigned integer", v)
		}
		config.Run.Seed = n
	}

	if v := os.Getenv("CROSSWALK_ARCHIVE"); v != "" {
		config.Output.Archive = v == "true" || v == "1"
	}

	if v := os.Getenv("CROSSWALK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	return nil
}
