package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/logging"
	"github.com/nvandessel/crosswalk/internal/models"
	"github.com/nvandessel/crosswalk/internal/scenario"
	"github.com/nvandessel/crosswalk/internal/simulation"
	"github.com/nvandessel/crosswalk/internal/store"
	"github.com/nvandessel/crosswalk/internal/trajectory"
	"github.com/nvandessel/crosswalk/internal/visualization"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a crossing simulation",
		Long: `Run a crossing simulation from a scenario file, or from a generated
crossing when no scenario is given.

Settings come from ~/.crosswalk/config.yaml and CROSSWALK_* environment
variables; flags override both. When no turn count is configured the
command asks for one on stdin.

Examples:
  crosswalk run --turns 40                       # Generated crossing, 40 turns
  crosswalk run --scenario cross.csv --turns 100 # Replay a scenario file
  crosswalk run --turns 40 --seed 7              # Reproducible run
  crosswalk run --turns 40 --snapshots png       # Write one PNG per turn
  crosswalk run --turns 40 --trajectory out.csv  # Write the trajectory CSV`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			quiet, _ := cmd.Flags().GetBool("quiet")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			validate := cfg.Validate
			if scenarioPath != "" {
				validate = cfg.ValidateRun
			}
			if err := validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			turns := cfg.Run.Turns
			if turns == 0 {
				turns, err = promptTurns(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			seed := cfg.Run.Seed
			if seed == 0 {
				seed = simulation.NewSeed()
			}

			ctx, cancel := signalContext(context.Background())
			defer cancel()

			out, err := executeRun(ctx, runRequest{
				Root:     root,
				Scenario: scenarioPath,
				Turns:    turns,
				Seed:     seed,
				Config:   cfg,
				Stderr:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}
			printRunOutput(cmd.OutOrStdout(), out, !quiet)
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario CSV file (default: generate a crossing)")
	cmd.Flags().Int("turns", 0, "Number of turns (default: config run.turns, else ask)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks a fresh one)")
	cmd.Flags().Int("width", 0, "Grid width (default: config grid.width)")
	cmd.Flags().Int("height", 0, "Grid height (default: config grid.height)")
	cmd.Flags().Int("tourist-max-moves", 0, "Tourist lifetime in idle and random-walk actions")
	cmd.Flags().Bool("no-walls", false, "Do not wall off rows outside the start band (generated crossings)")
	cmd.Flags().String("trajectory", "", "Write the trajectory CSV to this path")
	cmd.Flags().String("snapshots", "", "Per-turn snapshot files: none, txt, or png")
	cmd.Flags().String("snapshot-dir", "", "Directory for snapshot files")
	cmd.Flags().Int("snapshot-scale", 0, "Pixels per cell in PNG snapshots")
	cmd.Flags().Bool("no-archive", false, "Do not store the run in .crosswalk/crosswalk.db")
	cmd.Flags().Bool("stop-when-empty", false, "End the run once every agent has finished")
	cmd.Flags().Bool("check-invariants", false, "Verify occupancy bookkeeping after every turn")
	cmd.Flags().String("log-level", "", "Log level: info, debug, or trace")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print the final grid")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.CrosswalkConfig) error {
	flags := cmd.Flags()

	if flags.Changed("turns") {
		turns, _ := flags.GetInt("turns")
		if turns <= 0 {
			return fmt.Errorf("--turns must be positive, got %d", turns)
		}
		cfg.Run.Turns = turns
	}
	if flags.Changed("seed") {
		cfg.Run.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("width") {
		cfg.Grid.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Grid.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("tourist-max-moves") {
		cfg.Run.TouristMaxMoves, _ = flags.GetInt("tourist-max-moves")
	}
	if noWalls, _ := flags.GetBool("no-walls"); noWalls {
		cfg.Generator.Walls = false
	}
	if flags.Changed("trajectory") {
		cfg.Output.TrajectoryCSV, _ = flags.GetString("trajectory")
	}
	if flags.Changed("snapshots") {
		format, _ := flags.GetString("snapshots")
		cfg.Output.SnapshotFormat = constants.SnapshotFormat(format)
	}
	if flags.Changed("snapshot-dir") {
		cfg.Output.SnapshotDir, _ = flags.GetString("snapshot-dir")
	}
	if flags.Changed("snapshot-scale") {
		cfg.Output.SnapshotScale, _ = flags.GetInt("snapshot-scale")
	}
	if noArchive, _ := flags.GetBool("no-archive"); noArchive {
		cfg.Output.Archive = false
	}
	if stop, _ := flags.GetBool("stop-when-empty"); stop {
		cfg.Run.StopWhenEmpty = true
	}
	if check, _ := flags.GetBool("check-invariants"); check {
		cfg.Run.CheckInvariants = true
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	return nil
}

// promptTurns reads the turn count from in. The prompt is only shown on a
// terminal. An empty answer or end of input selects the default.
func promptTurns(in io.Reader, prompt io.Writer) (int, error) {
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		fmt.Fprintf(prompt, "Number of turns [%d]: ", constants.DefaultTurns)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading turn count: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return constants.DefaultTurns, nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n <= 0 || n > constants.MaxTurns {
		return 0, fmt.Errorf("turn count must be between 1 and %d, got %q", constants.MaxTurns, line)
	}
	return n, nil
}

type runRequest struct {
	Root     string
	Scenario string
	Turns    int
	Seed     uint64
	Config   *config.CrosswalkConfig
	Stderr   io.Writer
}

type runOutput struct {
	RunID          string          `json:"run_id,omitempty"`
	Source         string          `json:"source"`
	Seed           uint64          `json:"seed"`
	Agents         int             `json:"agents"`
	Turns          int             `json:"turns"`
	TurnsPlayed    int             `json:"turns_played"`
	Interrupted    bool            `json:"interrupted,omitempty"`
	SwapsRequested int             `json:"swaps_requested"`
	SwapsAccepted  int             `json:"swaps_accepted"`
	TrajectoryCSV  string          `json:"trajectory_csv,omitempty"`
	TrajectoryRows int             `json:"trajectory_rows,omitempty"`
	SnapshotDir    string          `json:"snapshot_dir,omitempty"`
	Snapshots      []string        `json:"snapshots,omitempty"`
	Summary        engine.Summary  `json:"summary"`
	FinalFrame     models.Snapshot `json:"-"`
}

// executeRun loads or generates the scenario, wires the configured outputs
// and plays the run. A run cancelled through ctx is not an error; its
// partial result is returned with Interrupted set.
func executeRun(ctx context.Context, req runRequest) (*runOutput, error) {
	cfg := req.Config
	rng := simulation.NewRand(req.Seed)

	records, source, err := scenario.Load(req.Scenario, cfg.ScenarioGenerator(), rng)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	stderr := req.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	logger := logging.NewLogger(cfg.Logging.Level, stderr)
	decisions := logging.NewDecisionLogger(store.LocalDir(req.Root), cfg.Logging.Level)
	defer decisions.Close()

	runner, err := simulation.Build(records, simulation.Config{
		Width:           cfg.Grid.Width,
		Height:          cfg.Grid.Height,
		Turns:           req.Turns,
		MaxTouristMoves: cfg.Run.TouristMaxMoves,
		Rand:            rng,
		Logger:          logger,
		Decisions:       decisions,
		StopWhenEmpty:   cfg.Run.StopWhenEmpty,
		CheckInvariants: cfg.Run.CheckInvariants,
	})
	if err != nil {
		return nil, err
	}

	out := &runOutput{
		Source: source,
		Seed:   req.Seed,
		Agents: len(records),
		Turns:  req.Turns,
	}

	var csvWriter *trajectory.CSVWriter
	if path := cfg.Output.TrajectoryCSV; path != "" {
		csvWriter, err = trajectory.CreateCSV(path)
		if err != nil {
			return nil, err
		}
		defer csvWriter.Close()
		runner.Observers = append(runner.Observers, csvWriter)
		out.TrajectoryCSV = path
	}

	var snapshots *visualization.DirWriter
	if cfg.Output.SnapshotFormat != constants.FormatNone {
		snapshots, err = visualization.NewDirWriter(cfg.Output.SnapshotDir, cfg.Output.SnapshotFormat, cfg.Output.SnapshotScale)
		if err != nil {
			return nil, err
		}
		runner.Observers = append(runner.Observers, snapshots)
		out.SnapshotDir = cfg.Output.SnapshotDir
	}

	if cfg.Output.Archive {
		runStore, err := store.NewSQLiteRunStore(req.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open run archive: %w", err)
		}
		defer runStore.Close()

		recorder, err := store.NewRecorder(ctx, runStore, store.RunMeta{
			Source: source,
			Seed:   req.Seed,
			Width:  cfg.Grid.Width,
			Height: cfg.Grid.Height,
			Turns:  req.Turns,
			Agents: len(records),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to archive run: %w", err)
		}
		runner.Observers = append(runner.Observers, recorder)
		out.RunID = recorder.RunID()
	}

	result, err := runner.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
		out.Interrupted = true
	}

	out.TurnsPlayed = result.TurnsPlayed
	out.SwapsRequested, out.SwapsAccepted = result.SwapTotals()
	out.Summary = result.Summary
	out.FinalFrame = runner.World.Snapshot()
	if csvWriter != nil {
		out.TrajectoryRows = csvWriter.Rows()
	}
	if snapshots != nil {
		out.Snapshots = snapshots.Files()
	}
	return out, nil
}
