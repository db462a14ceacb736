package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/logging"
	"github.com/nvandessel/crosswalk/internal/models"
)

// ErrNoTurns is returned when a run is asked to play zero or fewer turns.
var ErrNoTurns = errors.New("turn count must be positive")

// Config describes a run to Build.
type Config struct {
	Width           int
	Height          int
	Turns           int
	MaxTouristMoves int

	Rand      engine.Rand
	Logger    *slog.Logger
	Decisions *logging.DecisionLogger

	StopWhenEmpty   bool
	CheckInvariants bool
}

// Runner plays Turns turns of World and notifies Observers after each.
type Runner struct {
	World     *engine.World
	Turns     int
	Observers []Observer
	Logger    *slog.Logger

	// StopWhenEmpty ends the run early once no agent is active.
	StopWhenEmpty bool

	// CheckInvariants verifies occupancy bookkeeping after every turn and
	// aborts on the first violation.
	CheckInvariants bool
}

// Result is what a run produced.
type Result struct {
	TurnsPlayed int                 `json:"turns_played"`
	Reports     []engine.TurnReport `json:"reports"`
	Summary     engine.Summary      `json:"summary"`
}

// SwapTotals sums swap requests and acceptances over all turns.
func (r Result) SwapTotals() (requested, accepted int) {
	for _, rep := range r.Reports {
		requested += rep.SwapsRequested
		accepted += rep.SwapsAccepted
	}
	return requested, accepted
}

// Build creates a world from records and wraps it in a runner.
func Build(records []models.Record, cfg Config) (*Runner, error) {
	if cfg.Turns <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoTurns, cfg.Turns)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	w := engine.New(cfg.Width, cfg.Height, engine.Options{
		TotalTurns:      cfg.Turns,
		MaxTouristMoves: cfg.MaxTouristMoves,
		Rand:            cfg.Rand,
		Logger:          logger,
		Decisions:       cfg.Decisions,
	})
	if err := w.Populate(records); err != nil {
		return nil, fmt.Errorf("populating world: %w", err)
	}

	return &Runner{
		World:           w,
		Turns:           cfg.Turns,
		Logger:          logger,
		StopWhenEmpty:   cfg.StopWhenEmpty,
		CheckInvariants: cfg.CheckInvariants,
	}, nil
}

// Run plays the turns. When ctx is cancelled between turns the partial
// result is returned together with ctx.Err(). Finishers are always called.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Turns <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrNoTurns, r.Turns)
	}
	if r.Logger == nil {
		r.Logger = logging.Discard()
	}

	var result Result
	err := r.play(ctx, &result)
	result.Summary = r.World.Summary()

	finishCtx := context.WithoutCancel(ctx)
	for _, o := range r.Observers {
		f, ok := o.(Finisher)
		if !ok {
			continue
		}
		if ferr := f.Finish(finishCtx, result); ferr != nil {
			err = errors.Join(err, fmt.Errorf("finishing observer: %w", ferr))
		}
	}
	return result, err
}

func (r *Runner) play(ctx context.Context, result *Result) error {
	if err := r.notify(ctx, r.World.Frame()); err != nil {
		return err
	}

	for range r.Turns {
		if err := ctx.Err(); err != nil {
			r.Logger.Info("run interrupted", "turns_played", result.TurnsPlayed)
			return err
		}

		report := r.World.Step()
		result.Reports = append(result.Reports, report)
		result.TurnsPlayed++

		r.Logger.Info("turn complete",
			"turn", report.Turn+1,
			"mode", report.TouristMode,
			"active", r.World.ActiveCount(),
			"removed", len(report.Removed()),
			"swaps", fmt.Sprintf("%d/%d", report.SwapsAccepted, report.SwapsRequested))

		if r.CheckInvariants {
			if err := r.World.CheckInvariants(); err != nil {
				return fmt.Errorf("after turn %d: %w", report.Turn+1, err)
			}
		}

		if err := r.notify(ctx, r.World.Frame()); err != nil {
			return err
		}

		if r.StopWhenEmpty && r.World.ActiveCount() == 0 {
			r.Logger.Info("all agents finished", "turns_played", result.TurnsPlayed)
			return nil
		}
	}
	return nil
}

func (r *Runner) notify(ctx context.Context, frame models.Frame) error {
	for _, o := range r.Observers {
		if err := o.ObserveFrame(ctx, frame); err != nil {
			return fmt.Errorf("observer at turn %d: %w", frame.Turn, err)
		}
	}
	return nil
}
