package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/grid"
	"github.com/nvandessel/crosswalk/internal/logging"
	"github.com/nvandessel/crosswalk/internal/models"
)

// ErrCellOccupied is returned by Populate when two records start on one cell.
var ErrCellOccupied = errors.New("start cell already occupied")

// ErrOutOfBounds is returned by Populate for coordinates outside the grid.
var ErrOutOfBounds = errors.New("coordinate outside grid")

// ErrDuplicateID is returned by Populate when two agents of one class share
// an identifier.
var ErrDuplicateID = errors.New("duplicate agent id")

// Rand is the randomness the engine draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Options configures a World.
type Options struct {
	// TotalTurns is the planned run length; it decides the Tourist modes.
	TotalTurns int

	// MaxTouristMoves defaults to constants.DefaultMaxTouristMoves.
	MaxTouristMoves int

	// Rand defaults to a randomly seeded PCG source.
	Rand Rand

	// Logger receives trace-level decisions and debug-level removals.
	Logger *slog.Logger

	// Decisions receives swap and removal events. May be nil.
	Decisions *logging.DecisionLogger
}

type pool struct {
	active   []Agent
	finished []Agent
}

// World owns the grid, the agent arena and the agent pools.
type World struct {
	grid      *grid.Grid
	arena     []Agent
	pools     map[models.Class]*pool
	obstacles []Agent

	turn            int
	totalTurns      int
	maxTouristMoves int

	rng       Rand
	logger    *slog.Logger
	decisions *logging.DecisionLogger

	// report collects counters for the turn in progress.
	report *TurnReport
}

// New creates an empty world of the given size.
func New(width, height int, opts Options) *World {
	if opts.MaxTouristMoves <= 0 {
		opts.MaxTouristMoves = constants.DefaultMaxTouristMoves
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	w := &World{
		grid:            grid.New(width, height),
		pools:           make(map[models.Class]*pool, len(models.MovingClasses)),
		totalTurns:      opts.TotalTurns,
		maxTouristMoves: opts.MaxTouristMoves,
		rng:             opts.Rand,
		logger:          opts.Logger,
		decisions:       opts.Decisions,
	}
	for _, c := range models.MovingClasses {
		w.pools[c] = &pool{}
	}
	return w
}

// Populate creates one agent per record and places it on its start cell.
// All records are validated before any is placed, so on error the world is
// left unchanged.
func (w *World) Populate(records []models.Record) error {
	taken := make(map[models.Point]string, len(records))
	for _, cell := range w.occupiedCells() {
		taken[cell] = "existing agent"
	}
	ids := make(map[string]bool, len(w.arena)+len(records))
	for _, a := range w.arena {
		if a.Class() != models.ClassObstacle {
			ids[Label(a)] = true
		}
	}

	for _, rec := range records {
		label := string(rec.Class.Symbol()) + rec.ID
		if !w.grid.InBounds(rec.Start) {
			return fmt.Errorf("%s start %v: %w", label, rec.Start, ErrOutOfBounds)
		}
		if rec.Class != models.ClassObstacle && !w.grid.InBounds(rec.Dest) {
			return fmt.Errorf("%s destination %v: %w", label, rec.Dest, ErrOutOfBounds)
		}
		if other, ok := taken[rec.Start]; ok {
			return fmt.Errorf("%s at %v (held by %s): %w", label, rec.Start, other, ErrCellOccupied)
		}
		taken[rec.Start] = label
		if rec.Class != models.ClassObstacle {
			if ids[label] {
				return fmt.Errorf("%s: %w", label, ErrDuplicateID)
			}
			ids[label] = true
		}
	}

	for _, rec := range records {
		a := newAgent(grid.Ref(len(w.arena)), rec)
		if err := w.place(a); err != nil {
			return fmt.Errorf("placing %s: %w", Label(a), err)
		}
		w.arena = append(w.arena, a)
		if a.Class() == models.ClassObstacle {
			w.obstacles = append(w.obstacles, a)
			continue
		}
		p := w.pools[a.Class()]
		p.active = append(p.active, a)
	}

	w.logger.Debug("world populated",
		"agents", len(w.arena)-len(w.obstacles),
		"obstacles", len(w.obstacles))
	return nil
}

func (w *World) occupiedCells() []models.Point {
	var out []models.Point
	w.grid.Cells(func(c *grid.Cell) {
		if c.IsOccupied() {
			out = append(out, c.Point)
		}
	})
	return out
}

// Grid exposes the underlying topology for read-only use.
func (w *World) Grid() *grid.Grid { return w.grid }

// Turn returns the number of completed turns.
func (w *World) Turn() int { return w.turn }

// TotalTurns returns the planned run length.
func (w *World) TotalTurns() int { return w.totalTurns }

// MaxTouristMoves returns the Tourist lifetime cap.
func (w *World) MaxTouristMoves() int { return w.maxTouristMoves }

// Active returns a copy of the active pool for class c.
func (w *World) Active(c models.Class) []Agent {
	p, ok := w.pools[c]
	if !ok {
		return nil
	}
	return slices.Clone(p.active)
}

// Finished returns a copy of the finished pool for class c.
func (w *World) Finished(c models.Class) []Agent {
	p, ok := w.pools[c]
	if !ok {
		return nil
	}
	return slices.Clone(p.finished)
}

// Obstacles returns a copy of the obstacle pool.
func (w *World) Obstacles() []Agent {
	return slices.Clone(w.obstacles)
}

// ActiveCount returns the number of agents still walking.
func (w *World) ActiveCount() int {
	n := 0
	for _, p := range w.pools {
		n += len(p.active)
	}
	return n
}

// AgentAt returns the occupant of p, if any.
func (w *World) AgentAt(p models.Point) (Agent, bool) {
	c := w.grid.Cell(p)
	if c == nil {
		return nil, false
	}
	ref, ok := c.Occupant()
	if !ok {
		return nil, false
	}
	return w.arena[ref], true
}

// Lookup finds an agent by its label, e.g. "B7".
func (w *World) Lookup(label string) (Agent, bool) {
	for _, a := range w.arena {
		if Label(a) == label {
			return a, true
		}
	}
	return nil, false
}

func (w *World) trace(msg string, a Agent, args ...any) {
	if !w.logger.Enabled(context.Background(), logging.LevelTrace) {
		return
	}
	attrs := append([]any{"agent", Label(a), "cell", a.Cell().String()}, args...)
	w.logger.Log(context.Background(), logging.LevelTrace, msg, attrs...)
}
