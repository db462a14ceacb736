package engine

import "github.com/nvandessel/crosswalk/internal/models"

// Tourist wanders. What it does in a phase depends on the TouristMode the
// orchestrator hands it; idle and random-walk actions count toward its
// lifetime, greedy actions do not.
type Tourist struct {
	agentCore
	moves int
}

// MoveCount is the number of lifetime-counted actions taken so far.
func (t *Tourist) MoveCount() int {
	return t.moves
}

// Act runs the procedure for mode.
func (t *Tourist) Act(w *World, mode TouristMode) {
	switch mode {
	case ModeGreedy:
		if t.acted() {
			w.trace("already acted this turn", t)
			return
		}
		w.advanceGreedy(t)
	case ModeIdle:
		t.record(t.cell, t.cell)
		t.moves++
		w.trace("idling", t, "moves", t.moves)
	default:
		origin := t.cell
		if options := w.vacantNeighbors(origin); len(options) > 0 {
			next := options[w.rng.IntN(len(options))]
			if err := w.move(t, next); err != nil {
				w.logger.Error("random step failed", "agent", Label(t), "target", next.String(), "error", err)
			}
		}
		t.record(origin, t.cell)
		t.moves++
		w.trace("wandering", t, "from", origin.String(), "moves", t.moves)
	}
	t.markActed()
}

// RespondToSwap flips a fair coin.
func (t *Tourist) RespondToSwap(w *World, from models.Point) bool {
	accepted := w.rng.IntN(2) == 1
	if accepted {
		t.markActed()
	}
	w.trace("coin flip", t, "offer", from.String(), "accepted", accepted)
	return accepted
}
