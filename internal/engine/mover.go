package engine

import "github.com/nvandessel/crosswalk/internal/models"

// Mover walks greedily: each turn it takes the vacant neighbor closest to
// its destination, provided that neighbor is strictly closer than where it
// stands.
type Mover struct {
	agentCore
}

// Act moves the agent once per turn.
func (m *Mover) Act(w *World, _ TouristMode) {
	if m.acted() {
		w.trace("already acted this turn", m)
		return
	}
	w.advanceGreedy(m)
	m.markActed()
}

// RespondToSwap accepts when moving to from brings the Mover closer to its
// destination and it has not acted yet this turn.
func (m *Mover) RespondToSwap(w *World, from models.Point) bool {
	closer := models.DistanceSq(from, m.dest) < models.DistanceSq(m.cell, m.dest)
	if !closer || m.acted() {
		w.trace("declining swap", m, "closer", closer, "state", m.state.String())
		return false
	}
	m.markActed()
	return true
}
