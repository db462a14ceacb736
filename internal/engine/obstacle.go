package engine

import "github.com/nvandessel/crosswalk/internal/models"

// Obstacle is a fixed wall cell. Its destination is its own cell.
type Obstacle struct {
	agentCore
}

// Act does nothing; obstacles never take part in a phase.
func (o *Obstacle) Act(*World, TouristMode) {}

// RespondToSwap applies the straight-line rule. Because an obstacle already
// stands on its destination, its preferred cell is its own and no offer of
// a neighboring cell can match it.
func (o *Obstacle) RespondToSwap(w *World, from models.Point) bool {
	if from != models.PreferredStep(o.cell, o.dest) || o.acted() {
		w.trace("declining swap", o, "offer", from.String())
		return false
	}
	o.markActed()
	return true
}
