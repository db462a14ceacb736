package engine

import "github.com/nvandessel/crosswalk/internal/models"

// PathFollower steps along the straight line to its destination. When that
// cell is taken it asks the occupant to swap, and stays put if refused.
type PathFollower struct {
	agentCore
}

// Preferred returns the cell the PathFollower wants to step onto.
func (p *PathFollower) Preferred() models.Point {
	return models.PreferredStep(p.cell, p.dest)
}

// Act moves the agent once per turn.
func (p *PathFollower) Act(w *World, _ TouristMode) {
	if p.acted() {
		w.trace("already acted this turn", p)
		return
	}

	origin := p.cell
	target := p.Preferred()
	switch {
	case target == origin:
	case w.grid.Cell(target).IsFree():
		if err := w.move(p, target); err != nil {
			w.logger.Error("direct move failed", "agent", Label(p), "target", target.String(), "error", err)
		}
	case w.grid.Cell(target).IsOccupied():
		w.negotiateSwap(p, target)
	}

	p.record(origin, p.cell)
	p.markActed()
	w.trace("path step", p, "from", origin.String(), "preferred", target.String())
}

// RespondToSwap accepts only an offer of exactly its own preferred cell,
// and only before it has acted this turn.
func (p *PathFollower) RespondToSwap(w *World, from models.Point) bool {
	if from != p.Preferred() || p.acted() {
		w.trace("declining swap", p, "offer", from.String(), "state", p.state.String())
		return false
	}
	p.markActed()
	return true
}
