package engine

import "github.com/nvandessel/crosswalk/internal/models"

// Cleanup moves every agent that has arrived, or every Tourist that has
// used up its lifetime, from its active pool to its finished pool and frees
// its cell. Each pool is filtered into a new slice, so no agent is skipped
// or visited twice. Calling Cleanup again without movement removes nothing.
func (w *World) Cleanup() []Agent {
	var removed []Agent
	for _, class := range models.MovingClasses {
		p := w.pools[class]
		kept := make([]Agent, 0, len(p.active))
		for _, a := range p.active {
			if !w.done(a) {
				kept = append(kept, a)
				continue
			}
			if err := w.vacate(a); err != nil {
				w.logger.Error("vacating cell failed", "agent", Label(a), "error", err)
			}
			a.core().done = true
			p.finished = append(p.finished, a)
			removed = append(removed, a)
			w.logger.Debug("agent finished", "agent", Label(a), "cell", a.Cell().String(), "turn", w.turn)
			w.decisions.Log("removed", map[string]any{
				"turn":  w.turn,
				"agent": Label(a),
				"cell":  a.Cell().String(),
				"steps": len(a.core().steps),
			})
		}
		p.active = kept
	}
	return removed
}

func (w *World) done(a Agent) bool {
	if a.Cell() == a.Destination() {
		return true
	}
	if t, ok := a.(*Tourist); ok && t.moves > w.maxTouristMoves {
		return true
	}
	return false
}
