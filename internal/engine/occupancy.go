package engine

import (
	"github.com/nvandessel/crosswalk/internal/models"
)

// place binds a new agent to its start cell. Obstacles also block the cell.
func (w *World) place(a Agent) error {
	c := a.core()
	if c.class == models.ClassObstacle {
		return w.grid.Block(c.ref, c.cell)
	}
	return w.grid.Put(c.ref, c.cell)
}

// move relocates a to the vacant cell to. The grid and the agent are
// updated in the same call.
func (w *World) move(a Agent, to models.Point) error {
	c := a.core()
	if _, err := w.grid.Move(c.cell, to); err != nil {
		return err
	}
	c.cell = to
	return nil
}

// swapOccupants exchanges the cells of two agents.
func (w *World) swapOccupants(a, b Agent) error {
	ca, cb := a.core(), b.core()
	if err := w.grid.Exchange(ca.cell, cb.cell); err != nil {
		return err
	}
	ca.cell, cb.cell = cb.cell, ca.cell
	return nil
}

// vacate clears a finished agent's cell. The agent keeps its last position.
func (w *World) vacate(a Agent) error {
	_, err := w.grid.Clear(a.core().cell)
	return err
}

// vacantNeighbors lists the neighbors of p an agent may step onto, in
// enumeration order.
func (w *World) vacantNeighbors(p models.Point) []models.Point {
	var out []models.Point
	for _, n := range w.grid.Neighbors(p) {
		if w.grid.Cell(n).IsFree() {
			out = append(out, n)
		}
	}
	return out
}

// greedyStep picks the vacant neighbor of from closest to dest. Ties go to
// the first neighbor in enumeration order. ok is false unless the pick is
// strictly closer than from itself.
func (w *World) greedyStep(from, dest models.Point) (next models.Point, ok bool) {
	best := models.DistanceSq(from, dest)
	for _, n := range w.vacantNeighbors(from) {
		if d := models.DistanceSq(n, dest); d < best {
			best = d
			next = n
			ok = true
		}
	}
	return next, ok
}

// advanceGreedy runs the distance-minimizing step shared by Movers and
// greedy Tourists and logs it.
func (w *World) advanceGreedy(a Agent) {
	c := a.core()
	origin := c.cell
	if next, ok := w.greedyStep(origin, c.dest); ok {
		if err := w.move(a, next); err != nil {
			w.logger.Error("greedy move failed", "agent", Label(a), "target", next.String(), "error", err)
		}
	}
	c.record(origin, c.cell)
	if origin == c.cell {
		w.trace("staying put", a)
	} else {
		w.trace("moved", a, "from", origin.String())
	}
}
