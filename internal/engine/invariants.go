package engine

import (
	"errors"
	"fmt"

	"github.com/nvandessel/crosswalk/internal/grid"
	"github.com/nvandessel/crosswalk/internal/models"
)

// CheckInvariants verifies the occupancy and pool bookkeeping. It returns
// every violation it finds joined into one error, or nil.
func (w *World) CheckInvariants() error {
	var errs []error
	seen := make(map[grid.Ref]string, len(w.arena))

	mark := func(a Agent, where string) {
		ref := a.core().ref
		if prev, ok := seen[ref]; ok {
			errs = append(errs, fmt.Errorf("%s listed in both %s and %s", Label(a), prev, where))
			return
		}
		seen[ref] = where
	}

	bound := func(a Agent) {
		c := w.grid.Cell(a.Cell())
		if c == nil {
			errs = append(errs, fmt.Errorf("%s at %v is off the grid", Label(a), a.Cell()))
			return
		}
		if ref, ok := c.Occupant(); !ok || ref != a.core().ref {
			errs = append(errs, fmt.Errorf("%s at %v is not the cell's occupant", Label(a), a.Cell()))
		}
	}

	for _, class := range models.MovingClasses {
		p := w.pools[class]
		for _, a := range p.active {
			mark(a, class.String()+" active")
			if a.Class() != class {
				errs = append(errs, fmt.Errorf("%s in the %s pool", Label(a), class))
			}
			if a.Finished() {
				errs = append(errs, fmt.Errorf("%s active but marked finished", Label(a)))
			}
			bound(a)
		}
		for _, a := range p.finished {
			mark(a, class.String()+" finished")
			if !a.Finished() {
				errs = append(errs, fmt.Errorf("%s finished but not marked", Label(a)))
			}
		}
	}

	for _, o := range w.obstacles {
		mark(o, "obstacles")
		bound(o)
		if o.Cell() != o.Destination() {
			errs = append(errs, fmt.Errorf("%s moved off its cell", Label(o)))
		}
		if c := w.grid.Cell(o.Cell()); c != nil && !c.Blocked() {
			errs = append(errs, fmt.Errorf("%s cell %v is not blocked", Label(o), o.Cell()))
		}
	}

	if len(seen) != len(w.arena) {
		errs = append(errs, fmt.Errorf("%d agents in pools, %d in arena", len(seen), len(w.arena)))
	}

	w.grid.Cells(func(c *grid.Cell) {
		ref, ok := c.Occupant()
		if !ok {
			return
		}
		if int(ref) >= len(w.arena) {
			errs = append(errs, fmt.Errorf("cell %v holds unknown ref %d", c.Point, ref))
			return
		}
		a := w.arena[ref]
		if a.Finished() || a.Cell() != c.Point {
			errs = append(errs, fmt.Errorf("cell %v holds stale occupant %s", c.Point, Label(a)))
		}
	})

	return errors.Join(errs...)
}
