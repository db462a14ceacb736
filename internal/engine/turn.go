package engine

import (
	"slices"

	"github.com/nvandessel/crosswalk/internal/models"
)

// PhaseReport describes one class's slice of a turn.
type PhaseReport struct {
	Class   models.Class `json:"class"`
	Acted   int          `json:"acted"`
	Removed []string     `json:"removed,omitempty"`
}

// TurnReport describes one completed turn.
type TurnReport struct {
	Turn           int           `json:"turn"`
	TouristMode    string        `json:"tourist_mode"`
	Phases         []PhaseReport `json:"phases"`
	SwapsRequested int           `json:"swaps_requested"`
	SwapsAccepted  int           `json:"swaps_accepted"`
}

// Removed returns the labels of all agents removed during the turn.
func (r TurnReport) Removed() []string {
	var out []string
	for _, p := range r.Phases {
		out = append(out, p.Removed...)
	}
	return out
}

// Step plays one full turn.
func (w *World) Step() TurnReport {
	mode := ModeForTurn(w.turn, w.totalTurns)
	report := TurnReport{Turn: w.turn, TouristMode: mode.String()}
	w.report = &report
	defer func() { w.report = nil }()

	for _, class := range models.MovingClasses {
		report.Phases = append(report.Phases, w.runPhase(class, mode))
	}

	w.resetActions()
	w.turn++
	return report
}

// runPhase shuffles the class's pool, lets each member act, then cleans up.
func (w *World) runPhase(class models.Class, mode TouristMode) PhaseReport {
	p := w.pools[class]
	w.rng.Shuffle(len(p.active), func(i, j int) {
		p.active[i], p.active[j] = p.active[j], p.active[i]
	})

	order := slices.Clone(p.active)
	for _, a := range order {
		a.Act(w, mode)
	}

	report := PhaseReport{Class: class, Acted: len(order)}
	for _, a := range w.Cleanup() {
		report.Removed = append(report.Removed, Label(a))
	}
	return report
}

func (w *World) resetActions() {
	for _, p := range w.pools {
		for _, a := range p.active {
			a.core().state = NotActed
		}
	}
	for _, o := range w.obstacles {
		o.core().state = NotActed
	}
}
