package engine

import (
	"github.com/nvandessel/crosswalk/internal/grid"
	"github.com/nvandessel/crosswalk/internal/models"
)

// ActionState records whether an agent has used its single action this turn.
type ActionState int

const (
	NotActed ActionState = iota
	Acted
)

func (s ActionState) String() string {
	if s == Acted {
		return "acted"
	}
	return "not-acted"
}

// Agent is the behavior every class implements. Act performs the agent's
// move for the current phase; RespondToSwap answers a request from the agent
// standing at from to trade cells.
type Agent interface {
	Class() models.Class
	ID() string
	Cell() models.Point
	Destination() models.Point
	Steps() []models.Step
	State() ActionState
	Finished() bool

	Act(w *World, mode TouristMode)
	RespondToSwap(w *World, from models.Point) bool

	core() *agentCore
}

// agentCore is the state shared by all classes.
type agentCore struct {
	ref   grid.Ref
	class models.Class
	id    string
	cell  models.Point
	dest  models.Point
	steps []models.Step
	state ActionState
	done  bool
}

func (a *agentCore) Class() models.Class       { return a.class }
func (a *agentCore) ID() string                { return a.id }
func (a *agentCore) Cell() models.Point        { return a.cell }
func (a *agentCore) Destination() models.Point { return a.dest }
func (a *agentCore) State() ActionState        { return a.state }
func (a *agentCore) Finished() bool            { return a.done }
func (a *agentCore) core() *agentCore          { return a }

// Steps returns a copy of the agent's movement log.
func (a *agentCore) Steps() []models.Step {
	out := make([]models.Step, len(a.steps))
	copy(out, a.steps)
	return out
}

func (a *agentCore) record(from, to models.Point) {
	a.steps = append(a.steps, models.Step{From: from, To: to})
}

func (a *agentCore) acted() bool { return a.state == Acted }
func (a *agentCore) markActed()  { a.state = Acted }

// Label is the scenario-style name of an agent, e.g. "A12".
func Label(a Agent) string {
	return string(a.Class().Symbol()) + a.ID()
}

// DistanceTraveled counts the steps in which the agent changed cells.
func DistanceTraveled(a Agent) int {
	n := 0
	for _, s := range a.core().steps {
		if s.Moved() {
			n++
		}
	}
	return n
}

func newAgent(ref grid.Ref, rec models.Record) Agent {
	c := agentCore{
		ref:   ref,
		class: rec.Class,
		id:    rec.ID,
		cell:  rec.Start,
		dest:  rec.Dest,
	}
	switch rec.Class {
	case models.ClassMover:
		return &Mover{agentCore: c}
	case models.ClassPathFollower:
		return &PathFollower{agentCore: c}
	case models.ClassObstacle:
		c.dest = rec.Start
		return &Obstacle{agentCore: c}
	default:
		c.class = models.ClassTourist
		return &Tourist{agentCore: c}
	}
}
