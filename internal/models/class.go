package models

import "fmt"

// Class identifies an agent's movement policy.
type Class int

const (
	ClassMover        Class = iota // greedy distance minimizer
	ClassPathFollower              // straight-line follower, negotiates swaps
	ClassTourist                   // phase-dependent wanderer
	ClassObstacle                  // fixed wall segment
)

// MovingClasses lists the classes that take part in turn phases, in phase order.
var MovingClasses = []Class{ClassMover, ClassPathFollower, ClassTourist}

// FreeCellSymbol and FreeCellValue describe an unoccupied cell in snapshots.
const (
	FreeCellSymbol byte    = '.'
	FreeCellValue  float64 = 1
)

// Symbol returns the single-letter tag used in scenario files and snapshots.
func (c Class) Symbol() byte {
	switch c {
	case ClassMover:
		return 'A'
	case ClassPathFollower:
		return 'B'
	case ClassObstacle:
		return 'D'
	default:
		return 'C'
	}
}

// PlotValue is the grayscale value used when plotting a snapshot.
func (c Class) PlotValue() float64 {
	switch c {
	case ClassMover:
		return 0
	case ClassPathFollower:
		return 3
	case ClassObstacle:
		return 2.5
	default:
		return 2
	}
}

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassMover:
		return "mover"
	case ClassPathFollower:
		return "path-follower"
	case ClassTourist:
		return "tourist"
	case ClassObstacle:
		return "obstacle"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ClassFromSymbol maps a scenario class symbol to a Class.
// Letters other than A, B and D are Tourists; anything that is not an
// ASCII letter is rejected.
func ClassFromSymbol(s byte) (Class, bool) {
	switch s {
	case 'A':
		return ClassMover, true
	case 'B':
		return ClassPathFollower, true
	case 'D':
		return ClassObstacle, true
	}
	if (s >= 'A' && s <= 'Z') || (s >= 'a' && s <= 'z') {
		return ClassTourist, true
	}
	return 0, false
}

// ParseClassName is the inverse of Class.String.
func ParseClassName(name string) (Class, bool) {
	for _, c := range []Class{ClassMover, ClassPathFollower, ClassTourist, ClassObstacle} {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}
