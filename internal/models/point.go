package models

import (
	"fmt"
	"math"
)

// Point is an integer cell coordinate on the grid.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// String renders the point as "x,y", the scenario file format.
func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Add returns p offset by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// DistanceSq returns the squared Euclidean distance between two points.
// Comparisons use it so that ordering is exact on integer coordinates.
func DistanceSq(a, b Point) int {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Sqrt(float64(DistanceSq(a, b)))
}

// Direction reduces the vector from -> to into one of the nine unit
// directions by taking the sign of each axis independently.
// Coincident points yield the zero vector.
func Direction(from, to Point) Point {
	return Point{X: sign(to.X - from.X), Y: sign(to.Y - from.Y)}
}

// PreferredStep is the cell adjacent to from that lies on the straight
// line toward to. It is from itself when the two coincide.
func PreferredStep(from, to Point) Point {
	return from.Add(Direction(from, to))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
