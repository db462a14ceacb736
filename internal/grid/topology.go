// Package grid provides the bounded cell topology and raw occupancy
// bookkeeping the simulation engine runs on.
//
// Cells never own agents. A cell records the arena index (Ref) of its
// occupant; the engine owns the agents themselves.
package grid

import "github.com/nvandessel/crosswalk/internal/models"

// Ref is an index into the engine's agent arena.
type Ref int

// NoOccupant marks an empty cell.
const NoOccupant Ref = -1

// Cell is a single grid location.
type Cell struct {
	Point     models.Point
	neighbors []models.Point
	occupant  Ref
	blocked   bool
}

// Neighbors returns the Moore neighborhood of the cell, clipped at the grid
// edges. Order is fixed: row offset -1..+1 outer, column offset -1..+1 inner.
func (c *Cell) Neighbors() []models.Point {
	return c.neighbors
}

// Occupant returns the occupant's arena index and whether the cell is occupied.
func (c *Cell) Occupant() (Ref, bool) {
	return c.occupant, c.occupant != NoOccupant
}

// IsOccupied reports whether any agent sits on the cell.
func (c *Cell) IsOccupied() bool {
	return c.occupant != NoOccupant
}

// Blocked reports whether the cell is permanently held by an obstacle.
func (c *Cell) Blocked() bool {
	return c.blocked
}

// IsFree reports whether an agent may step onto the cell.
func (c *Cell) IsFree() bool {
	return !c.blocked && c.occupant == NoOccupant
}

// Grid is a width x height array of cells stored row-major.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// New builds a grid and precomputes every cell's neighborhood.
// Non-positive dimensions yield an empty grid.
func New(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{
				Point:    models.Point{X: x, Y: y},
				occupant: NoOccupant,
			}
		}
	}

	for i := range g.cells {
		c := &g.cells[i]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				p := models.Point{X: c.Point.X + dx, Y: c.Point.Y + dy}
				if g.InBounds(p) {
					c.neighbors = append(c.neighbors, p)
				}
			}
		}
	}

	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside [0,width) x [0,height).
func (g *Grid) InBounds(p models.Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Cell returns the cell at p, or nil when p is out of bounds.
func (g *Grid) Cell(p models.Point) *Cell {
	if !g.InBounds(p) {
		return nil
	}
	return &g.cells[p.Y*g.width+p.X]
}

// Neighbors returns the neighborhood of p, or nil when p is out of bounds.
func (g *Grid) Neighbors(p models.Point) []models.Point {
	c := g.Cell(p)
	if c == nil {
		return nil
	}
	return c.neighbors
}

// Cells calls fn for every cell in row-major order.
func (g *Grid) Cells(fn func(c *Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}
