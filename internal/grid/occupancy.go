package grid

import (
	"errors"
	"fmt"

	"github.com/nvandessel/crosswalk/internal/models"
)

var (
	// ErrOutOfBounds is returned for coordinates outside the grid.
	ErrOutOfBounds = errors.New("point out of bounds")

	// ErrOccupied is returned when the target cell already holds an agent.
	ErrOccupied = errors.New("cell occupied")

	// ErrVacant is returned when an operation expects an occupant that is not there.
	ErrVacant = errors.New("cell vacant")

	// ErrBlocked is returned when an operation would disturb an obstacle cell.
	ErrBlocked = errors.New("cell blocked")
)

func (g *Grid) mustCell(p models.Point) (*Cell, error) {
	c := g.Cell(p)
	if c == nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	return c, nil
}

// Put records r as the occupant of an empty cell.
func (g *Grid) Put(r Ref, p models.Point) error {
	c, err := g.mustCell(p)
	if err != nil {
		return err
	}
	if c.IsOccupied() {
		return fmt.Errorf("%w: %v", ErrOccupied, p)
	}
	c.occupant = r
	return nil
}

// Block places an obstacle: the cell is occupied by r and marked blocked
// for the lifetime of the grid.
func (g *Grid) Block(r Ref, p models.Point) error {
	if err := g.Put(r, p); err != nil {
		return err
	}
	g.Cell(p).blocked = true
	return nil
}

// Move transfers the occupant of from onto the empty cell to and returns it.
// Both cells change in the same call.
func (g *Grid) Move(from, to models.Point) (Ref, error) {
	src, err := g.mustCell(from)
	if err != nil {
		return NoOccupant, err
	}
	dst, err := g.mustCell(to)
	if err != nil {
		return NoOccupant, err
	}
	if !src.IsOccupied() {
		return NoOccupant, fmt.Errorf("%w: %v", ErrVacant, from)
	}
	if src.blocked {
		return NoOccupant, fmt.Errorf("%w: %v", ErrBlocked, from)
	}
	if !dst.IsFree() {
		return NoOccupant, fmt.Errorf("%w: %v", ErrOccupied, to)
	}
	r := src.occupant
	dst.occupant = r
	src.occupant = NoOccupant
	return r, nil
}

// Exchange swaps the occupants of two occupied, unblocked cells.
func (g *Grid) Exchange(p, q models.Point) error {
	a, err := g.mustCell(p)
	if err != nil {
		return err
	}
	b, err := g.mustCell(q)
	if err != nil {
		return err
	}
	if !a.IsOccupied() {
		return fmt.Errorf("%w: %v", ErrVacant, p)
	}
	if !b.IsOccupied() {
		return fmt.Errorf("%w: %v", ErrVacant, q)
	}
	if a.blocked || b.blocked {
		return fmt.Errorf("%w: exchange %v <-> %v", ErrBlocked, p, q)
	}
	a.occupant, b.occupant = b.occupant, a.occupant
	return nil
}

// Clear empties an unblocked cell and returns whoever was there.
func (g *Grid) Clear(p models.Point) (Ref, error) {
	c, err := g.mustCell(p)
	if err != nil {
		return NoOccupant, err
	}
	if c.blocked {
		return NoOccupant, fmt.Errorf("%w: %v", ErrBlocked, p)
	}
	r := c.occupant
	c.occupant = NoOccupant
	return r, nil
}
