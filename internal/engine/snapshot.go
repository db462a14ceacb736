package engine

import (
	"github.com/nvandessel/crosswalk/internal/grid"
	"github.com/nvandessel/crosswalk/internal/models"
)

// Snapshot renders the grid as plot values and symbol rows.
func (w *World) Snapshot() models.Snapshot {
	width, height := w.grid.Width(), w.grid.Height()
	s := models.Snapshot{
		Turn:    w.turn,
		Width:   width,
		Height:  height,
		Values:  make([][]float64, height),
		Symbols: make([]string, height),
	}

	for y := 0; y < height; y++ {
		values := make([]float64, width)
		symbols := make([]byte, width)
		for x := 0; x < width; x++ {
			values[x] = models.FreeCellValue
			symbols[x] = models.FreeCellSymbol
			if a, ok := w.AgentAt(models.Point{X: x, Y: y}); ok {
				values[x] = a.Class().PlotValue()
				symbols[x] = a.Class().Symbol()
			}
		}
		s.Values[y] = values
		s.Symbols[y] = string(symbols)
	}
	return s
}

// TrajectoryRows lists the position of every active agent, in the order
// the agents were populated. Obstacles are not included.
func (w *World) TrajectoryRows() []models.TrajectoryRow {
	rows := make([]models.TrajectoryRow, 0, w.ActiveCount())
	for _, a := range w.arena {
		if a.Class() == models.ClassObstacle || a.Finished() {
			continue
		}
		cell, dest := a.Cell(), a.Destination()
		rows = append(rows, models.TrajectoryRow{
			Turn:   w.turn,
			Symbol: string(a.Class().Symbol()),
			ID:     a.ID(),
			X:      cell.X,
			Y:      cell.Y,
			DestX:  dest.X,
			DestY:  dest.Y,
		})
	}
	return rows
}

// Frame bundles the snapshot and trajectory rows for the current turn.
func (w *World) Frame() models.Frame {
	return models.Frame{
		Turn:     w.turn,
		Snapshot: w.Snapshot(),
		Rows:     w.TrajectoryRows(),
	}
}

// freeCells counts cells not held by an obstacle.
func (w *World) freeCells() int {
	n := 0
	w.grid.Cells(func(c *grid.Cell) {
		if !c.Blocked() {
			n++
		}
	})
	return n
}
