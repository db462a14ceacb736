package simulation

import (
	"testing"

	"github.com/nvandessel/crosswalk/internal/models"
)

// AssertFrameSequence asserts that frames are numbered 0..n without gaps.
func AssertFrameSequence(t *testing.T, frames []models.Frame) {
	t.Helper()
	for i, f := range frames {
		if f.Turn != i {
			t.Errorf("AssertFrameSequence: frame %d has turn %d", i, f.Turn)
		}
	}
}

// AssertNoCollisions asserts that no two trajectory rows of a frame share
// a cell.
func AssertNoCollisions(t *testing.T, frames []models.Frame) {
	t.Helper()
	for _, f := range frames {
		seen := make(map[models.Point]string, len(f.Rows))
		for _, row := range f.Rows {
			p := models.Point{X: row.X, Y: row.Y}
			label := row.Symbol + row.ID
			if other, ok := seen[p]; ok {
				t.Errorf("AssertNoCollisions: turn %d: %s and %s both at %v", f.Turn, other, label, p)
			}
			seen[p] = label
		}
	}
}

// AssertSingleSteps asserts that between consecutive frames every agent
// moved at most one cell in each axis.
func AssertSingleSteps(t *testing.T, frames []models.Frame) {
	t.Helper()
	for i := 1; i < len(frames); i++ {
		prev := make(map[string]models.Point, len(frames[i-1].Rows))
		for _, row := range frames[i-1].Rows {
			prev[row.Symbol+row.ID] = models.Point{X: row.X, Y: row.Y}
		}
		for _, row := range frames[i].Rows {
			label := row.Symbol + row.ID
			from, ok := prev[label]
			if !ok {
				t.Errorf("AssertSingleSteps: turn %d: %s appeared from nowhere", frames[i].Turn, label)
				continue
			}
			dx, dy := abs(row.X-from.X), abs(row.Y-from.Y)
			if dx > 1 || dy > 1 {
				t.Errorf("AssertSingleSteps: turn %d: %s jumped from %v to %d,%d", frames[i].Turn, label, from, row.X, row.Y)
			}
		}
	}
}

// AssertObstaclesFixed asserts that every obstacle symbol stays in place.
func AssertObstaclesFixed(t *testing.T, frames []models.Frame) {
	t.Helper()
	if len(frames) == 0 {
		return
	}
	obstacle := models.ClassObstacle.Symbol()
	first := frames[0].Snapshot.Symbols
	for _, f := range frames[1:] {
		for y, row := range f.Snapshot.Symbols {
			for x := 0; x < len(row); x++ {
				if (first[y][x] == obstacle) != (row[x] == obstacle) {
					t.Errorf("AssertObstaclesFixed: turn %d: cell %d,%d changed", f.Turn, x, y)
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
