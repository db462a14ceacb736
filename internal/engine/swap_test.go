package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvandessel/crosswalk/internal/models"
)

func TestObstacle_RespondToSwapAlwaysDeclines(t *testing.T) {
	w := newWorld(t, 3, 3, 5, &scriptedRand{}, wall("1", pt(1, 1)))
	o := mustLookup(t, w, "D1")

	neighbors := w.Grid().Neighbors(pt(1, 1))
	assert.Len(t, neighbors, 8)
	for _, from := range neighbors {
		assert.False(t, o.RespondToSwap(w, from), "offer from %v", from)
		assert.Equal(t, NotActed, o.State(), "offer from %v", from)
		assert.Equal(t, pt(1, 1), o.Cell())
	}
}

func TestMover_RespondToSwap(t *testing.T) {
	// Mover at (1,1) heading for (2,3): (1,2) is closer, (0,2) is exactly as
	// far, and (1,0) is farther.
	tests := []struct {
		name      string
		from      models.Point
		acted     bool
		want      bool
		wantState ActionState
	}{
		{"closer and not acted", pt(1, 2), false, true, Acted},
		{"closer but already acted", pt(1, 2), true, false, Acted},
		{"equally far", pt(0, 2), false, false, NotActed},
		{"farther", pt(1, 0), false, false, NotActed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t, 3, 4, 5, &scriptedRand{}, rec(models.ClassMover, "1", pt(1, 1), pt(2, 3)))
			m := mustLookup(t, w, "A1")
			if tt.acted {
				m.core().markActed()
			}

			assert.Equal(t, tt.want, m.RespondToSwap(w, tt.from))
			assert.Equal(t, tt.wantState, m.State())
			assert.Equal(t, pt(1, 1), m.Cell(), "responding never moves the agent")
		})
	}
}
