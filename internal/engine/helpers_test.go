package engine

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvandessel/crosswalk/internal/models"
)

// scriptedRand never reorders and answers IntN from a fixed script,
// falling back to 0 once the script runs out.
type scriptedRand struct {
	answers []int
	calls   int
}

func (r *scriptedRand) IntN(n int) int {
	r.calls++
	if len(r.answers) == 0 {
		return 0
	}
	v := r.answers[0]
	r.answers = r.answers[1:]
	return v % n
}

func (r *scriptedRand) Shuffle(int, func(i, j int)) {}

func pt(x, y int) models.Point { return models.Point{X: x, Y: y} }

func rec(class models.Class, id string, start, dest models.Point) models.Record {
	return models.Record{Class: class, ID: id, Start: start, Dest: dest}
}

func wall(id string, at models.Point) models.Record {
	return rec(models.ClassObstacle, id, at, at)
}

func newWorld(t *testing.T, width, height, turns int, rng Rand, records ...models.Record) *World {
	t.Helper()
	w := New(width, height, Options{TotalTurns: turns, Rand: rng})
	require.NoError(t, w.Populate(records))
	require.NoError(t, w.CheckInvariants())
	return w
}

func mustLookup(t *testing.T, w *World, label string) Agent {
	t.Helper()
	a, ok := w.Lookup(label)
	require.True(t, ok, "agent %s not found", label)
	return a
}

// crowdRecords scatters a crossing crowd with walls over a width x height
// grid, the way the scenario generator does, without importing it.
func crowdRecords(seed uint64, width, height int) []models.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var out []models.Record
	ids := map[models.Class]int{}
	next := func(c models.Class) string {
		ids[c]++
		return strconv.Itoa(ids[c])
	}
	for x := 0; x < width; x++ {
		out = append(out, wall(next(models.ClassObstacle), pt(x, 0)))
		out = append(out, wall(next(models.ClassObstacle), pt(x, height-1)))
	}
	for y := 1; y < height-1; y++ {
		for x := 0; x < width; x++ {
			roll := rng.Float64()
			var class models.Class
			switch {
			case roll < 0.15:
				class = models.ClassMover
			case roll < 0.25:
				class = models.ClassPathFollower
			case roll < 0.32:
				class = models.ClassTourist
			default:
				continue
			}
			dest := pt(width-1-x, 1+rng.IntN(height-2))
			out = append(out, rec(class, next(class), pt(x, y), dest))
		}
	}
	return out
}

func newPCG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
