package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/crosswalk/internal/logging"
	"github.com/nvandessel/crosswalk/internal/models"
)

func TestStep_MoverActsBeforePathFollowerCanSwap(t *testing.T) {
	w := newWorld(t, 3, 1, 3, &scriptedRand{},
		rec(models.ClassMover, "1", pt(0, 0), pt(2, 0)),
		rec(models.ClassPathFollower, "1", pt(1, 0), pt(0, 0)),
	)

	report := w.Step()

	mover := mustLookup(t, w, "A1")
	follower := mustLookup(t, w, "B1")
	assert.Equal(t, pt(0, 0), mover.Cell())
	assert.Equal(t, pt(1, 0), follower.Cell())
	assert.Equal(t, []models.Step{{From: pt(0, 0), To: pt(0, 0)}}, mover.Steps())
	assert.Equal(t, []models.Step{{From: pt(1, 0), To: pt(1, 0)}}, follower.Steps())
	assert.Equal(t, 1, report.SwapsRequested)
	assert.Equal(t, 0, report.SwapsAccepted)
	assert.Equal(t, 1, w.Turn())
	require.NoError(t, w.CheckInvariants())
}

func TestStep_PathFollowersSwapHeadOn(t *testing.T) {
	w := newWorld(t, 3, 1, 3, &scriptedRand{},
		rec(models.ClassPathFollower, "1", pt(0, 0), pt(2, 0)),
		rec(models.ClassPathFollower, "2", pt(1, 0), pt(0, 0)),
	)

	report := w.Step()

	b1 := mustLookup(t, w, "B1")
	b2 := mustLookup(t, w, "B2")
	assert.Equal(t, pt(1, 0), b1.Cell())
	assert.Equal(t, pt(0, 0), b2.Cell())
	assert.Equal(t, []models.Step{{From: pt(0, 0), To: pt(1, 0)}}, b1.Steps())
	assert.Equal(t, []models.Step{{From: pt(1, 0), To: pt(0, 0)}}, b2.Steps())
	assert.Equal(t, 1, report.SwapsAccepted)
	assert.Equal(t, []string{"B2"}, report.Removed())
	assert.True(t, b2.Finished())
	assert.Len(t, w.Finished(models.ClassPathFollower), 1)
	require.NoError(t, w.CheckInvariants())
}

func TestStep_PathFollowerRefusedByWrongOffer(t *testing.T) {
	// B2 wants to go up, not left, so B1's offer does not match.
	w := newWorld(t, 3, 2, 3, &scriptedRand{},
		rec(models.ClassPathFollower, "1", pt(0, 1), pt(2, 1)),
		rec(models.ClassPathFollower, "2", pt(1, 1), pt(1, 0)),
	)

	report := w.Step()

	assert.Equal(t, 1, report.SwapsRequested)
	assert.Equal(t, 0, report.SwapsAccepted)
	assert.Equal(t, pt(0, 1), mustLookup(t, w, "B1").Cell())
	// B2 acted afterwards and reached its destination.
	assert.Equal(t, []string{"B2"}, report.Removed())
}

func TestStep_PathFollowerSnapsDiagonally(t *testing.T) {
	w := newWorld(t, 5, 3, 10, &scriptedRand{},
		rec(models.ClassPathFollower, "1", pt(0, 0), pt(4, 1)),
	)
	b := mustLookup(t, w, "B1")

	w.Step()
	assert.Equal(t, pt(1, 1), b.Cell())
	w.Step()
	assert.Equal(t, pt(2, 1), b.Cell())
}

func TestStep_TouristCoinFlip(t *testing.T) {
	tests := []struct {
		name        string
		coin        int
		wantB       models.Point
		wantC       models.Point
		wantAccept  int
		wantCStepTo models.Point
	}{
		{name: "accepts", coin: 1, wantB: pt(1, 0), wantC: pt(0, 0), wantAccept: 1, wantCStepTo: pt(0, 0)},
		{name: "declines", coin: 0, wantB: pt(0, 0), wantC: pt(2, 1), wantAccept: 0, wantCStepTo: pt(2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t, 3, 3, 30, &scriptedRand{answers: []int{tt.coin}},
				rec(models.ClassPathFollower, "1", pt(0, 0), pt(2, 0)),
				rec(models.ClassTourist, "1", pt(1, 0), pt(2, 2)),
			)

			report := w.Step()

			b := mustLookup(t, w, "B1")
			c := mustLookup(t, w, "C1")
			assert.Equal(t, tt.wantB, b.Cell())
			assert.Equal(t, tt.wantC, c.Cell())
			assert.Equal(t, tt.wantAccept, report.SwapsAccepted)
			require.Len(t, c.Steps(), 1, "a swapped tourist is acted and skips its greedy turn")
			assert.Equal(t, tt.wantCStepTo, c.Steps()[0].To)
			assert.Zero(t, c.(*Tourist).MoveCount())
		})
	}
}

func TestStep_MoverTieBreakUsesEnumerationOrder(t *testing.T) {
	w := newWorld(t, 3, 4, 10, &scriptedRand{},
		rec(models.ClassMover, "1", pt(1, 1), pt(1, 3)),
		wall("", pt(1, 2)),
	)
	w.Step()
	assert.Equal(t, pt(0, 2), mustLookup(t, w, "A1").Cell())
}

func TestStep_MoverStaysWithoutStrictImprovement(t *testing.T) {
	w := newWorld(t, 3, 2, 10, &scriptedRand{},
		rec(models.ClassMover, "1", pt(0, 0), pt(2, 0)),
		wall("1", pt(1, 0)),
		wall("2", pt(1, 1)),
	)
	for range 3 {
		w.Step()
	}
	a := mustLookup(t, w, "A1")
	assert.Equal(t, pt(0, 0), a.Cell())
	assert.Len(t, a.Steps(), 3)
	assert.Zero(t, DistanceTraveled(a))
}

func TestStep_MoverNeverIncreasesDistance(t *testing.T) {
	w := New(12, 8, Options{TotalTurns: 30})
	require.NoError(t, w.Populate(crowdRecords(7, 12, 8)))

	for range 30 {
		before := map[string]int{}
		for _, a := range w.Active(models.ClassMover) {
			before[Label(a)] = models.DistanceSq(a.Cell(), a.Destination())
		}
		w.Step()
		for _, a := range append(w.Active(models.ClassMover), w.Finished(models.ClassMover)...) {
			prev, ok := before[Label(a)]
			if !ok {
				continue
			}
			steps := a.Steps()
			last := steps[len(steps)-1]
			if last.To == last.From {
				continue
			}
			// Swaps may only be accepted when they bring the mover closer too.
			assert.Less(t, models.DistanceSq(last.To, a.Destination()), prev, "%s moved away", Label(a))
		}
	}
}

func TestStep_TouristLifetimeCountsOnlyIdleAndRandomWalk(t *testing.T) {
	// The tourist is walled in so it never reaches its destination.
	records := []models.Record{
		rec(models.ClassTourist, "1", pt(0, 0), pt(2, 0)),
		wall("", pt(1, 0)),
	}

	t.Run("greedy turns never count", func(t *testing.T) {
		w := newWorld(t, 3, 1, 10_000, &scriptedRand{}, records...)
		for range 200 {
			w.Step()
		}
		c := mustLookup(t, w, "C1").(*Tourist)
		assert.False(t, c.Finished())
		assert.Zero(t, c.MoveCount())
		assert.Len(t, c.Steps(), 200)
	})

	t.Run("removed after the 41st idle action", func(t *testing.T) {
		w := newWorld(t, 3, 1, 300, &scriptedRand{}, records...)
		c := mustLookup(t, w, "C1").(*Tourist)

		// Turns 0..100 are greedy, 101..200 idle.
		removedAt := -1
		for turn := 0; turn < 300 && removedAt < 0; turn++ {
			r := w.Step()
			if len(r.Removed()) > 0 {
				removedAt = r.Turn
			}
		}
		assert.Equal(t, 141, removedAt)
		assert.Equal(t, 41, c.MoveCount())
		assert.Len(t, c.Steps(), 101+41)
		assert.True(t, c.Finished())
		assert.Equal(t, pt(0, 0), c.Cell())
		_, ok := w.AgentAt(pt(0, 0))
		assert.False(t, ok, "finished tourist must free its cell")
	})

	t.Run("custom cap", func(t *testing.T) {
		w := New(3, 1, Options{TotalTurns: 1, MaxTouristMoves: 2, Rand: &scriptedRand{}})
		require.NoError(t, w.Populate(records))
		w.Step() // greedy
		w.Step() // random walk, 1
		w.Step() // 2
		assert.Empty(t, w.Finished(models.ClassTourist))
		w.Step() // 3 > 2
		assert.Len(t, w.Finished(models.ClassTourist), 1)
	})
}

func TestStep_RandomWalkPicksVacantNeighbor(t *testing.T) {
	w := newWorld(t, 3, 3, 1, &scriptedRand{},
		rec(models.ClassTourist, "1", pt(1, 1), pt(1, 1)),
		wall("", pt(0, 0)),
	)
	// Destination equals start, so the tourist finishes in the first cleanup.
	r := w.Step()
	assert.Equal(t, []string{"C1"}, r.Removed())

	w = newWorld(t, 3, 3, 1, &scriptedRand{answers: []int{2}},
		rec(models.ClassTourist, "1", pt(1, 1), pt(2, 2)),
		wall("", pt(0, 0)),
		wall("", pt(2, 2)),
	)
	c := mustLookup(t, w, "C1").(*Tourist)
	// Turn 0 is greedy and moves toward the blocked corner.
	w.Step()
	require.Equal(t, pt(2, 1), c.Cell())
	// Turn 1 walks: vacant neighbors of (2,1) are (1,0),(2,0),(1,1),(1,2).
	w.Step()
	assert.Equal(t, pt(1, 1), c.Cell())
	assert.Equal(t, 1, c.MoveCount())
}

func TestStep_ObstaclesNeverMove(t *testing.T) {
	w := New(14, 9, Options{TotalTurns: 60})
	require.NoError(t, w.Populate(crowdRecords(11, 14, 9)))

	cells := map[string]models.Point{}
	for _, o := range w.Obstacles() {
		cells[Label(o)] = o.Cell()
	}

	for range 60 {
		w.Step()
		require.NoError(t, w.CheckInvariants())
		for _, o := range w.Obstacles() {
			assert.Equal(t, cells[Label(o)], o.Cell())
			assert.Empty(t, o.Steps())
			a, ok := w.AgentAt(o.Cell())
			require.True(t, ok)
			assert.Equal(t, models.ClassObstacle, a.Class())
		}
	}
}

func TestStep_PoolsStayPartitioned(t *testing.T) {
	records := crowdRecords(3, 16, 10)
	started := map[models.Class]int{}
	for _, r := range records {
		started[r.Class]++
	}

	w := New(16, 10, Options{TotalTurns: 90})
	require.NoError(t, w.Populate(records))

	for range 90 {
		w.Step()
		require.NoError(t, w.CheckInvariants())
		for _, class := range models.MovingClasses {
			assert.Equal(t, started[class], len(w.Active(class))+len(w.Finished(class)), class.String())
		}
		assert.Len(t, w.Obstacles(), started[models.ClassObstacle])
	}
}

func TestStep_ActionStatesResetBetweenTurns(t *testing.T) {
	w := newWorld(t, 5, 1, 10, &scriptedRand{},
		rec(models.ClassMover, "1", pt(0, 0), pt(4, 0)),
	)
	a := mustLookup(t, w, "A1")
	w.Step()
	assert.Equal(t, NotActed, a.State())
	w.Step()
	assert.Equal(t, pt(2, 0), a.Cell())
}

func TestStep_SameSeedSameRun(t *testing.T) {
	run := func() []string {
		w := New(14, 9, Options{TotalTurns: 40, Rand: newPCG(42)})
		require.NoError(t, w.Populate(crowdRecords(5, 14, 9)))
		var frames []string
		for range 40 {
			w.Step()
			frames = append(frames, w.Snapshot().Text())
		}
		return frames
	}
	assert.Equal(t, run(), run())
}

func TestCleanup_Idempotent(t *testing.T) {
	w := newWorld(t, 3, 1, 5, &scriptedRand{},
		rec(models.ClassMover, "1", pt(0, 0), pt(1, 0)),
		rec(models.ClassMover, "2", pt(2, 0), pt(2, 0)),
	)

	removed := w.Cleanup()
	require.Len(t, removed, 1)
	assert.Equal(t, "A2", Label(removed[0]))
	assert.Empty(t, w.Cleanup())

	w.Step()
	assert.Empty(t, w.Cleanup())
	assert.Len(t, w.Finished(models.ClassMover), 2)
	require.NoError(t, w.CheckInvariants())
}

func TestStep_DecisionLog(t *testing.T) {
	var buf bytes.Buffer
	w := New(3, 1, Options{TotalTurns: 3, Rand: &scriptedRand{}, Decisions: logging.NewDecisionWriter(&buf)})
	require.NoError(t, w.Populate([]models.Record{
		rec(models.ClassPathFollower, "1", pt(0, 0), pt(2, 0)),
		rec(models.ClassPathFollower, "2", pt(1, 0), pt(0, 0)),
	}))

	w.Step()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var swap, removed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &swap))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &removed))
	assert.Equal(t, "swap", swap["event"])
	assert.Equal(t, "B1", swap["initiator"])
	assert.Equal(t, "B2", swap["responder"])
	assert.Equal(t, true, swap["accepted"])
	assert.Equal(t, "removed", removed["event"])
	assert.Equal(t, "B2", removed["agent"])
}

func TestSummary(t *testing.T) {
	w := newWorld(t, 4, 2, 5, &scriptedRand{},
		rec(models.ClassMover, "1", pt(0, 0), pt(2, 0)),
		rec(models.ClassMover, "2", pt(0, 1), pt(0, 1)),
		wall("", pt(3, 1)),
	)
	w.Step()
	w.Step()

	s := w.Summary()
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, 1, s.Obstacles)
	assert.InDelta(t, 1.0/8, s.ObstacleDensity, 1e-9)
	assert.Zero(t, s.OccupancyDensity)

	movers, ok := s.Class("mover")
	require.True(t, ok)
	assert.Equal(t, 2, movers.Started)
	assert.Equal(t, 2, movers.Finished)
	// A1 took two real steps, A2 logged one self-loop before cleanup.
	assert.InDelta(t, 1.0, movers.MeanDistance, 1e-9)
	assert.InDelta(t, 1.5, movers.MeanTime, 1e-9)
	assert.InDelta(t, 2.0/3, movers.Speed, 1e-9)
	assert.InDelta(t, 4.0/3, movers.Flow, 1e-9)

	tourists, ok := s.Class("tourist")
	require.True(t, ok)
	assert.Zero(t, tourists.Started)
	assert.Zero(t, tourists.Speed)
}
