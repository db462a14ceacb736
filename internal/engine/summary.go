package engine

import "github.com/nvandessel/crosswalk/internal/models"

// ClassSummary aggregates the movement of one class over the agents that
// started the run.
type ClassSummary struct {
	Class    string `json:"class"`
	Started  int    `json:"started"`
	Active   int    `json:"active"`
	Finished int    `json:"finished"`

	// MeanDistance is the mean number of steps that changed cells.
	MeanDistance float64 `json:"mean_distance"`
	// MeanTime is the mean number of logged steps, self-loops included.
	MeanTime float64 `json:"mean_time"`
	// Speed is MeanDistance / MeanTime.
	Speed float64 `json:"speed"`
	// Flow is Started / MeanTime.
	Flow float64 `json:"flow"`
}

// Summary describes a world after some number of turns.
type Summary struct {
	Turn             int            `json:"turn"`
	Width            int            `json:"width"`
	Height           int            `json:"height"`
	Obstacles        int            `json:"obstacles"`
	Classes          []ClassSummary `json:"classes"`
	OccupancyDensity float64        `json:"occupancy_density"`
	ObstacleDensity  float64        `json:"obstacle_density"`
}

// Class returns the summary for the named class.
func (s Summary) Class(name string) (ClassSummary, bool) {
	for _, c := range s.Classes {
		if c.Class == name {
			return c, true
		}
	}
	return ClassSummary{}, false
}

// Summary computes run statistics for the current state of the world.
func (w *World) Summary() Summary {
	s := Summary{
		Turn:      w.turn,
		Width:     w.grid.Width(),
		Height:    w.grid.Height(),
		Obstacles: len(w.obstacles),
	}

	for _, class := range models.MovingClasses {
		p := w.pools[class]
		cs := ClassSummary{
			Class:    class.String(),
			Active:   len(p.active),
			Finished: len(p.finished),
		}
		cs.Started = cs.Active + cs.Finished

		var dist, steps int
		for _, group := range [][]Agent{p.active, p.finished} {
			for _, a := range group {
				dist += DistanceTraveled(a)
				steps += len(a.core().steps)
			}
		}
		if cs.Started > 0 {
			cs.MeanDistance = float64(dist) / float64(cs.Started)
			cs.MeanTime = float64(steps) / float64(cs.Started)
		}
		if cs.MeanTime > 0 {
			cs.Speed = cs.MeanDistance / cs.MeanTime
			cs.Flow = float64(cs.Started) / cs.MeanTime
		}
		s.Classes = append(s.Classes, cs)
	}

	total := s.Width * s.Height
	if total > 0 {
		s.ObstacleDensity = float64(s.Obstacles) / float64(total)
	}
	if free := w.freeCells(); free > 0 {
		s.OccupancyDensity = float64(w.ActiveCount()) / float64(free)
	}
	return s
}
