// Package simulation drives an engine.World through a fixed number of turns
// and fans every resulting frame out to observers (trajectory CSV, snapshot
// files, the run archive).
//
// The engine is single-threaded and never blocks; the runner checks its
// context between turns so a long run can be interrupted cleanly.
//
// Usage:
//
//	r, err := simulation.Build(records, simulation.Config{
//	    Width: 50, Height: 20, Turns: 40, Rand: rng,
//	})
//	r.Observers = append(r.Observers, trajectory.NewCSVWriter(f))
//	result, err := r.Run(ctx)
package simulation
