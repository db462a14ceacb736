package store

import (
	"context"

	"github.com/nvandessel/crosswalk/internal/models"
	"github.com/nvandessel/crosswalk/internal/simulation"
)

// Recorder archives a run as it plays. It implements simulation.Observer
// and simulation.Finisher.
type Recorder struct {
	store RunStore
	run   *Run
}

// NewRecorder starts a run in s and returns an observer that fills it.
func NewRecorder(ctx context.Context, s RunStore, meta RunMeta) (*Recorder, error) {
	run, err := s.BeginRun(ctx, meta)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: s, run: run}, nil
}

// RunID returns the ID of the run being recorded.
func (r *Recorder) RunID() string { return r.run.ID }

// ObserveFrame stores the frame.
func (r *Recorder) ObserveFrame(ctx context.Context, frame models.Frame) error {
	return r.store.RecordFrame(ctx, r.run.ID, frame)
}

// Finish stores the summary. A run counts as completed when every planned
// turn was played or no agent is left walking.
func (r *Recorder) Finish(ctx context.Context, result simulation.Result) error {
	status := StatusInterrupted
	active := 0
	for _, c := range result.Summary.Classes {
		active += c.Active
	}
	if result.TurnsPlayed >= r.run.Turns || active == 0 {
		status = StatusCompleted
	}
	return r.store.FinishRun(ctx, r.run.ID, status, result.TurnsPlayed, result.Summary)
}
