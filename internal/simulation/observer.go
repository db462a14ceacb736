package simulation

import (
	"context"

	"github.com/nvandessel/crosswalk/internal/models"
)

// Observer receives one frame per turn, starting with the initial state as
// turn 0. Returning an error aborts the run.
type Observer interface {
	ObserveFrame(ctx context.Context, frame models.Frame) error
}

// Finisher is implemented by observers that need the final result, for
// example to flush files or store the summary. Finish is called once, even
// when the run stops early.
type Finisher interface {
	Finish(ctx context.Context, result Result) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, frame models.Frame) error

// ObserveFrame calls f.
func (f ObserverFunc) ObserveFrame(ctx context.Context, frame models.Frame) error {
	return f(ctx, frame)
}

// FrameCollector keeps every frame in memory.
type FrameCollector struct {
	Frames []models.Frame
}

// ObserveFrame appends the frame.
func (c *FrameCollector) ObserveFrame(_ context.Context, frame models.Frame) error {
	c.Frames = append(c.Frames, frame)
	return nil
}
