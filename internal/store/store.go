// Package store archives simulation runs: run metadata, per-turn
// snapshots, trajectories and the final summary.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/models"
)

var (
	// ErrRunNotFound is returned when no run matches an ID or ID prefix.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")

	// ErrFrameNotFound is returned for a turn the run never recorded.
	ErrFrameNotFound = errors.New("frame not found")
)

// RunStatus is the lifecycle state of an archived run.
type RunStatus string

const (
	StatusRunning     RunStatus = "running"     // frames are still being written
	StatusCompleted   RunStatus = "completed"   // all planned turns played, or nobody left
	StatusInterrupted RunStatus = "interrupted" // stopped early by a signal or error
)

// RunMeta is what the caller knows when a run starts.
type RunMeta struct {
	Source string `json:"source"` // scenario path, or "generated"
	Seed   uint64 `json:"seed"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Turns  int    `json:"turns"`
	Agents int    `json:"agents"`
}

// Run is an archived run.
type Run struct {
	ID string `json:"id"`
	RunMeta
	TurnsPlayed int        `json:"turns_played"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// RunStore is the archive interface the CLI, the viewer and the MCP server
// work against.
type RunStore interface {
	BeginRun(ctx context.Context, meta RunMeta) (*Run, error)
	RecordFrame(ctx context.Context, runID string, frame models.Frame) error
	FinishRun(ctx context.Context, runID string, status RunStatus, turnsPlayed int, summary engine.Summary) error

	ListRuns(ctx context.Context, limit int) ([]Run, error)
	// GetRun accepts a full ID or a unique prefix of one.
	GetRun(ctx context.Context, id string) (*Run, error)
	DeleteRun(ctx context.Context, id string) error

	Turns(ctx context.Context, runID string) ([]int, error)
	Frame(ctx context.Context, runID string, turn int) (*models.Snapshot, error)
	Trajectory(ctx context.Context, runID string) ([]models.TrajectoryRow, error)
	Summary(ctx context.Context, runID string) (*engine.Summary, error)

	Close() error
}
