package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/models"
)

func newTestStore(t *testing.T) *SQLiteRunStore {
	t.Helper()
	s, err := NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// tick returns a clock that advances one second per call.
func tick(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func testFrame(turn int) models.Frame {
	return models.Frame{
		Turn: turn,
		Snapshot: models.Snapshot{
			Turn:    turn,
			Width:   3,
			Height:  2,
			Symbols: []string{"A..", "..D"},
			Values:  [][]float64{{0, 1, 1}, {1, 1, 2.5}},
		},
		Rows: []models.TrajectoryRow{
			{Turn: turn, Symbol: "A", ID: "1", X: turn, Y: 0, DestX: 2, DestY: 0},
		},
	}
}

func TestNewSQLiteRunStore(t *testing.T) {
	root := t.TempDir()
	s, err := NewSQLiteRunStore(root)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(root, ".crosswalk", "crosswalk.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if s.Path() != DatabasePath(root) {
		t.Errorf("Path() = %q, want %q", s.Path(), DatabasePath(root))
	}
}

func TestSQLiteRunStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	meta := RunMeta{Source: "generated", Seed: 1<<63 + 5, Width: 3, Height: 2, Turns: 2, Agents: 1}
	run, err := s.BeginRun(ctx, meta)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if run.Status != StatusRunning {
		t.Errorf("Status = %q, want running", run.Status)
	}

	for turn := 0; turn <= 2; turn++ {
		if err := s.RecordFrame(ctx, run.ID, testFrame(turn)); err != nil {
			t.Fatalf("RecordFrame(%d) error = %v", turn, err)
		}
	}

	summary := engine.Summary{Turn: 2, Width: 3, Height: 2, Obstacles: 1,
		Classes: []engine.ClassSummary{{Class: "mover", Started: 1, Finished: 1, MeanDistance: 2, MeanTime: 2, Speed: 1, Flow: 0.5}}}
	if err := s.FinishRun(ctx, run.ID, StatusCompleted, 2, summary); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Seed != meta.Seed {
		t.Errorf("Seed = %d, want %d", got.Seed, meta.Seed)
	}
	if got.Status != StatusCompleted || got.TurnsPlayed != 2 {
		t.Errorf("GetRun() = %+v, want completed with 2 turns", got)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}

	turns, err := s.Turns(ctx, run.ID)
	if err != nil {
		t.Fatalf("Turns() error = %v", err)
	}
	if len(turns) != 3 || turns[0] != 0 || turns[2] != 2 {
		t.Errorf("Turns() = %v, want [0 1 2]", turns)
	}

	snap, err := s.Frame(ctx, run.ID, 1)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if snap.Width != 3 || snap.Height != 2 || snap.Symbols[1] != "..D" || snap.Values[1][2] != 2.5 {
		t.Errorf("Frame() = %+v", snap)
	}

	rows, err := s.Trajectory(ctx, run.ID)
	if err != nil {
		t.Fatalf("Trajectory() error = %v", err)
	}
	if len(rows) != 3 || rows[2].X != 2 || rows[2].Turn != 2 {
		t.Errorf("Trajectory() = %+v", rows)
	}

	gotSummary, err := s.Summary(ctx, run.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if c, ok := gotSummary.Class("mover"); !ok || c.Speed != 1 {
		t.Errorf("Summary() = %+v", gotSummary)
	}
}

func TestSQLiteRunStore_FrameNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run, _ := s.BeginRun(ctx, RunMeta{Turns: 1})

	_, err := s.Frame(ctx, run.ID, 7)
	if !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("Frame() error = %v, want ErrFrameNotFound", err)
	}
	_, err = s.Summary(ctx, run.ID)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Summary() error = %v, want ErrRunNotFound", err)
	}
	if err := s.FinishRun(ctx, "nope", StatusCompleted, 0, engine.Summary{}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestSQLiteRunStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	s.now = tick(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 3; i++ {
		run, err := s.BeginRun(ctx, RunMeta{Turns: i})
		if err != nil {
			t.Fatalf("BeginRun() error = %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("ListRuns() not newest first: %v", []string{runs[0].ID, runs[1].ID, runs[2].ID})
	}
	if !runs[2].StartedAt.Equal(time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)) {
		t.Errorf("StartedAt = %v", runs[2].StartedAt)
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d runs", len(limited))
	}
}

func TestSQLiteRunStore_GetRunByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, _ := s.BeginRun(ctx, RunMeta{Turns: 1})

	got, err := s.GetRun(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("GetRun(prefix) error = %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("GetRun(prefix) = %s, want %s", got.ID, run.ID)
	}

	if _, err := s.GetRun(ctx, "zzzz"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(unknown) error = %v, want ErrRunNotFound", err)
	}
	if _, err := s.GetRun(ctx, ""); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(empty) error = %v, want ErrRunNotFound", err)
	}

	// Hand-insert two runs sharing a prefix.
	for _, id := range []string{"abc-1", "abc-2"} {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO runs (id, source, seed, width, height, turns, agents, status, started_at)
			VALUES (?, '', 0, 1, 1, 1, 0, 'running', '2026-01-01T00:00:00.000000000Z')`, id); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if _, err := s.GetRun(ctx, "abc"); !errors.Is(err, ErrAmbiguousRunID) {
		t.Errorf("GetRun(ambiguous) error = %v, want ErrAmbiguousRunID", err)
	}
}

func TestSQLiteRunStore_DeleteRunCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, _ := s.BeginRun(ctx, RunMeta{Turns: 1})
	if err := s.RecordFrame(ctx, run.ID, testFrame(0)); err != nil {
		t.Fatalf("RecordFrame() error = %v", err)
	}
	if err := s.FinishRun(ctx, run.ID, StatusCompleted, 0, engine.Summary{}); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	if err := s.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := s.GetRun(ctx, run.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun after delete error = %v", err)
	}

	for _, table := range []string{"frames", "trajectories", "summaries"} {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s still has %d rows", table, n)
		}
	}
}

func TestSQLiteRunStore_Persistence(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	s1, err := NewSQLiteRunStore(root)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	run, err := s1.BeginRun(ctx, RunMeta{Source: "scenario.csv", Turns: 5})
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2, err := NewSQLiteRunStore(root)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() reopen error = %v", err)
	}
	defer s2.Close()

	got, err := s2.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() after reopen error = %v", err)
	}
	if got.Source != "scenario.csv" {
		t.Errorf("Source = %q, want scenario.csv", got.Source)
	}
}
