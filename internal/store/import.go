package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/models"
)

// ErrRunExists is returned when importing a run whose ID is already stored.
var ErrRunExists = errors.New("run already exists")

// ImportRun stores a complete run under its original ID, timestamps and
// status included. A nil summary leaves the run without one.
func (s *SQLiteRunStore) ImportRun(ctx context.Context, run Run, frames []models.Frame, summary *engine.Summary) error {
	if run.ID == "" {
		return fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check run: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
	}

	var finishedAt any
	if run.FinishedAt != nil {
		finishedAt = run.FinishedAt.UTC().Format(timeLayout)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, seed, width, height, turns, agents, turns_played, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, int64(run.Seed), run.Width, run.Height, run.Turns, run.Agents,
		run.TurnsPlayed, string(run.Status), run.StartedAt.UTC().Format(timeLayout), finishedAt); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	frameStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO frames (run_id, turn, symbols, plot_values) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer frameStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trajectories (run_id, turn, class, agent_id, x, y, dest_x, dest_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trajectory insert: %w", err)
	}
	defer rowStmt.Close()

	for _, f := range frames {
		symbols, err := json.Marshal(f.Snapshot.Symbols)
		if err != nil {
			return fmt.Errorf("failed to marshal symbols: %w", err)
		}
		values, err := json.Marshal(f.Snapshot.Values)
		if err != nil {
			return fmt.Errorf("failed to marshal values: %w", err)
		}
		if _, err := frameStmt.ExecContext(ctx, run.ID, f.Turn, string(symbols), string(values)); err != nil {
			return fmt.Errorf("failed to insert frame %d: %w", f.Turn, err)
		}
		for _, r := range f.Rows {
			if _, err := rowStmt.ExecContext(ctx, run.ID, r.Turn, r.Symbol, r.ID, r.X, r.Y, r.DestX, r.DestY); err != nil {
				return fmt.Errorf("failed to insert trajectory row %s%s: %w", r.Symbol, r.ID, err)
			}
		}
	}

	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO summaries (run_id, summary) VALUES (?, ?)`, run.ID, string(data)); err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
	}

	return tx.Commit()
}

// ExportFrames loads every recorded frame of a run, trajectory rows
// included, in turn order.
func ExportFrames(ctx context.Context, rs RunStore, runID string) ([]models.Frame, error) {
	turns, err := rs.Turns(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := rs.Trajectory(ctx, runID)
	if err != nil {
		return nil, err
	}

	byTurn := make(map[int][]models.TrajectoryRow)
	for _, r := range rows {
		byTurn[r.Turn] = append(byTurn[r.Turn], r)
	}

	frames := make([]models.Frame, 0, len(turns))
	for _, turn := range turns {
		snap, err := rs.Frame(ctx, runID, turn)
		if err != nil {
			return nil, err
		}
		frames = append(frames, models.Frame{Turn: turn, Snapshot: *snap, Rows: byTurn[turn]})
	}
	return frames, nil
}
