package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/models"
)

// timeLayout is fixed-width so that timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRunStore implements RunStore on a SQLite database at
// <root>/.crosswalk/crosswalk.db.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewSQLiteRunStore opens (creating if needed) the archive under root.
func NewSQLiteRunStore(root string) (*SQLiteRunStore, error) {
	dir := LocalDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	dbPath := DatabasePath(root)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string { return s.dbPath }

// BeginRun creates a run row in the running state.
func (s *SQLiteRunStore) BeginRun(ctx context.Context, meta RunMeta) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:        uuid.NewString(),
		RunMeta:   meta,
		Status:    StatusRunning,
		StartedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, seed, width, height, turns, agents, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, meta.Source, int64(meta.Seed), meta.Width, meta.Height, meta.Turns, meta.Agents,
		string(run.Status), run.StartedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// RecordFrame stores a frame's snapshot and trajectory rows in one
// transaction.
func (s *SQLiteRunStore) RecordFrame(ctx context.Context, runID string, frame models.Frame) error {
	symbols, err := json.Marshal(frame.Snapshot.Symbols)
	if err != nil {
		return fmt.Errorf("failed to marshal symbols: %w", err)
	}
	values, err := json.Marshal(frame.Snapshot.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO frames (run_id, turn, symbols, plot_values) VALUES (?, ?, ?, ?)`,
		runID, frame.Turn, string(symbols), string(values)); err != nil {
		return fmt.Errorf("failed to insert frame %d: %w", frame.Turn, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trajectories (run_id, turn, class, agent_id, x, y, dest_x, dest_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trajectory insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range frame.Rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Turn, r.Symbol, r.ID, r.X, r.Y, r.DestX, r.DestY); err != nil {
			return fmt.Errorf("failed to insert trajectory row %s%s: %w", r.Symbol, r.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET turns_played = MAX(turns_played, ?) WHERE id = ?`,
		frame.Turn, runID); err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}

	return tx.Commit()
}

// FinishRun stores the summary and closes the run.
func (s *SQLiteRunStore) FinishRun(ctx context.Context, runID string, status RunStatus, turnsPlayed int, summary engine.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, turns_played = ?, finished_at = ? WHERE id = ?`,
		string(status), turnsPlayed, s.now().UTC().Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO summaries (run_id, summary) VALUES (?, ?)`,
		runID, string(data)); err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	return tx.Commit()
}

const runColumns = `id, source, seed, width, height, turns, agents, turns_played, status, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r          Run
		seed       int64
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Source, &seed, &r.Width, &r.Height, &r.Turns, &r.Agents,
		&r.TurnsPlayed, &status, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	r.Seed = uint64(seed)
	r.Status = RunStatus(status)
	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		r.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(timeLayout, finishedAt.String); err == nil {
			r.FinishedAt = &t
		}
	}
	return &r, nil
}

// ListRuns returns runs newest first. A non-positive limit returns all.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by full ID or unique prefix.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRun(ctx, id)
}

func (s *SQLiteRunStore) getRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run prefix: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
	}
}

// DeleteRun removes a run and everything recorded for it.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.getRun(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.ID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Turns lists the recorded turn numbers of a run in ascending order.
func (s *SQLiteRunStore) Turns(ctx context.Context, runID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT turn FROM frames WHERE run_id = ? ORDER BY turn`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var turns []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Frame loads the snapshot of one turn.
func (s *SQLiteRunStore) Frame(ctx context.Context, runID string, turn int) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var symbols, values string
	err := s.db.QueryRowContext(ctx,
		`SELECT symbols, plot_values FROM frames WHERE run_id = ? AND turn = ?`,
		runID, turn).Scan(&symbols, &values)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s turn %d", ErrFrameNotFound, runID, turn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query frame: %w", err)
	}

	snap := &models.Snapshot{Turn: turn}
	if err := json.Unmarshal([]byte(symbols), &snap.Symbols); err != nil {
		return nil, fmt.Errorf("failed to decode symbols: %w", err)
	}
	if err := json.Unmarshal([]byte(values), &snap.Values); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	snap.Height = len(snap.Symbols)
	if snap.Height > 0 {
		snap.Width = len(snap.Symbols[0])
	}
	return snap, nil
}

// Trajectory returns every recorded row of a run ordered by turn.
func (s *SQLiteRunStore) Trajectory(ctx context.Context, runID string) ([]models.TrajectoryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT turn, class, agent_id, x, y, dest_x, dest_y
		FROM trajectories WHERE run_id = ?
		ORDER BY turn, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectory: %w", err)
	}
	defer rows.Close()

	var out []models.TrajectoryRow
	for rows.Next() {
		var r models.TrajectoryRow
		if err := rows.Scan(&r.Turn, &r.Symbol, &r.ID, &r.X, &r.Y, &r.DestX, &r.DestY); err != nil {
			return nil, fmt.Errorf("failed to scan trajectory row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary loads the summary stored by FinishRun.
func (s *SQLiteRunStore) Summary(ctx context.Context, runID string) (*engine.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT summary FROM summaries WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no summary for %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}

	var summary engine.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &summary, nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
