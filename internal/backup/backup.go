// Package backup writes the run archive to a portable file and reads it
// back into another archive.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/crosswalk/internal/engine"
	"github.com/nvandessel/crosswalk/internal/models"
	"github.com/nvandessel/crosswalk/internal/store"
)

// PayloadVersion is the layout version of BackupFormat.
const PayloadVersion = 1

// BackupFormat is the payload of a backup file.
type BackupFormat struct {
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	Runs      []BackupRun `json:"runs"`
}

// BackupRun is one archived run with everything recorded for it.
type BackupRun struct {
	Run     store.Run       `json:"run"`
	Summary *engine.Summary `json:"summary,omitempty"`
	Frames  []models.Frame  `json:"frames"`
}

// FrameCount totals the frames of every run.
func (b *BackupFormat) FrameCount() int {
	n := 0
	for _, r := range b.Runs {
		n += len(r.Frames)
	}
	return n
}

// Importer is a run store that can take runs under their original IDs.
type Importer interface {
	store.RunStore
	ImportRun(ctx context.Context, run store.Run, frames []models.Frame, summary *engine.Summary) error
}

// DefaultBackupDir returns <root>/.crosswalk/backups.
func DefaultBackupDir(root string) string {
	return filepath.Join(store.LocalDir(root), "backups")
}

// Collect reads every run of rs into a backup payload, newest run first.
func Collect(ctx context.Context, rs store.RunStore) (*BackupFormat, error) {
	runs, err := rs.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	b := &BackupFormat{
		Version:   PayloadVersion,
		CreatedAt: time.Now().UTC(),
		Runs:      make([]BackupRun, 0, len(runs)),
	}
	for _, run := range runs {
		frames, err := store.ExportFrames(ctx, rs, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read frames of %s: %w", run.ID, err)
		}
		br := BackupRun{Run: run, Frames: frames}
		if summary, err := rs.Summary(ctx, run.ID); err == nil {
			br.Summary = summary
		} else if !errors.Is(err, store.ErrRunNotFound) {
			return nil, fmt.Errorf("failed to read summary of %s: %w", run.ID, err)
		}
		b.Runs = append(b.Runs, br)
	}
	return b, nil
}

// Backup writes every run of rs to outputPath in the current format.
func Backup(ctx context.Context, rs store.RunStore, outputPath string) (*BackupFormat, error) {
	b, err := Collect(ctx, rs)
	if err != nil {
		return nil, err
	}
	if err := WriteV2(outputPath, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RestoreMode controls how restore treats runs already in the archive.
type RestoreMode string

const (
	// RestoreMerge skips runs whose ID is already archived (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes an archived run before importing its copy.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult counts what a restore did.
type RestoreResult struct {
	RunsRestored   int `json:"runs_restored"`
	RunsSkipped    int `json:"runs_skipped"`
	RunsReplaced   int `json:"runs_replaced"`
	FramesRestored int `json:"frames_restored"`
}

// Restore imports the runs of a backup file into dst.
func Restore(ctx context.Context, dst Importer, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	b, err := Read(inputPath)
	if err != nil {
		return nil, err
	}
	if b.Version != PayloadVersion {
		return nil, fmt.Errorf("unsupported backup version: %d", b.Version)
	}

	result := &RestoreResult{}
	for _, br := range b.Runs {
		existing, err := dst.GetRun(ctx, br.Run.ID)
		switch {
		case err == nil && existing.ID == br.Run.ID:
			if mode != RestoreReplace {
				result.RunsSkipped++
				continue
			}
			if err := dst.DeleteRun(ctx, br.Run.ID); err != nil {
				return result, fmt.Errorf("failed to replace run %s: %w", br.Run.ID, err)
			}
			result.RunsReplaced++
		case err != nil && !errors.Is(err, store.ErrRunNotFound) && !errors.Is(err, store.ErrAmbiguousRunID):
			return result, fmt.Errorf("failed to check run %s: %w", br.Run.ID, err)
		}

		if err := dst.ImportRun(ctx, br.Run, br.Frames, br.Summary); err != nil {
			return result, fmt.Errorf("failed to restore run %s: %w", br.Run.ID, err)
		}
		result.RunsRestored++
		result.FramesRestored += len(br.Frames)
	}
	return result, nil
}

// GenerateBackupPath returns a timestamped backup path in dir.
func GenerateBackupPath(dir string) string {
	ts := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s%s%s", backupPrefix, ts, backupSuffix))
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}
