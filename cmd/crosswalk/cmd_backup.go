package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/backup"
	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/pathutil"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the run archive to a file",
		Long: `Back up every archived run (frames, trajectories and summaries) to one file.

Default location: .crosswalk/backups/crosswalk-backup-YYYYMMDD-HHMMSS.json.gz
Older backups are pruned according to backup.max_count and backup.max_age.

Examples:
  crosswalk backup                              # Compressed backup to the default location
  crosswalk backup --output runs.json.gz        # Backup to a specific file
  crosswalk backup --no-compress -o runs.json   # Plain JSON backup
  crosswalk backup list                         # List backups
  crosswalk backup verify <file>                # Verify backup integrity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			noCompress, _ := cmd.Flags().GetBool("no-compress")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			compress := cfg.Backup.Compress && !noCompress

			dir := backup.DefaultBackupDir(root)
			if outputPath == "" {
				outputPath = backup.GenerateBackupPath(dir)
				if !compress {
					outputPath = strings.TrimSuffix(outputPath, ".gz")
				}
			} else {
				outputPath, err = pathutil.Resolve(root, outputPath)
				if err != nil {
					return fmt.Errorf("backup path rejected: %w", err)
				}
			}

			policy, err := buildRetentionPolicy(&cfg.Backup)
			if err != nil {
				return err
			}

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			result, err := backup.Collect(context.Background(), rs)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			write := backup.WriteV2
			if !compress {
				write = backup.WriteV1
			}
			if err := write(outputPath, result); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			var pruned []string
			if policy != nil && filepath.Dir(outputPath) == dir {
				pruned, err = backup.ApplyRetention(dir, policy)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
				}
			}

			var size int64
			if info, err := os.Stat(outputPath); err == nil {
				size = info.Size()
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"path":        outputPath,
					"run_count":   len(result.Runs),
					"frame_count": result.FrameCount(),
					"compressed":  compress,
					"size_bytes":  size,
					"pruned":      len(pruned),
					"message":     fmt.Sprintf("Backup created: %d runs, %d frames", len(result.Runs), result.FrameCount()),
				})
			}

			label := "v2/gzip"
			if !compress {
				label = "v1/json"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup created: %d runs, %d frames (%s, %s)\n",
				len(result.Runs), result.FrameCount(), label, humanize.IBytes(uint64(size)))
			fmt.Fprintf(out, "  Path: %s\n", outputPath)
			if len(pruned) > 0 {
				fmt.Fprintf(out, "  Pruned %d old backups\n", len(pruned))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: auto-generated in .crosswalk/backups/)")
	cmd.Flags().Bool("no-compress", false, "Write plain JSON instead of a compressed backup")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)
	return cmd
}

// buildRetentionPolicy combines the configured limits. It returns nil when
// no limit is set.
func buildRetentionPolicy(cfg *config.BackupConfig) (backup.RetentionPolicy, error) {
	var policies []backup.RetentionPolicy
	if cfg.MaxCount > 0 {
		policies = append(policies, &backup.CountPolicy{MaxCount: cfg.MaxCount})
	}
	if cfg.MaxAge != "" {
		d, err := backup.ParseDuration(cfg.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid backup.max_age: %w", err)
		}
		policies = append(policies, &backup.AgePolicy{MaxAge: d})
	}

	switch len(policies) {
	case 0:
		return nil, nil
	case 1:
		return policies[0], nil
	default:
		return &backup.AllPolicy{Policies: policies}, nil
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups in .crosswalk/backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			dir := backup.DefaultBackupDir(root)
			backups, err := backup.ListBackups(dir)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			type entry struct {
				Path       string `json:"path"`
				Version    int    `json:"version"`
				Size       int64  `json:"size_bytes"`
				CreatedAt  string `json:"created_at"`
				RunCount   int    `json:"run_count,omitempty"`
				FrameCount int    `json:"frame_count,omitempty"`
			}
			entries := make([]entry, 0, len(backups))
			for _, b := range backups {
				e := entry{
					Path:      b.Path,
					Version:   b.Version,
					Size:      b.Size,
					CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				}
				if b.Version == backup.FormatV2 {
					if header, err := backup.ReadV2Header(b.Path); err == nil {
						e.RunCount = header.RunCount
						e.FrameCount = header.FrameCount
					}
				}
				entries = append(entries, e)
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"backups":     entries,
					"total_count": len(entries),
					"directory":   dir,
				})
			}

			if len(entries) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Backups in %s:\n", dir)
			var total uint64
			for i, e := range entries {
				total += uint64(e.Size)
				fmt.Fprintf(out, "  %-14s  %8s  %3d runs  %5d frames  %s\n",
					humanize.Time(backups[i].CreatedAt),
					humanize.IBytes(uint64(e.Size)),
					e.RunCount, e.FrameCount,
					filepath.Base(e.Path))
			}
			fmt.Fprintf(out, "Total: %d backups, %s\n", len(entries), humanize.IBytes(total))
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a compressed backup's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path := args[0]

			err := backup.VerifyChecksum(path)
			if jsonOut {
				result := map[string]interface{}{"path": path, "valid": err == nil}
				if err != nil {
					result["error"] = err.Error()
				}
				json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: checksum OK\n", path)
			}
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore archived runs from a backup file",
		Long: `Restore runs from a backup file into .crosswalk/crosswalk.db.
The format (plain or compressed) is detected automatically and runs keep
their original IDs.

Modes:
  merge   - Skip runs that are already archived (default)
  replace - Overwrite archived runs with their backed-up copy

Examples:
  crosswalk restore .crosswalk/backups/crosswalk-backup-20260206-120000.json.gz
  crosswalk restore runs.json --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			mode, _ := cmd.Flags().GetString("mode")

			inputPath, err := pathutil.Resolve(root, args[0])
			if err != nil {
				return fmt.Errorf("restore path rejected: %w", err)
			}

			var restoreMode backup.RestoreMode
			switch mode {
			case "merge":
				restoreMode = backup.RestoreMerge
			case "replace":
				restoreMode = backup.RestoreReplace
			default:
				return fmt.Errorf("invalid mode %q (valid: merge, replace)", mode)
			}

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			result, err := backup.Restore(context.Background(), rs, inputPath, restoreMode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs_restored":   result.RunsRestored,
					"runs_skipped":    result.RunsSkipped,
					"runs_replaced":   result.RunsReplaced,
					"frames_restored": result.FramesRestored,
					"message":         fmt.Sprintf("Restore complete: %d runs", result.RunsRestored),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Restore complete (mode: %s)\n", mode)
			fmt.Fprintf(out, "  Runs:   %d restored, %d skipped, %d replaced\n",
				result.RunsRestored, result.RunsSkipped, result.RunsReplaced)
			fmt.Fprintf(out, "  Frames: %d\n", result.FramesRestored)
			return nil
		},
	}

	cmd.Flags().String("mode", "merge", "Restore mode: merge or replace")
	return cmd
}
