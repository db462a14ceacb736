package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/store"
	"github.com/nvandessel/crosswalk/internal/trajectory"
	"github.com/nvandessel/crosswalk/internal/visualization"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage archived runs",
		Long: `List, inspect, export and delete runs archived in .crosswalk/crosswalk.db.

Run IDs may be abbreviated to any unique prefix.

Examples:
  crosswalk runs list
  crosswalk runs show 3f2a9c1e
  crosswalk runs export 3f2a9c1e -o traj.csv
  crosswalk runs delete 3f2a9c1e`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsExportCmd(),
		newRunsDeleteCmd(),
	)
	return cmd
}

// openRunStore opens the archive under the --root directory.
func openRunStore(cmd *cobra.Command) (*store.SQLiteRunStore, error) {
	root, _ := cmd.Flags().GetString("root")
	rs, err := store.NewSQLiteRunStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}
	return rs, nil
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			runs, err := rs.ListRuns(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs archived yet. Start one with 'crosswalk run'.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s  %-11s  %-9s  %-7s  %5s  %-16s  %s\n",
				"ID", "Status", "Turns", "Grid", "Recs", "Started", "Source")
			for _, r := range runs {
				printRunLine(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show an archived run and its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			ctx := context.Background()
			run, err := rs.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			summary, sumErr := rs.Summary(ctx, run.ID)

			if jsonOut {
				result := map[string]interface{}{"run": run}
				if sumErr == nil {
					result["summary"] = summary
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", run.ID)
			fmt.Fprintf(out, "  Status:   %s\n", run.Status)
			fmt.Fprintf(out, "  Source:   %s\n", run.Source)
			fmt.Fprintf(out, "  Seed:     %d\n", run.Seed)
			fmt.Fprintf(out, "  Grid:     %dx%d\n", run.Width, run.Height)
			fmt.Fprintf(out, "  Records:  %d\n", run.Agents)
			fmt.Fprintf(out, "  Turns:    %d of %d\n", run.TurnsPlayed, run.Turns)
			fmt.Fprintf(out, "  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "  Finished: %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintln(out)
			if sumErr != nil {
				fmt.Fprintln(out, "No summary stored; the run did not finish.")
				return nil
			}
			fmt.Fprint(out, visualization.RenderSummary(*summary))
			return nil
		},
	}
}

func newRunsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export the trajectory of an archived run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			ctx := context.Background()
			run, err := rs.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			rows, err := rs.Trajectory(ctx, run.ID)
			if err != nil {
				return fmt.Errorf("failed to load trajectory: %w", err)
			}

			if output == "" {
				w := trajectory.NewCSVWriter(cmd.OutOrStdout())
				return w.WriteRows(rows)
			}

			w, err := trajectory.CreateCSV(output)
			if err != nil {
				return err
			}
			if err := w.WriteRows(rows); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"run_id": run.ID,
					"path":   output,
					"rows":   len(rows),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d trajectory rows of run %s to %s\n", len(rows), shortID(run.ID), output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			ctx := context.Background()
			run, err := rs.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			if err := rs.DeleteRun(ctx, run.ID); err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "deleted",
					"run_id": run.ID,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
			return nil
		},
	}
}
