package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/store"
	"github.com/nvandessel/crosswalk/internal/visualization"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [run-id]",
		Short: "View an archived run",
		Long: `View an archived run in the browser, stepping through its turns.

Without a run ID the most recent run is shown. With --turn a single turn
is printed instead; add --png to write it as an image.

Examples:
  crosswalk view                       # Open the latest run in the browser
  crosswalk view 3f2a9c1e --no-open    # Serve without opening a browser
  crosswalk view --turn 12             # Print turn 12 of the latest run
  crosswalk view --turn 12 --png t.png # Save turn 12 as a PNG`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			turn, _ := cmd.Flags().GetInt("turn")
			pngPath, _ := cmd.Flags().GetString("png")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			rs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()

			ctx := context.Background()
			run, err := resolveRun(ctx, rs, args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("turn") {
				return serveRun(cmd, rs, run, noOpen)
			}

			snap, err := rs.Frame(ctx, run.ID, turn)
			if err != nil {
				return err
			}

			if pngPath != "" {
				f, err := os.Create(pngPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", pngPath, err)
				}
				if err := visualization.RenderPNG(f, *snap, constants.DefaultSnapshotScale); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				if !jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote turn %d of run %s to %s\n", turn, shortID(run.ID), pngPath)
					return nil
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"run_id":   run.ID,
					"snapshot": snap,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), visualization.RenderText(*snap))
			return nil
		},
	}

	cmd.Flags().Int("turn", 0, "Print a single turn instead of serving the viewer")
	cmd.Flags().String("png", "", "With --turn, write the turn as a PNG to this path")
	cmd.Flags().Bool("no-open", false, "Don't open the browser")

	return cmd
}

// resolveRun finds the run named by args[0], or the latest run.
func resolveRun(ctx context.Context, rs store.RunStore, args []string) (*store.Run, error) {
	if len(args) == 1 {
		return rs.GetRun(ctx, args[0])
	}
	runs, err := rs.ListRuns(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs archived yet; start one with 'crosswalk run'")
	}
	return &runs[0], nil
}

func serveRun(cmd *cobra.Command, rs store.RunStore, run *store.Run, noOpen bool) error {
	srv := visualization.NewServer(rs, run.ID)

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Addr() != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Viewing run %s at %s\n", shortID(run.ID), url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
