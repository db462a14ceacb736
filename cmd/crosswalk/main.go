package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crosswalk",
		Short: "Pedestrian crossing simulation on a grid",
		Long: `crosswalk simulates pedestrians crossing a street on a discrete grid.

Movers walk greedily toward their destination, PathFollowers keep to the
straight line and negotiate swaps with whoever blocks them, Tourists wander,
and obstacles stay put. Runs can be archived, replayed and viewed in a
browser.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newGenerateCmd(),
		newValidateCmd(),
		newRunsCmd(),
		newViewCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// signalContext returns a context cancelled on Ctrl-C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
