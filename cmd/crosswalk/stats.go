package main

import (
	"fmt"
	"io"

	"github.com/nvandessel/crosswalk/internal/models"
	"github.com/nvandessel/crosswalk/internal/store"
	"github.com/nvandessel/crosswalk/internal/visualization"
)

// printRunOutput prints the final grid (optionally), the run statistics
// and where the outputs went.
func printRunOutput(w io.Writer, out *runOutput, showFrame bool) {
	if showFrame {
		fmt.Fprint(w, visualization.RenderText(out.FinalFrame))
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, visualization.RenderSummary(out.Summary))
	fmt.Fprintln(w)

	status := ""
	if out.Interrupted {
		status = " (interrupted)"
	}
	fmt.Fprintf(w, "Played %d of %d turns%s\n", out.TurnsPlayed, out.Turns, status)
	fmt.Fprintf(w, "Scenario: %s (%d records)\n", out.Source, out.Agents)
	fmt.Fprintf(w, "Swaps:    %d accepted of %d requested\n", out.SwapsAccepted, out.SwapsRequested)
	fmt.Fprintf(w, "Seed:     %d (replay with --seed %d)\n", out.Seed, out.Seed)
	if out.TrajectoryCSV != "" {
		fmt.Fprintf(w, "Trajectory: %s (%d rows)\n", out.TrajectoryCSV, out.TrajectoryRows)
	}
	if out.SnapshotDir != "" {
		fmt.Fprintf(w, "Snapshots:  %d files in %s\n", len(out.Snapshots), out.SnapshotDir)
	}
	if out.RunID != "" {
		fmt.Fprintf(w, "Archived as %s (view with 'crosswalk view %s')\n", out.RunID, shortID(out.RunID))
	}
}

// classCounts counts records per class, keyed by class name.
func classCounts(records []models.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Class.String()]++
	}
	return counts
}

// printClassCounts prints counts in phase order, obstacles last.
func printClassCounts(w io.Writer, counts map[string]int) {
	classes := append(append([]models.Class{}, models.MovingClasses...), models.ClassObstacle)
	for _, c := range classes {
		fmt.Fprintf(w, "  %-14s %d\n", c.String()+":", counts[c.String()])
	}
}

// printRunLine prints one archived run in list form.
func printRunLine(w io.Writer, r store.Run) {
	fmt.Fprintf(w, "%-8s  %-11s  %4d/%-4d  %3dx%-3d  %5d  %s  %s\n",
		shortID(r.ID), r.Status, r.TurnsPlayed, r.Turns, r.Width, r.Height, r.Agents,
		r.StartedAt.Local().Format("2006-01-02 15:04"), r.Source)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
