package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/crosswalk/internal/engine"
)

// RenderSummary formats run statistics as a fixed-width table.
func RenderSummary(s engine.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run Summary (turn %d, %dx%d grid)\n", s.Turn, s.Width, s.Height)
	fmt.Fprintf(&b, "==========================================\n\n")
	fmt.Fprintf(&b, "  Obstacles:          %d\n", s.Obstacles)
	fmt.Fprintf(&b, "  Obstacle density:   %.3f\n", s.ObstacleDensity)
	fmt.Fprintf(&b, "  Occupancy density:  %.3f\n\n", s.OccupancyDensity)

	fmt.Fprintf(&b, "%-14s %7s %7s %8s %9s %8s %7s %7s\n",
		"Class", "Started", "Active", "Finished", "Distance", "Time", "Speed", "Flow")
	b.WriteString(strings.Repeat("-", 74))
	b.WriteByte('\n')
	for _, c := range s.Classes {
		fmt.Fprintf(&b, "%-14s %7d %7d %8d %9.2f %8.2f %7.3f %7.3f\n",
			c.Class, c.Started, c.Active, c.Finished,
			c.MeanDistance, c.MeanTime, c.Speed, c.Flow)
	}
	return b.String()
}
