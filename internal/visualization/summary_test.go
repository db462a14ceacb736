package visualization

import (
	"strings"
	"testing"

	"github.com/nvandessel/crosswalk/internal/engine"
)

func TestRenderSummary(t *testing.T) {
	s := engine.Summary{
		Turn:            12,
		Width:           50,
		Height:          20,
		Obstacles:       4,
		ObstacleDensity: 0.004,
		Classes: []engine.ClassSummary{
			{Class: "mover", Started: 3, Active: 1, Finished: 2, MeanDistance: 10, MeanTime: 12.5, Speed: 0.8, Flow: 0.24},
		},
	}

	got := RenderSummary(s)
	for _, want := range []string{
		"turn 12, 50x20 grid",
		"Obstacles:          4",
		"mover",
		"10.00",
		"12.50",
		"0.800",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSummary() missing %q in:\n%s", want, got)
		}
	}

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "mover ") {
		t.Errorf("last line = %q, want the mover row", last)
	}
}
