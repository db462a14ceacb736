package models

import "strings"

// Snapshot is the rendered state of the grid after a turn.
// Values and Symbols are indexed [y][x].
type Snapshot struct {
	Turn    int         `json:"turn"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Values  [][]float64 `json:"values"`
	Symbols []string    `json:"symbols"`
}

// Text joins the symbol rows, one row per line.
func (s Snapshot) Text() string {
	return strings.Join(s.Symbols, "\n")
}

// Frame bundles everything observers receive for one turn.
type Frame struct {
	Turn     int             `json:"turn"`
	Snapshot Snapshot        `json:"snapshot"`
	Rows     []TrajectoryRow `json:"rows"`
}
