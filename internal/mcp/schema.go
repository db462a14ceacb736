// Package mcp provides an MCP (Model Context Protocol) server for crosswalk.
package mcp

import (
	"github.com/nvandessel/crosswalk/internal/engine"
)

// RunInput defines the input for the crosswalk_run tool.
type RunInput struct {
	Scenario      string `json:"scenario,omitempty" jsonschema:"Scenario CSV path relative to the project root; empty generates a crossing"`
	Turns         int    `json:"turns,omitempty" jsonschema:"Number of turns to play (default: config run.turns, else 40)"`
	Seed          uint64 `json:"seed,omitempty" jsonschema:"Random seed; 0 picks a fresh one"`
	Width         int    `json:"width,omitempty" jsonschema:"Grid width (default: config grid.width)"`
	Height        int    `json:"height,omitempty" jsonschema:"Grid height (default: config grid.height)"`
	Archive       bool   `json:"archive,omitempty" jsonschema:"Store the run in .crosswalk/crosswalk.db so its frames can be fetched later"`
	StopWhenEmpty bool   `json:"stop_when_empty,omitempty" jsonschema:"End the run once every agent has finished"`
	TrajectoryCSV string `json:"trajectory_csv,omitempty" jsonschema:"Write the trajectory CSV to this path under the project root"`
}

// RunOutput defines the output for the crosswalk_run tool.
type RunOutput struct {
	RunID          string         `json:"run_id,omitempty" jsonschema:"Archive ID of the run (empty when not archived)"`
	Source         string         `json:"source" jsonschema:"Scenario path, or 'generated'"`
	Seed           uint64         `json:"seed" jsonschema:"Seed the run used"`
	Agents         int            `json:"agents" jsonschema:"Number of scenario records, obstacles included"`
	TurnsPlayed    int            `json:"turns_played" jsonschema:"Turns actually played"`
	SwapsRequested int            `json:"swaps_requested" jsonschema:"Swap negotiations started"`
	SwapsAccepted  int            `json:"swaps_accepted" jsonschema:"Swap negotiations accepted"`
	Summary        engine.Summary `json:"summary" jsonschema:"Per-class statistics at the end of the run"`
	FinalFrame     string         `json:"final_frame" jsonschema:"Symbol grid after the last turn"`
	Message        string         `json:"message" jsonschema:"Human-readable result message"`
}

// RunsInput defines the input for the crosswalk_runs tool.
type RunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs, newest first (default: 20)"`
}

// RunsOutput defines the output for the crosswalk_runs tool.
type RunsOutput struct {
	Runs  []RunListItem `json:"runs" jsonschema:"Archived runs, newest first"`
	Count int           `json:"count" jsonschema:"Number of runs returned"`
}

// RunListItem provides a list view of an archived run.
type RunListItem struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Seed        uint64 `json:"seed"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Turns       int    `json:"turns"`
	TurnsPlayed int    `json:"turns_played"`
	Agents      int    `json:"agents"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
}

// FrameInput defines the input for the crosswalk_frame tool.
type FrameInput struct {
	RunID string `json:"run_id" jsonschema:"Run ID or unique prefix of one"`
	Turn  int    `json:"turn" jsonschema:"Turn number; 0 is the initial placement"`
}

// FrameOutput defines the output for the crosswalk_frame tool.
type FrameOutput struct {
	RunID  string `json:"run_id" jsonschema:"Full run ID"`
	Turn   int    `json:"turn" jsonschema:"Turn number"`
	Width  int    `json:"width" jsonschema:"Grid width"`
	Height int    `json:"height" jsonschema:"Grid height"`
	Text   string `json:"text" jsonschema:"Symbol rows: '.' free, A Mover, B PathFollower, D Obstacle, other letters Tourists"`
}
