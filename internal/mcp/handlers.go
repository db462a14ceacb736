package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/pathutil"
	"github.com/nvandessel/crosswalk/internal/scenario"
	"github.com/nvandessel/crosswalk/internal/simulation"
	"github.com/nvandessel/crosswalk/internal/store"
	"github.com/nvandessel/crosswalk/internal/trajectory"
	"github.com/nvandessel/crosswalk/internal/visualization"
)

const (
	defaultRunsLimit  = 20
	runResourcePrefix = "crosswalk://runs/"
	latestResourceURI = "crosswalk://runs/latest"
)

// registerTools registers all crosswalk MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "crosswalk_run",
		Description: "Run a pedestrian crossing simulation from a scenario file or a generated crossing and return per-class statistics",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "crosswalk_runs",
		Description: "List archived simulation runs, newest first",
	}, s.handleRuns)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "crosswalk_frame",
		Description: "Get the symbol grid of one turn of an archived run",
	}, s.handleFrame)
}

// registerResources registers run summaries as readable resources.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         latestResourceURI,
		Name:        "crosswalk-latest-run",
		Description: "Statistics of the most recent archived run.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: runResourcePrefix + "{id}",
		Name:        "crosswalk-run",
		Description: "Statistics of an archived run by ID or unique ID prefix.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)
}

// handleRunResource renders the stored summary of a run as markdown.
func (s *Server) handleRunResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, runResourcePrefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}

	var run *store.Run
	if uri == latestResourceURI {
		runs, err := s.store.ListRuns(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			return markdownResult(uri, "# Latest Run\n\nNo runs archived yet. Start one with `crosswalk_run` and `archive: true`.\n"), nil
		}
		run = &runs[0]
	} else {
		id := strings.TrimPrefix(uri, runResourcePrefix)
		if id == "" {
			return nil, fmt.Errorf("run ID is required")
		}
		found, err := s.store.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		run = found
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run %s\n\n", run.ID)
	fmt.Fprintf(&sb, "- **Source:** %s\n", run.Source)
	fmt.Fprintf(&sb, "- **Seed:** %d\n", run.Seed)
	fmt.Fprintf(&sb, "- **Status:** %s\n", run.Status)
	fmt.Fprintf(&sb, "- **Turns:** %d of %d\n\n", run.TurnsPlayed, run.Turns)

	summary, err := s.store.Summary(ctx, run.ID)
	if err != nil {
		sb.WriteString("No summary stored; the run has not finished.\n")
	} else {
		sb.WriteString("```\n")
		sb.WriteString(visualization.RenderSummary(*summary))
		sb.WriteString("```\n")
	}
	return markdownResult(uri, sb.String()), nil
}

func markdownResult(uri, text string) *sdk.ReadResourceResult {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: uri, MIMEType: "text/markdown", Text: text},
		},
	}
}

// handleRun implements the crosswalk_run tool.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("crosswalk_run", start, retErr, sanitizeToolParams(map[string]any{
			"scenario": args.Scenario, "turns": args.Turns, "seed": args.Seed,
			"width": args.Width, "height": args.Height, "archive": args.Archive,
			"stop_when_empty": args.StopWhenEmpty, "trajectory_csv": args.TrajectoryCSV,
		}))
	}()

	if err := s.toolLimiters.Check("crosswalk_run"); err != nil {
		return nil, RunOutput{}, err
	}

	settings := *s.cfg
	if args.Width > 0 {
		settings.Grid.Width = args.Width
	}
	if args.Height > 0 {
		settings.Grid.Height = args.Height
	}

	turns := args.Turns
	if turns == 0 {
		turns = settings.Run.Turns
	}
	if turns == 0 {
		turns = constants.DefaultTurns
	}
	settings.Run.Turns = turns

	validate := settings.Validate
	if args.Scenario != "" {
		validate = settings.ValidateRun
	}
	if err := validate(); err != nil {
		return nil, RunOutput{}, fmt.Errorf("invalid run settings: %w", err)
	}

	seed := args.Seed
	if seed == 0 {
		seed = settings.Run.Seed
	}
	if seed == 0 {
		seed = simulation.NewSeed()
	}
	rng := simulation.NewRand(seed)

	scenarioPath := ""
	if args.Scenario != "" {
		p, err := pathutil.Resolve(s.root, args.Scenario)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("scenario: %w", err)
		}
		scenarioPath = p
	}
	records, source, err := scenario.Load(scenarioPath, settings.ScenarioGenerator(), rng)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("failed to load scenario: %w", err)
	}
	if args.Scenario != "" {
		source = args.Scenario
	}

	runner, err := simulation.Build(records, simulation.Config{
		Width:           settings.Grid.Width,
		Height:          settings.Grid.Height,
		Turns:           turns,
		MaxTouristMoves: settings.Run.TouristMaxMoves,
		Rand:            rng,
		Logger:          s.logger,
		Decisions:       s.decisions,
		StopWhenEmpty:   args.StopWhenEmpty || settings.Run.StopWhenEmpty,
		CheckInvariants: settings.Run.CheckInvariants,
	})
	if err != nil {
		return nil, RunOutput{}, err
	}

	output := RunOutput{
		Source: source,
		Seed:   seed,
		Agents: len(records),
	}

	if args.TrajectoryCSV != "" {
		p, err := pathutil.Resolve(s.root, args.TrajectoryCSV)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("trajectory_csv: %w", err)
		}
		csvWriter, err := trajectory.CreateCSV(p)
		if err != nil {
			return nil, RunOutput{}, err
		}
		defer csvWriter.Close()
		runner.Observers = append(runner.Observers, csvWriter)
	}

	if args.Archive {
		recorder, err := store.NewRecorder(ctx, s.store, store.RunMeta{
			Source: source,
			Seed:   seed,
			Width:  settings.Grid.Width,
			Height: settings.Grid.Height,
			Turns:  turns,
			Agents: len(records),
		})
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("failed to archive run: %w", err)
		}
		runner.Observers = append(runner.Observers, recorder)
		output.RunID = recorder.RunID()
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("run stopped after %d turns: %w", result.TurnsPlayed, err)
	}

	output.TurnsPlayed = result.TurnsPlayed
	output.SwapsRequested, output.SwapsAccepted = result.SwapTotals()
	output.Summary = result.Summary
	output.FinalFrame = runner.World.Snapshot().Text()
	output.Message = fmt.Sprintf("Played %d of %d turns; %d agents still walking", result.TurnsPlayed, turns, runner.World.ActiveCount())
	if output.RunID != "" {
		output.Message += fmt.Sprintf(" (archived as %s)", output.RunID)
	}
	return nil, output, nil
}

// handleRuns implements the crosswalk_runs tool.
func (s *Server) handleRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (_ *sdk.CallToolResult, _ RunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("crosswalk_runs", start, retErr, sanitizeToolParams(map[string]any{
			"limit": args.Limit,
		}))
	}()

	if err := s.toolLimiters.Check("crosswalk_runs"); err != nil {
		return nil, RunsOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	items := make([]RunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, RunListItem{
			ID:          r.ID,
			Source:      r.Source,
			Seed:        r.Seed,
			Width:       r.Width,
			Height:      r.Height,
			Turns:       r.Turns,
			TurnsPlayed: r.TurnsPlayed,
			Agents:      r.Agents,
			Status:      string(r.Status),
			StartedAt:   r.StartedAt.Format(time.RFC3339),
		})
	}
	return nil, RunsOutput{Runs: items, Count: len(items)}, nil
}

// handleFrame implements the crosswalk_frame tool.
func (s *Server) handleFrame(ctx context.Context, req *sdk.CallToolRequest, args FrameInput) (_ *sdk.CallToolResult, _ FrameOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("crosswalk_frame", start, retErr, sanitizeToolParams(map[string]any{
			"run_id": args.RunID, "turn": args.Turn,
		}))
	}()

	if err := s.toolLimiters.Check("crosswalk_frame"); err != nil {
		return nil, FrameOutput{}, err
	}

	if args.RunID == "" {
		return nil, FrameOutput{}, fmt.Errorf("'run_id' parameter is required")
	}
	if args.Turn < 0 {
		return nil, FrameOutput{}, fmt.Errorf("turn must be non-negative, got %d", args.Turn)
	}

	run, err := s.store.GetRun(ctx, args.RunID)
	if err != nil {
		return nil, FrameOutput{}, err
	}
	snap, err := s.store.Frame(ctx, run.ID, args.Turn)
	if err != nil {
		return nil, FrameOutput{}, err
	}

	return nil, FrameOutput{
		RunID:  run.ID,
		Turn:   snap.Turn,
		Width:  snap.Width,
		Height: snap.Height,
		Text:   snap.Text(),
	}, nil
}
