package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/crosswalk/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server over stdio.

Tools:
  crosswalk_run    Run a simulation and return its statistics
  crosswalk_runs   List archived runs
  crosswalk_frame  Get the grid of one turn of an archived run

Resources:
  crosswalk://runs/latest  Statistics of the latest archived run
  crosswalk://runs/{id}    Statistics of a run by ID or prefix`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "crosswalk",
				Version: version,
				Root:    root,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}
			return server.Run(context.Background())
		},
	}
}
