package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/logging"
	"github.com/nvandessel/crosswalk/internal/ratelimit"
	"github.com/nvandessel/crosswalk/internal/store"
)

// Server wraps the MCP SDK server and provides crosswalk-specific functionality.
type Server struct {
	server       *sdk.Server
	store        store.RunStore
	root         string
	cfg          *config.CrosswalkConfig
	logger       *slog.Logger
	decisions    *logging.DecisionLogger
	toolLimiters ratelimit.Tools
	auditLogger  *AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "crosswalk")
	Version string // Server version
	Root    string // Project root directory

	// Settings supplies run defaults. Nil loads ~/.crosswalk/config.yaml.
	Settings *config.CrosswalkConfig
}

// NewServer creates a new MCP server with crosswalk tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		settings = loaded
	}

	runStore, err := store.NewSQLiteRunStore(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server: mcpServer,
		store:  runStore,
		root:   cfg.Root,
		cfg:    settings,
		// stdout carries the protocol, so logs go to stderr
		logger:       logging.NewLogger(settings.Logging.Level, os.Stderr),
		decisions:    logging.NewDecisionLogger(store.LocalDir(cfg.Root), settings.Logging.Level),
		toolLimiters: ratelimit.DefaultTools(),
		auditLogger:  NewAuditLogger(cfg.Root),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.Close()
	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.decisions.Close()
	if err := s.auditLogger.Close(); err != nil {
		s.logger.Warn("closing audit log", "error", err)
	}
	return s.store.Close()
}
