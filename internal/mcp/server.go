package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/hydra-lens/internal/analyzer"
	"github.com/mvp-joe/hydra-lens/internal/config"
	"github.com/mvp-joe/hydra-lens/internal/watcher"
)

// ServerName and ServerVersion identify the tool to MCP clients.
const (
	ServerName    = "hydra-lens"
	ServerVersion = "1.0.0"
)

// Server manages the MCP server lifecycle: the analysis pipeline, the source
// watcher that keeps its caches honest, and the stdio transport.
type Server struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	watcher  *watcher.Watcher
	mcp      *server.MCPServer
}

// NewServer wires the pipeline and registers all tools.
func NewServer(cfg *config.Config) (*Server, error) {
	a, err := analyzer.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	dirs := append([]string{cfg.Workspace.Root}, cfg.Workspace.SearchPaths...)
	w, err := watcher.New(dirs)
	if err != nil {
		return nil, fmt.Errorf("failed to create source watcher: %w", err)
	}
	w.Subscribe(func(changes []watcher.Change) {
		for _, c := range changes {
			a.FileChanged(c.Path, c.ExistenceChanged)
		}
	})

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)
	AddValidateTool(mcpServer, a)
	AddTargetsTool(mcpServer, a)
	AddHoverTool(mcpServer, a)
	AddDefinitionTool(mcpServer, a)
	AddSetInterpreterTool(mcpServer, a)

	return &Server{
		cfg:      cfg,
		analyzer: a,
		watcher:  w,
		mcp:      mcpServer,
	}, nil
}

// Analyzer exposes the underlying pipeline, used by the CLI for batch checks
// that share a server's configuration.
func (s *Server) Analyzer() *analyzer.Analyzer { return s.analyzer }

// Serve starts the source watcher and the stdio transport, blocking until a
// shutdown signal or a transport error.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.watcher.Start(ctx)
	defer s.watcher.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting MCP server on stdio (workspace %s)", s.cfg.Workspace.Root)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("received shutdown signal, stopping")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Close releases the watcher. Safe to call after Serve returns.
func (s *Server) Close() error {
	return s.watcher.Stop()
}
