package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/hydra-lens/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Start the Model Context Protocol (MCP) server that exposes
configuration analysis to editors and coding assistants.

The server:
- Validates _target_ references on demand (hydra_validate)
- Lists targets, serves hover and definition lookups
- Swaps the resolution interpreter at runtime (hydra_set_interpreter)
- Watches Python sources and invalidates cached analysis on change

Example:
  hydra-lens serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "hydra-lens MCP server\n")
	fmt.Fprintf(os.Stderr, "Workspace: %s\n", cfg.Workspace.Root)
	if cfg.Python.Interpreter != "" {
		fmt.Fprintf(os.Stderr, "Interpreter: %s\n", cfg.Python.Interpreter)
	}
	fmt.Fprintf(os.Stderr, "\n")

	srv, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()
	srv.Analyzer().SetVerbose(verbose)

	if err := srv.Serve(context.Background()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
