// Package cli implements the hydra-lens command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/hydra-lens/internal/config"
)

var (
	workspaceFlag string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hydra-lens",
	Short: "Language intelligence for Hydra-style YAML configurations",
	Long: `hydra-lens validates the _target_ references of Hydra-style YAML
configurations against the Python code they point at. It resolves dotted
module paths across the workspace and the configured interpreter's search
path, extracts signatures from the resolved sources, and reports targets
that would fail to instantiate.

Run 'hydra-lens serve' to expose the analysis as MCP tools, or
'hydra-lens check' for a one-shot batch validation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the workspace root and loads layered configuration:
// defaults, then .hydra-lens/config.yml, then HYDRALENS_* environment
// variables.
func loadConfig() (*config.Config, error) {
	root := workspaceFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}
	cfg, err := config.LoadFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
