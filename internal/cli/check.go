package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/hydra-lens/internal/analyzer"
	"github.com/mvp-joe/hydra-lens/internal/config"
	"github.com/mvp-joe/hydra-lens/internal/diagnostics"
)

var (
	checkQuiet       bool
	checkInterpreter string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Validate configuration files in batch",
	Long: `Validate every matching configuration file under the workspace (or the
given paths) and print the findings. Files are matched against the
paths.configs globs and filtered by paths.ignore.

Exits non-zero when any error-severity finding is produced.

Example:
  hydra-lens check
  hydra-lens check conf/`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "suppress the progress bar")
	checkCmd.Flags().StringVar(&checkInterpreter, "interpreter", "", "override the configured Python interpreter")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkInterpreter != "" {
		cfg.Python.Interpreter = checkInterpreter
	}

	a, err := analyzer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{cfg.Workspace.Root}
	}
	files, err := discoverConfigs(cfg, roots)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No configuration files matched.")
		return nil
	}

	var bar *progressbar.ProgressBar
	if !checkQuiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Checking configs"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}

	ctx := context.Background()
	errorCount := 0
	checkedCount := 0
	var findings []string

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		diags, err := a.Run(ctx, file, string(content))
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", file, err)
		}
		checkedCount++
		for _, d := range diags {
			if d.Severity == diagnostics.SeverityError {
				errorCount++
			}
			findings = append(findings, formatFinding(file, d))
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	for _, line := range findings {
		fmt.Println(line)
	}
	fmt.Printf("Checked %d file(s): %d finding(s), %d error(s)\n", checkedCount, len(findings), errorCount)

	if errorCount > 0 {
		return fmt.Errorf("%d error(s) found", errorCount)
	}
	return nil
}

func formatFinding(file string, d diagnostics.Diagnostic) string {
	return fmt.Sprintf("%s:%d:%d: %s [%s] %s",
		file, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Code, d.Message)
}

// discoverConfigs walks the given roots and returns files matching the
// configured globs, minus the ignored ones. Globs are matched against the
// path relative to the workspace root, with / as separator.
func discoverConfigs(cfg *config.Config, roots []string) ([]string, error) {
	includes, err := compileGlobs(cfg.Paths.Configs)
	if err != nil {
		return nil, fmt.Errorf("invalid paths.configs pattern: %w", err)
	}
	ignores, err := compileGlobs(cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid paths.ignore pattern: %w", err)
	}

	var files []string
	seen := make(map[string]bool)
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(cfg.Workspace.Root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if matchAny(ignores, rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if matchAny(ignores, rel) || !matchAny(includes, rel) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	return files, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
