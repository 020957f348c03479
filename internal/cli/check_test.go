package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/hydra-lens/internal/config"
	"github.com/mvp-joe/hydra-lens/internal/diagnostics"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x: 1\n"), 0o644))
	}
}

func TestDiscoverConfigs(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	writeTree(t, ws,
		"conf/train.yaml",
		"conf/nested/eval.yml",
		"top.yaml",
		"readme.md",
		".git/config.yaml",
		"venv/lib/site.yaml",
	)

	cfg := config.Default()
	cfg.Workspace.Root = ws

	files, err := discoverConfigs(cfg, []string{ws})
	require.NoError(t, err)

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(ws, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.ElementsMatch(t, []string{"conf/train.yaml", "conf/nested/eval.yml", "top.yaml"}, rel)

	t.Run("subtree root", func(t *testing.T) {
		files, err := discoverConfigs(cfg, []string{filepath.Join(ws, "conf")})
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("duplicate roots are deduplicated", func(t *testing.T) {
		files, err := discoverConfigs(cfg, []string{ws, filepath.Join(ws, "conf")})
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		bad := config.Default()
		bad.Workspace.Root = ws
		bad.Paths.Configs = []string{"[unclosed"}
		_, err := discoverConfigs(bad, []string{ws})
		assert.Error(t, err)
	})
}

func TestFormatFinding(t *testing.T) {
	t.Parallel()

	d := diagnostics.Diagnostic{
		Severity: diagnostics.SeverityError,
		Code:     diagnostics.CodeModuleNotFound,
		Range:    target.Range{Start: target.Position{Line: 4, Character: 2}},
		Message:  `cannot resolve module "absent"`,
	}
	out := formatFinding("conf/train.yaml", d)
	assert.Equal(t, `conf/train.yaml:5:3: error [module-not-found] cannot resolve module "absent"`, out)
}
