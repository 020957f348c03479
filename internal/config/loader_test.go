package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Workspace.Root)
	assert.Empty(t, cfg.Workspace.SearchPaths)
	assert.Empty(t, cfg.Python.Interpreter)
	assert.Equal(t, []string{"# @hydra", "# hydra:"}, cfg.Recognition.Markers)
	assert.Contains(t, cfg.Paths.Configs, "**/*.yaml")
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".hydra-lens")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `workspace:
  search_paths:
    - /opt/site-packages
python:
  interpreter: /usr/bin/python3
recognition:
  markers:
    - "# lens:"
paths:
  configs:
    - "conf/**/*.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Workspace.Root)
	assert.Equal(t, []string{"/opt/site-packages"}, cfg.Workspace.SearchPaths)
	assert.Equal(t, "/usr/bin/python3", cfg.Python.Interpreter)
	assert.Equal(t, []string{"# lens:"}, cfg.Recognition.Markers)
	assert.Equal(t, []string{"conf/**/*.yaml"}, cfg.Paths.Configs)
	// Unset sections keep their defaults.
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HYDRALENS_PYTHON_INTERPRETER", "/opt/venv/bin/python")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "/opt/venv/bin/python", cfg.Python.Interpreter)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()
	valid.Workspace.Root = t.TempDir()
	assert.NoError(t, Validate(valid))

	t.Run("empty root", func(t *testing.T) {
		cfg := Default()
		assert.Error(t, Validate(cfg))
	})

	t.Run("root is not a directory", func(t *testing.T) {
		cfg := Default()
		cfg.Workspace.Root = filepath.Join(t.TempDir(), "absent")
		assert.Error(t, Validate(cfg))
	})

	t.Run("no markers", func(t *testing.T) {
		cfg := Default()
		cfg.Workspace.Root = t.TempDir()
		cfg.Recognition.Markers = nil
		assert.Error(t, Validate(cfg))
	})

	t.Run("no config globs", func(t *testing.T) {
		cfg := Default()
		cfg.Workspace.Root = t.TempDir()
		cfg.Paths.Configs = nil
		assert.Error(t, Validate(cfg))
	})
}
