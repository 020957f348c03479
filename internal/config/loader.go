package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (HYDRALENS_*)
// 2. Config file (.hydra-lens/config.yml or .hydra-lens/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".hydra-lens")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("HYDRALENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("workspace.root")
	v.BindEnv("python.interpreter")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = l.rootDir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("workspace.root", defaults.Workspace.Root)
	v.SetDefault("workspace.search_paths", defaults.Workspace.SearchPaths)
	v.SetDefault("python.interpreter", defaults.Python.Interpreter)
	v.SetDefault("recognition.markers", defaults.Recognition.Markers)
	v.SetDefault("paths.configs", defaults.Paths.Configs)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
}

// LoadFromDir loads configuration rooted at a specific directory.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
