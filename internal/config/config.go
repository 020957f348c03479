package config

// Config is the complete hydra-lens configuration.
// It can be loaded from .hydra-lens/config.yml with environment variable
// overrides.
type Config struct {
	Workspace   WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Python      PythonConfig      `yaml:"python" mapstructure:"python"`
	Recognition RecognitionConfig `yaml:"recognition" mapstructure:"recognition"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
}

// WorkspaceConfig locates the workspace and extra module search layers.
type WorkspaceConfig struct {
	Root        string   `yaml:"root" mapstructure:"root"`                 // workspace root; defaults to the loader's root dir
	SearchPaths []string `yaml:"search_paths" mapstructure:"search_paths"` // extra directories searched after the workspace
}

// PythonConfig identifies the external interpreter whose sys.path extends
// module resolution. Empty means workspace-only resolution.
type PythonConfig struct {
	Interpreter string `yaml:"interpreter" mapstructure:"interpreter"`
}

// RecognitionConfig controls how configuration documents are recognized as
// in-dialect.
type RecognitionConfig struct {
	Markers []string `yaml:"markers" mapstructure:"markers"` // comment prefixes checked near the top of a document
}

// PathsConfig defines which files the batch checker visits.
type PathsConfig struct {
	Configs []string `yaml:"configs" mapstructure:"configs"` // glob patterns for configuration files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Recognition: RecognitionConfig{
			Markers: []string{"# @hydra", "# hydra:"},
		},
		Paths: PathsConfig{
			Configs: []string{
				"*.yaml",
				"*.yml",
				"**/*.yaml",
				"**/*.yml",
			},
			Ignore: []string{
				".git/**",
				"node_modules/**",
				"venv/**",
				".venv/**",
				"__pycache__/**",
			},
		},
	}
}
