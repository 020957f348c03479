package config

import (
	"fmt"
	"os"
)

// Validate checks a loaded configuration for contradictions that would make
// the pipeline misbehave silently.
func Validate(cfg *Config) error {
	if cfg.Workspace.Root == "" {
		return fmt.Errorf("workspace.root must not be empty")
	}
	if info, err := os.Stat(cfg.Workspace.Root); err != nil || !info.IsDir() {
		return fmt.Errorf("workspace.root %q is not a directory", cfg.Workspace.Root)
	}
	if len(cfg.Recognition.Markers) == 0 {
		return fmt.Errorf("recognition.markers must not be empty")
	}
	if len(cfg.Paths.Configs) == 0 {
		return fmt.Errorf("paths.configs must not be empty")
	}
	return nil
}
