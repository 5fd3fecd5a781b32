package config

import (
	"fmt"
	"path/filepath"
)

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive, got %s", c.TickInterval)
	}
	if c.PersistDebounce <= 0 {
		return fmt.Errorf("persistDebounce must be positive, got %s", c.PersistDebounce)
	}

	for i, repo := range c.Repositories {
		if err := ValidateRepository(repo); err != nil {
			return fmt.Errorf("invalid repository %d: %w", i, err)
		}
	}

	return nil
}

// ValidateRepository checks a single tracked path
func ValidateRepository(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path %q is not absolute", path)
	}
	return nil
}
