package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the treesync configuration file
type Config struct {
	// Repositories are the working tree paths to track. An empty list means
	// the trees are discovered from the working directory.
	Repositories []string `yaml:"repositories" toml:"repositories"`

	MarkDirtyFiles bool `yaml:"markDirtyFiles" toml:"markDirtyFiles"`
	ShowLastCommit bool `yaml:"showLastCommit" toml:"showLastCommit"`
	ShowBranchInfo bool `yaml:"showBranchInfo" toml:"showBranchInfo"`

	// SidecarSuffix marks metadata files whose status is shown on their
	// asset. Empty disables the lookup.
	SidecarSuffix string `yaml:"sidecarSuffix" toml:"sidecarSuffix"`

	CacheDir        string        `yaml:"cacheDir,omitempty" toml:"cacheDir,omitempty"`
	GitPath         string        `yaml:"gitPath" toml:"gitPath"`
	TickInterval    time.Duration `yaml:"tickInterval" toml:"tickInterval"`
	PersistDebounce time.Duration `yaml:"persistDebounce" toml:"persistDebounce"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Repositories:    []string{},
		MarkDirtyFiles:  true,
		ShowLastCommit:  true,
		ShowBranchInfo:  false,
		SidecarSuffix:   ".meta",
		GitPath:         "git",
		TickInterval:    100 * time.Millisecond,
		PersistDebounce: time.Second,
	}
}

// ResolvedCacheDir returns CacheDir, or the per-user cache location
func (c *Config) ResolvedCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// AddRepository appends path unless it is already tracked. It reports
// whether the list changed.
func (c *Config) AddRepository(path string) bool {
	path = filepath.Clean(path)
	for _, p := range c.Repositories {
		if filepath.Clean(p) == path {
			return false
		}
	}
	c.Repositories = append(c.Repositories, path)
	return true
}

// RemoveRepository drops path from the list and reports whether it was there
func (c *Config) RemoveRepository(path string) bool {
	path = filepath.Clean(path)
	kept := c.Repositories[:0]
	removed := false
	for _, p := range c.Repositories {
		if filepath.Clean(p) == path {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	c.Repositories = kept
	return removed
}
