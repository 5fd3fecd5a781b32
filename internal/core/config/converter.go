package config

import (
	"github.com/aki/treesync/internal/core/repository"
)

// SyncOptions returns the per-tree toggles described by the configuration
func (c *Config) SyncOptions() repository.Options {
	return repository.Options{
		MarkDirtyFiles: c.MarkDirtyFiles,
		ShowLastCommit: c.ShowLastCommit,
		ShowBranchInfo: c.ShowBranchInfo,
	}
}
