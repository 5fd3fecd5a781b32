// Package dirty turns `git status --porcelain` output into the set of dirty
// paths of one working tree, ancestors included, and publishes it as an
// immutable snapshot that readers on other goroutines can query.
package dirty

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aki/treesync/internal/core/logger"
)

// DefaultSidecarSuffix marks per-asset metadata files whose status is also
// reported for the asset itself.
const DefaultSidecarSuffix = ".meta"

// Tracker owns the published dirty set of one working tree. Update must only
// be called from a single goroutine; IsDirty and Snapshot are safe anywhere.
type Tracker struct {
	root    string
	sidecar string
	logger  logger.Logger
	current atomic.Pointer[Set]
}

// Option configures a Tracker
type Option func(*Tracker)

// WithSidecarSuffix overrides DefaultSidecarSuffix. An empty suffix disables
// the sidecar lookup.
func WithSidecarSuffix(suffix string) Option {
	return func(t *Tracker) {
		t.sidecar = suffix
	}
}

// WithLogger sets the logger used for skipped paths
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.logger = log
		}
	}
}

// NewTracker creates a tracker anchored at root, an absolute directory
func NewTracker(root string, opts ...Option) *Tracker {
	t := &Tracker{
		root:    filepath.Clean(root),
		sidecar: DefaultSidecarSuffix,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.current.Store(newSet(nil, nil))
	return t
}

// Root returns the directory paths are anchored at
func (t *Tracker) Root() string {
	return t.root
}

// Update rebuilds the dirty set from status output and publishes it if it
// differs from the current one. It reports whether anything changed.
func (t *Tracker) Update(status string) bool {
	paths := make(map[string]struct{})
	var files []string

	for _, rel := range ParseStatus(status) {
		abs, err := t.resolve(rel)
		if err != nil {
			t.logger.Warn("skipping status path", "path", rel, "error", err)
			continue
		}
		files = append(files, abs)

		for p := abs; ; p = filepath.Dir(p) {
			if _, seen := paths[p]; seen {
				break
			}
			paths[p] = struct{}{}
			if p == t.root {
				break
			}
		}
	}
	if len(paths) > 0 {
		paths[t.root] = struct{}{}
	}

	next := newSet(paths, files)
	if next.Equal(t.current.Load()) {
		return false
	}
	t.current.Store(next)
	t.logger.Debug("dirty set changed", "paths", next.Len(), "files", len(files))
	return true
}

// IsDirty reports whether path, or its sidecar, is in the current set
func (t *Tracker) IsDirty(path string) bool {
	set := t.current.Load()
	path = filepath.Clean(path)
	if set.Contains(path) {
		return true
	}
	return t.sidecar != "" && set.Contains(path+t.sidecar)
}

// Snapshot returns the currently published set
func (t *Tracker) Snapshot() *Set {
	return t.current.Load()
}

// Reset publishes an empty set and reports whether that was a change
func (t *Tracker) Reset() bool {
	return t.Update("")
}

func (t *Tracker) resolve(rel string) (string, error) {
	abs := filepath.Join(t.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(t.root, abs)
	if err != nil {
		return "", fmt.Errorf("failed to relate to %s: %w", t.root, err)
	}
	if inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes %s", t.root)
	}
	return abs, nil
}
