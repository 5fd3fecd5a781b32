package commitinfo

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aki/treesync/internal/core/logger"
)

// DefaultDebounce is the minimum time between two cache file writes
const DefaultDebounce = time.Second

// Querier answers single-file last-commit lookups with a CommitFormat line
type Querier interface {
	LastCommit(dir, path string) string
}

// snapshot is never mutated once published
type snapshot struct {
	commitID string
	entries  map[string]Info
}

// Cache is the cache-aside commit metadata store of one working tree.
//
// GetOrQuery, Snapshot and Pending may be called from any goroutine. Tick,
// Reset and Flush belong to the single goroutine driving the tree.
type Cache struct {
	root     string
	querier  Querier
	store    Store
	clock    clockwork.Clock
	debounce time.Duration
	logger   logger.Logger

	resolved atomic.Pointer[snapshot]

	mu      sync.Mutex
	pending []string // front of the queue is the last element

	loaded  bool
	unsaved bool
	// dirtySince is when unsaved last became true
	dirtySince time.Time
	lastWrite  time.Time
}

// Option configures a Cache
type Option func(*Cache)

// WithStore enables persistence
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithClock sets the clock used for the write debounce
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) Option {
	return func(c *Cache) {
		c.debounce = d
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.logger = log
		}
	}
}

// New creates an empty cache for the tree at root
func New(root string, querier Querier, opts ...Option) *Cache {
	c := &Cache{
		root:     filepath.Clean(root),
		querier:  querier,
		clock:    clockwork.NewRealClock(),
		debounce: DefaultDebounce,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastWrite = c.clock.Now()
	c.resolved.Store(&snapshot{entries: map[string]Info{}})
	return c
}

// GetOrQuery returns the resolved entry for path. On a miss the path is
// moved to the front of the pending queue and the unavailable placeholder is
// returned. Paths outside the tree are never queued.
func (c *Cache) GetOrQuery(path string) Info {
	path = filepath.Clean(path)
	if !c.inTree(path) {
		return Info{}
	}

	if info, ok := c.resolved.Load().entries[path]; ok {
		return info
	}

	c.enqueue(path)
	return Info{}
}

// Cached returns the resolved entry for path without queueing a lookup
func (c *Cache) Cached(path string) (Info, bool) {
	info, ok := c.resolved.Load().entries[filepath.Clean(path)]
	return info, ok
}

// Tick advances the cache by one step against the tree's current commit id
// and reports whether any entry visible to callers changed.
func (c *Cache) Tick(commitID string) bool {
	changed := false

	if snap := c.resolved.Load(); snap.commitID != commitID {
		changed = len(snap.entries) > 0
		c.resolved.Store(&snapshot{commitID: commitID, entries: map[string]Info{}})
		c.unsaved = false
		c.logger.Debug("commit changed, cache cleared", "from", snap.commitID, "to", commitID)
	}

	if !c.loaded && commitID != "" {
		c.loaded = true
		if c.load(commitID) {
			changed = true
		}
	}

	if path, ok := c.next(); ok {
		info := ParseCommitLine(c.querier.LastCommit(c.root, path))
		if c.put(path, info) {
			if !c.unsaved {
				c.dirtySince = c.clock.Now()
			}
			c.unsaved = true
			changed = true
		}
	}

	c.persist(commitID, false)
	return changed
}

// Reset drops every resolved entry and the pending queue, keeping the
// commit tag
func (c *Cache) Reset() {
	snap := c.resolved.Load()
	c.resolved.Store(&snapshot{commitID: snap.commitID, entries: map[string]Info{}})

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Flush writes unsaved entries immediately, ignoring the debounce
func (c *Cache) Flush() {
	c.persist(c.resolved.Load().commitID, true)
}

// Snapshot returns the commit id the entries were computed against and a
// copy of the resolved entries
func (c *Cache) Snapshot() (string, map[string]Info) {
	snap := c.resolved.Load()
	out := make(map[string]Info, len(snap.entries))
	for p, info := range snap.entries {
		out[p] = info
	}
	return snap.commitID, out
}

// Pending returns the number of queued paths
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Cache) inTree(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Cache) enqueue(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.pending {
		if p == path {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.pending = append(c.pending, path)
}

// next pops queued paths until one has no resolved entry. Paths queued
// before a load may already be answered by it.
func (c *Cache) next() (string, bool) {
	entries := c.resolved.Load().entries
	for {
		path, ok := c.pop()
		if !ok {
			return "", false
		}
		if _, hit := entries[path]; !hit {
			return path, true
		}
	}
}

func (c *Cache) pop() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.pending)
	if n == 0 {
		return "", false
	}
	path := c.pending[n-1]
	c.pending = c.pending[:n-1]
	return path, true
}

// put publishes a new snapshot holding info for path and reports whether the
// value callers see for path changed
func (c *Cache) put(path string, info Info) bool {
	snap := c.resolved.Load()
	prev, ok := snap.entries[path]

	entries := make(map[string]Info, len(snap.entries)+1)
	for p, v := range snap.entries {
		entries[p] = v
	}
	entries[path] = info
	c.resolved.Store(&snapshot{commitID: snap.commitID, entries: entries})

	if !ok {
		return info.Available
	}
	return !prev.Equal(info)
}

func (c *Cache) load(commitID string) bool {
	if c.store == nil {
		return false
	}

	entries, err := c.store.Load(commitID)
	if err != nil {
		if errors.Is(err, ErrCommitMismatch) {
			c.logger.Debug("persisted cache is for another commit", "error", err)
		} else {
			c.logger.Warn("failed to load commit cache", "error", err)
		}
		return false
	}
	if len(entries) == 0 {
		return false
	}

	snap := c.resolved.Load()
	merged := make(map[string]Info, len(entries)+len(snap.entries))
	for p, info := range entries {
		merged[p] = info
	}
	for p, info := range snap.entries {
		merged[p] = info
	}
	c.resolved.Store(&snapshot{commitID: commitID, entries: merged})
	c.logger.Debug("loaded commit cache", "entries", len(entries))
	return true
}

func (c *Cache) persist(commitID string, force bool) {
	if c.store == nil || !c.unsaved || commitID == "" {
		return
	}

	now := c.clock.Now()
	if !force && !c.due(now) {
		return
	}

	snap := c.resolved.Load()
	if err := c.store.Save(snap.commitID, snap.entries); err != nil {
		c.logger.Warn("failed to save commit cache", "error", err)
	} else {
		c.unsaved = false
	}
	c.lastWrite = now
}

// due reports whether the debounce window has passed both since the first
// unsaved change and since the last write. A clock that moved backwards
// makes a write due.
func (c *Cache) due(now time.Time) bool {
	sinceWrite := now.Sub(c.lastWrite)
	sinceDirty := now.Sub(c.dirtySince)
	if sinceWrite < 0 || sinceDirty < 0 {
		return true
	}
	return sinceWrite > c.debounce && sinceDirty > c.debounce
}
