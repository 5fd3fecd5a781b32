// Package registry owns the set of tracked working trees and drives all of
// them from one polling loop.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aki/treesync/internal/core/commitinfo"
	"github.com/aki/treesync/internal/core/logger"
	"github.com/aki/treesync/internal/core/repository"
)

// DefaultInterval is the loop period
const DefaultInterval = 100 * time.Millisecond

// ErrAlreadyRunning is returned by Start while the loop is running
var ErrAlreadyRunning = errors.New("registry already running")

// Factory builds the tree for a configured path
type Factory func(path string, opts repository.Options) *repository.Sync

// NewFactory returns a Factory building trees on git with the given extra
// options
func NewFactory(git repository.Git, extra ...repository.Option) Factory {
	return func(path string, opts repository.Options) *repository.Sync {
		all := append([]repository.Option{repository.WithOptions(opts)}, extra...)
		return repository.New(path, git, all...)
	}
}

type trees map[string]*repository.Sync

// Registry maps configured paths to trees. The map is replaced, never
// mutated, so readers on any goroutine see a consistent snapshot.
type Registry struct {
	id       string
	factory  Factory
	clock    clockwork.Clock
	interval time.Duration
	logger   logger.Logger

	trees       atomic.Pointer[trees]
	options     atomic.Pointer[repository.Options]
	nextPaths   atomic.Pointer[[]string]
	nextOptions atomic.Pointer[repository.Options]

	repaint chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the clock driving the loop
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithInterval overrides DefaultInterval
func WithInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.logger = log
		}
	}
}

// WithOptions sets the toggles new trees start with
func WithOptions(opts repository.Options) Option {
	return func(r *Registry) {
		r.options.Store(&opts)
	}
}

// New creates an empty registry
func New(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		id:       uuid.New().String(),
		factory:  factory,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   logger.Nop(),
		repaint:  make(chan struct{}, 1),
	}
	defaults := repository.DefaultOptions()
	r.options.Store(&defaults)
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("registry", r.id)
	r.trees.Store(&trees{})
	return r
}

// ID identifies this registry instance in logs
func (r *Registry) ID() string {
	return r.id
}

// SetPaths replaces the tracked paths from the next tick. Safe from any
// goroutine; the last call before a tick wins.
func (r *Registry) SetPaths(paths []string) {
	cp := append([]string(nil), paths...)
	r.nextPaths.Store(&cp)
}

// SetOptions replaces the toggles of every tree from the next tick
func (r *Registry) SetOptions(opts repository.Options) {
	r.nextOptions.Store(&opts)
}

// Options returns the toggles currently applied
func (r *Registry) Options() repository.Options {
	return *r.options.Load()
}

// Reconcile builds trees for new paths and disposes trees whose path is no
// longer listed. Paths resolving to a root that is already tracked are
// skipped, and a tree that exists keeps its root over a newly built one. It
// must run on the loop goroutine, or while the loop is stopped.
func (r *Registry) Reconcile(paths []string) {
	current := *r.trees.Load()
	opts := r.Options()

	wanted := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		wanted = append(wanted, p)
	}

	next := make(trees, len(wanted))
	owners := make(map[string]string, len(wanted))
	for _, p := range wanted {
		tree, ok := current[p]
		if !ok {
			continue
		}
		next[p] = tree
		if !tree.Disposed() {
			owners[tree.Root()] = p
		}
	}

	for _, p := range wanted {
		if _, ok := next[p]; ok {
			continue
		}
		tree := r.factory(p, opts)
		if tree.Disposed() {
			r.logger.Warn("path is not a working tree", "path", p)
			next[p] = tree
			continue
		}
		if owner, dup := owners[tree.Root()]; dup {
			tree.Dispose()
			r.logger.Info("path shares a tracked working tree", "path", p, "root", tree.Root(), "trackedAs", owner)
			continue
		}
		owners[tree.Root()] = p
		next[p] = tree
		r.logger.Info("tracking working tree", "path", p, "root", tree.Root())
	}

	for p, tree := range current {
		if next[p] != tree {
			tree.Dispose()
			r.logger.Info("stopped tracking working tree", "path", p)
		}
	}

	r.trees.Store(&next)
}

// Tick applies pending configuration, then updates every live tree. A
// failing or panicking tree does not affect the others. It reports whether
// any tree changed and signals Repaint if so.
func (r *Registry) Tick() bool {
	if opts := r.nextOptions.Swap(nil); opts != nil {
		r.options.Store(opts)
		for _, tree := range r.Trees() {
			tree.SetOptions(*opts)
		}
	}
	if paths := r.nextPaths.Swap(nil); paths != nil {
		r.Reconcile(*paths)
	}

	changed := false
	for _, tree := range r.Trees() {
		if tree.Disposed() {
			continue
		}
		if r.update(tree) {
			changed = true
		}
	}

	if changed {
		r.signalRepaint()
	}
	return changed
}

func (r *Registry) update(tree *repository.Sync) (changed bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("working tree update panicked", "root", tree.Root(), "panic", fmt.Sprint(p))
			changed = false
		}
	}()

	changed, err := tree.Update()
	if err != nil && !errors.Is(err, repository.ErrDisposed) {
		r.logger.Warn("working tree update failed", "root", tree.Root(), "error", err)
	}
	return changed
}

func (r *Registry) signalRepaint() {
	select {
	case r.repaint <- struct{}{}:
	default:
	}
}

// Repaint delivers one value per burst of changes. Consumers re-query
// whatever they display.
func (r *Registry) Repaint() <-chan struct{} {
	return r.repaint
}

// Refresh forces a full rescan of every tree
func (r *Registry) Refresh() {
	for _, tree := range r.Trees() {
		tree.Refresh()
	}
}

// OnFocusChanged schedules a commit id check on every tree
func (r *Registry) OnFocusChanged() {
	for _, tree := range r.Trees() {
		tree.CheckCommit()
	}
}

// Trees returns every tracked tree, disposed ones included, ordered by path
func (r *Registry) Trees() []*repository.Sync {
	current := *r.trees.Load()
	out := make([]*repository.Sync, 0, len(current))
	for _, tree := range current {
		out = append(out, tree)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path() < out[j].Path()
	})
	return out
}

// Lookup returns the live tree with the deepest root containing path
func (r *Registry) Lookup(path string) (*repository.Sync, bool) {
	path = filepath.Clean(path)
	var best *repository.Sync
	for _, tree := range *r.trees.Load() {
		if tree.Disposed() || !within(tree.Root(), path) {
			continue
		}
		if best == nil || len(tree.Root()) > len(best.Root()) {
			best = tree
		}
	}
	return best, best != nil
}

// IsDirty reports whether path is dirty in the tree containing it
func (r *Registry) IsDirty(path string) bool {
	tree, ok := r.Lookup(path)
	return ok && tree.IsDirty(path)
}

// GetOrQuery returns commit metadata for path from the tree containing it
func (r *Registry) GetOrQuery(path string) commitinfo.Info {
	tree, ok := r.Lookup(path)
	if !ok {
		return commitinfo.Info{}
	}
	return tree.GetOrQuery(path)
}

// Settled reports whether every tree has finished its pending work
func (r *Registry) Settled() bool {
	if r.nextPaths.Load() != nil || r.nextOptions.Load() != nil {
		return false
	}
	for _, tree := range r.Trees() {
		if !tree.Settled() {
			return false
		}
	}
	return true
}

// Start runs the loop on a new goroutine until ctx is done or Stop is called
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go r.run(ctx, done)
	r.logger.Debug("registry loop started", "interval", r.interval)
	return nil
}

// Stop ends the loop, waits for the current tick and flushes every tree
func (r *Registry) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Debug("registry loop stopped")
}

func (r *Registry) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for _, tree := range r.Trees() {
				tree.Flush()
			}
			return
		case <-ticker.Chan():
			r.Tick()
		}
	}
}

// Close stops the loop and disposes every tree
func (r *Registry) Close() {
	r.Stop()
	r.Reconcile(nil)
}

func within(root, path string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
