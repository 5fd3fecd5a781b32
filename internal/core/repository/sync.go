// Package repository drives the state of a single tracked working tree:
// which commit it is on, which branch, which files are dirty, and which
// commit last touched each file.
package repository

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aki/treesync/internal/core/commitinfo"
	"github.com/aki/treesync/internal/core/dirty"
	"github.com/aki/treesync/internal/core/logger"
)

// ErrDisposed is returned by Update once the tree has been disposed
var ErrDisposed = errors.New("working tree disposed")

// Git is the subset of git queries a tree needs
type Git interface {
	Toplevel(dir string) string
	ShortCommitID(dir string) string
	Status(dir string) string
	LastCommit(dir, path string) string
	BranchLabel(dir string) string
}

// Options are the feature toggles applied on every tick
type Options struct {
	MarkDirtyFiles bool
	ShowLastCommit bool
	ShowBranchInfo bool
}

// DefaultOptions enables dirty marking and commit lookups
func DefaultOptions() Options {
	return Options{
		MarkDirtyFiles: true,
		ShowLastCommit: true,
	}
}

// Flags is a point-in-time view of the pending work of a tree
type Flags struct {
	CommitID   bool
	DirtyScan  bool
	BranchInfo bool
}

// Sync owns the state of one working tree. Update must be called from a
// single goroutine; every other method is safe from any goroutine.
type Sync struct {
	path   string
	root   string
	git    Git
	logger logger.Logger

	tracker *dirty.Tracker
	cache   *commitinfo.Cache

	disposed        atomic.Bool
	needsCommitID   atomic.Bool
	needsDirtyScan  atomic.Bool
	needsBranchInfo atomic.Bool
	resetRequested  atomic.Bool

	options  atomic.Pointer[Options]
	commitID atomic.Pointer[string]
	branch   atomic.Pointer[string]
}

type settings struct {
	logger   logger.Logger
	store    commitinfo.Store
	stores   commitinfo.StoreFactory
	clock    clockwork.Clock
	debounce time.Duration
	sidecar  *string
	options  Options
}

// Option configures a Sync
type Option func(*settings)

// WithLogger sets the logger, scoped by root on construction
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore persists commit metadata
func WithStore(store commitinfo.Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithStoreFactory opens the metadata store once the toplevel is known.
// WithStore takes precedence.
func WithStoreFactory(factory commitinfo.StoreFactory) Option {
	return func(s *settings) {
		s.stores = factory
	}
}

// WithClock sets the clock for the persistence debounce
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithDebounce sets the minimum interval between cache writes
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		s.debounce = d
	}
}

// WithSidecarSuffix sets the sidecar suffix used by IsDirty
func WithSidecarSuffix(suffix string) Option {
	return func(s *settings) {
		s.sidecar = &suffix
	}
}

// WithOptions sets the initial toggles
func WithOptions(opts Options) Option {
	return func(s *settings) {
		s.options = opts
	}
}

// New resolves the toplevel of path and prepares a tree with every flag
// set. When path is not inside a working tree the result is disposed.
func New(path string, git Git, opts ...Option) *Sync {
	cfg := settings{
		logger:   logger.Nop(),
		clock:    clockwork.NewRealClock(),
		debounce: commitinfo.DefaultDebounce,
		options:  DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Sync{
		path:   filepath.Clean(path),
		git:    git,
		logger: cfg.logger.With("path", path),
	}
	s.options.Store(&cfg.options)
	empty := ""
	s.commitID.Store(&empty)
	s.branch.Store(&empty)

	s.root = git.Toplevel(path)
	if s.root == "" {
		s.logger.Warn("not a git working tree, disposing")
		s.disposed.Store(true)
		return s
	}
	s.logger = cfg.logger.With("root", s.root)

	trackerOpts := []dirty.Option{dirty.WithLogger(s.logger)}
	if cfg.sidecar != nil {
		trackerOpts = append(trackerOpts, dirty.WithSidecarSuffix(*cfg.sidecar))
	}
	s.tracker = dirty.NewTracker(s.root, trackerOpts...)

	cacheOpts := []commitinfo.Option{
		commitinfo.WithLogger(s.logger),
		commitinfo.WithClock(cfg.clock),
		commitinfo.WithDebounce(cfg.debounce),
	}
	store := cfg.store
	if store == nil && cfg.stores != nil {
		var err error
		if store, err = cfg.stores(s.root); err != nil {
			s.logger.Warn("commit cache will not persist", "error", err)
			store = nil
		}
	}
	if store != nil {
		cacheOpts = append(cacheOpts, commitinfo.WithStore(store))
	}
	s.cache = commitinfo.New(s.root, git, cacheOpts...)

	s.needsCommitID.Store(true)
	s.needsDirtyScan.Store(true)
	s.needsBranchInfo.Store(true)
	return s
}

// Update runs the pending work in order: commit id, dirty scan, branch
// info, then one commit metadata step. It reports whether anything a
// reader can observe changed.
func (s *Sync) Update() (bool, error) {
	if s.disposed.Load() {
		return false, ErrDisposed
	}

	opts := s.Options()
	changed := false

	if s.resetRequested.Swap(false) {
		s.cache.Reset()
		changed = true
	}

	if s.needsCommitID.Swap(false) {
		if s.updateCommitID() {
			changed = true
		}
	}

	if opts.MarkDirtyFiles && s.needsDirtyScan.Swap(false) {
		if s.tracker.Update(s.git.Status(s.root)) {
			changed = true
		}
	}

	if opts.ShowBranchInfo && s.needsBranchInfo.Swap(false) {
		if s.updateBranch() {
			changed = true
		}
	}

	if opts.ShowLastCommit {
		if s.cache.Tick(s.CommitID()) {
			changed = true
		}
	}

	return changed, nil
}

func (s *Sync) updateCommitID() bool {
	id := s.git.ShortCommitID(s.root)
	if id == s.CommitID() {
		return false
	}

	s.logger.Debug("commit changed", "from", s.CommitID(), "to", id)
	s.commitID.Store(&id)
	s.needsDirtyScan.Store(true)
	return true
}

func (s *Sync) updateBranch() bool {
	label := s.git.BranchLabel(s.root)
	if label == s.BranchLabel() {
		return false
	}

	s.logger.Debug("branch changed", "from", s.BranchLabel(), "to", label)
	s.branch.Store(&label)
	s.needsDirtyScan.Store(true)
	return true
}

// Refresh sets every flag and clears the in-memory commit metadata on the
// next Update
func (s *Sync) Refresh() {
	if s.disposed.Load() {
		return
	}
	s.resetRequested.Store(true)
	s.needsCommitID.Store(true)
	s.needsDirtyScan.Store(true)
	s.needsBranchInfo.Store(true)
}

// CheckCommit schedules a commit id check
func (s *Sync) CheckCommit() {
	if !s.disposed.Load() {
		s.needsCommitID.Store(true)
	}
}

// Dispose stops all further work and flushes unsaved commit metadata. It
// must be called from the goroutine calling Update.
func (s *Sync) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	if s.cache != nil {
		s.cache.Flush()
	}
	s.logger.Debug("working tree disposed")
}

// Flush writes unsaved commit metadata. It must be called from the
// goroutine calling Update.
func (s *Sync) Flush() {
	if s.cache != nil && !s.disposed.Load() {
		s.cache.Flush()
	}
}

// SetOptions replaces the toggles used from the next Update
func (s *Sync) SetOptions(opts Options) {
	s.options.Store(&opts)
}

// Options returns the current toggles
func (s *Sync) Options() Options {
	return *s.options.Load()
}

// IsDirty reports whether path, or its sidecar, has uncommitted changes
func (s *Sync) IsDirty(path string) bool {
	if s.tracker == nil {
		return false
	}
	return s.tracker.IsDirty(path)
}

// GetOrQuery returns the last commit touching path, queueing a lookup on a
// miss. While lookups are disabled only already resolved entries are
// returned and nothing is queued.
func (s *Sync) GetOrQuery(path string) commitinfo.Info {
	if s.cache == nil || s.disposed.Load() {
		return commitinfo.Info{}
	}
	if !s.Options().ShowLastCommit {
		info, _ := s.cache.Cached(path)
		return info
	}
	return s.cache.GetOrQuery(path)
}

// DirtySet returns the published dirty set
func (s *Sync) DirtySet() *dirty.Set {
	if s.tracker == nil {
		return nil
	}
	return s.tracker.Snapshot()
}

// CommitCache returns the commit id and resolved entries of the metadata
// cache
func (s *Sync) CommitCache() (string, map[string]commitinfo.Info) {
	if s.cache == nil {
		return "", map[string]commitinfo.Info{}
	}
	return s.cache.Snapshot()
}

// Pending returns the outstanding flags
func (s *Sync) Pending() Flags {
	return Flags{
		CommitID:   s.needsCommitID.Load(),
		DirtyScan:  s.needsDirtyScan.Load(),
		BranchInfo: s.needsBranchInfo.Load(),
	}
}

// Settled reports whether no flag is pending for an enabled feature and no
// commit lookup is queued
func (s *Sync) Settled() bool {
	if s.disposed.Load() {
		return true
	}
	opts := s.Options()
	f := s.Pending()
	if f.CommitID || (opts.MarkDirtyFiles && f.DirtyScan) || (opts.ShowBranchInfo && f.BranchInfo) {
		return false
	}
	if s.resetRequested.Load() {
		return false
	}
	return !opts.ShowLastCommit || s.cache.Pending() == 0
}

// Path returns the configured path
func (s *Sync) Path() string { return s.path }

// Root returns the resolved toplevel, empty when disposed at construction
func (s *Sync) Root() string { return s.root }

// CommitID returns the last known short commit id
func (s *Sync) CommitID() string { return *s.commitID.Load() }

// BranchLabel returns the last known repo@branch label
func (s *Sync) BranchLabel() string { return *s.branch.Load() }

// Disposed reports whether the tree is disposed
func (s *Sync) Disposed() bool { return s.disposed.Load() }
