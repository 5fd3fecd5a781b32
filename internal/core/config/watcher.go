package config

import (
	"context"
	"hash/fnv"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aki/treesync/internal/core/logger"
)

// DefaultWatchInterval is how often the config file is checked
const DefaultWatchInterval = time.Second

// WatcherOptions configures a Watcher
type WatcherOptions struct {
	// PollInterval is how often to check the file
	PollInterval time.Duration
	Clock        clockwork.Clock
	Logger       logger.Logger
}

// Watcher reloads the configuration whenever the file content changes
type Watcher struct {
	manager *Manager
	opts    WatcherOptions
}

// NewWatcher creates a watcher for the manager's file
func NewWatcher(manager *Manager, opts WatcherOptions) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultWatchInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Watcher{manager: manager, opts: opts}
}

// Watch polls until ctx is done, calling onChange with every successfully
// loaded new configuration. Content present when Watch starts is not
// delivered. Invalid files are logged and skipped.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config)) error {
	ticker := w.opts.Clock.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	lastHash := w.hash()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			current := w.hash()
			if current == lastHash {
				continue
			}
			lastHash = current

			cfg, err := w.manager.Load()
			if err != nil {
				w.opts.Logger.Warn("ignoring config change", "path", w.manager.Path(), "error", err)
				continue
			}
			w.opts.Logger.Info("config reloaded", "path", w.manager.Path())
			onChange(cfg)
		}
	}
}

// hash returns 0 for a missing or unreadable file
func (w *Watcher) hash() uint64 {
	data, err := os.ReadFile(w.manager.Path())
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
