package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aki/treesync/internal/app"
	"github.com/aki/treesync/internal/core/config"
	"github.com/aki/treesync/internal/core/registry"
)

// flagConfig overrides the config file location
var flagConfig string

// maxSettleTicks bounds one-shot commands against trees that never settle
const maxSettleTicks = 1000

func newContainer() (*app.Container, error) {
	return app.NewContainer(app.Options{
		ConfigPath: flagConfig,
		Logger:     CreateLogger(),
	})
}

func newConfigManager() (*config.Manager, error) {
	if flagConfig != "" {
		return config.NewManager(flagConfig), nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewManager(path), nil
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// settle ticks the registry on the calling goroutine until every tree is
// settled. The loop must not be running.
func settle(ctx context.Context, reg *registry.Registry) error {
	for i := 0; i < maxSettleTicks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		reg.Tick()
		if reg.Settled() {
			return nil
		}
	}
	return fmt.Errorf("working trees did not settle after %d ticks", maxSettleTicks)
}

// startLoop tracks the configured trees, starts the registry loop and
// reloads the configuration whenever its file changes. The loop stops
// when ctx is done.
func startLoop(ctx context.Context, c *app.Container) error {
	paths, err := c.TrackedPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve tracked trees: %w", err)
	}
	c.Registry.SetPaths(paths)

	if err := c.Registry.Start(ctx); err != nil {
		return fmt.Errorf("failed to start registry: %w", err)
	}

	watcher := config.NewWatcher(c.ConfigManager, config.WatcherOptions{
		Logger: c.Logger.WithGroup("config"),
	})
	go func() {
		_ = watcher.Watch(ctx, func(cfg *config.Config) {
			if err := c.Apply(cfg); err != nil {
				c.Logger.Warn("failed to apply configuration", "error", err)
				return
			}
			c.Logger.Info("configuration reloaded", "path", c.ConfigManager.Path())
		})
	}()

	return nil
}

// relativeTo returns path relative to root for display
func relativeTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
