// Package app provides dependency injection container for the application
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/aki/treesync/internal/core/commitinfo"
	"github.com/aki/treesync/internal/core/config"
	"github.com/aki/treesync/internal/core/git"
	"github.com/aki/treesync/internal/core/logger"
	"github.com/aki/treesync/internal/core/process"
	"github.com/aki/treesync/internal/core/registry"
	"github.com/aki/treesync/internal/core/repository"
)

// Options controls how the container is built
type Options struct {
	// ConfigPath overrides the per-user config file location
	ConfigPath string
	Logger     logger.Logger
	Clock      clockwork.Clock
	// WorkDir is where repositories are discovered when none are configured
	WorkDir string
}

// Container holds every component, built in dependency order
type Container struct {
	Logger        logger.Logger
	ConfigManager *config.Manager
	Config        *config.Config
	Invoker       process.Invoker
	Git           *git.Client
	Stores        commitinfo.StoreFactory
	Registry      *registry.Registry

	workDir string
}

// NewContainer loads the configuration and wires the registry
func NewContainer(opts Options) (*Container, error) {
	c := &Container{
		Logger:  opts.Logger,
		workDir: opts.WorkDir,
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		if configPath, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	c.ConfigManager = config.NewManager(configPath)

	cfg, err := c.ConfigManager.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	c.Invoker = process.NewExecInvoker(c.Logger.WithGroup("process"))
	c.Git = git.NewClient(c.Invoker, cfg.GitPath, c.Logger)

	cacheDir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	c.Stores = commitinfo.FileStoreFactory(cacheDir)

	factory := registry.NewFactory(c.Git,
		repository.WithLogger(c.Logger),
		repository.WithStoreFactory(c.Stores),
		repository.WithClock(opts.Clock),
		repository.WithDebounce(cfg.PersistDebounce),
		repository.WithSidecarSuffix(cfg.SidecarSuffix),
	)
	c.Registry = registry.New(factory,
		registry.WithOptions(cfg.SyncOptions()),
		registry.WithInterval(cfg.TickInterval),
		registry.WithClock(opts.Clock),
		registry.WithLogger(c.Logger),
	)

	return c, nil
}

// TrackedPaths returns the configured repositories, or the ones discovered
// from the working directory when none are configured
func (c *Container) TrackedPaths() ([]string, error) {
	if len(c.Config.Repositories) > 0 {
		return c.Config.Repositories, nil
	}
	return c.Discover(c.workDir)
}

// Discover returns the toplevel of dir, if any, followed by every working
// tree below dir
func (c *Container) Discover(dir string) ([]string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok && p != "" {
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}

	add(c.Git.Toplevel(dir))
	found, err := git.Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		add(p)
	}
	return paths, nil
}

// Apply pushes a configuration to the running registry
func (c *Container) Apply(cfg *config.Config) error {
	c.Config = cfg
	c.Registry.SetOptions(cfg.SyncOptions())

	paths, err := c.TrackedPaths()
	if err != nil {
		return err
	}
	c.Registry.SetPaths(paths)
	return nil
}
