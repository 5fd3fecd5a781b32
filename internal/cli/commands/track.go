package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Manage tracked working trees",
	Long: `Add, remove and list the working trees recorded in the config file.

When no trees are recorded, treesync discovers them from the working
directory instead.`,
}

var trackAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Track a working tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackAdd,
}

var trackRemoveCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"rm"},
	Short:   "Stop tracking a working tree",
	Args:    cobra.ExactArgs(1),
	RunE:    runTrackRemove,
}

var trackListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked working trees",
	Args:    cobra.NoArgs,
	RunE:    runTrackList,
}

func init() {
	trackCmd.AddCommand(trackAddCmd)
	trackCmd.AddCommand(trackRemoveCmd)
	trackCmd.AddCommand(trackListCmd)
}

func runTrackAdd(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	c, err := newContainer()
	if err != nil {
		return err
	}

	if root := c.Git.Toplevel(path); root == "" {
		ui.Warning("%s is not inside a git working tree", path)
	} else if root != filepath.Clean(path) {
		ui.Info("%s belongs to the working tree at %s", path, root)
	}

	if !c.Config.AddRepository(path) {
		ui.Info("Already tracking %s", path)
		return nil
	}
	if err := c.ConfigManager.Save(c.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.Success("Tracking %s", path)
	return nil
}

func runTrackRemove(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	manager, err := newConfigManager()
	if err != nil {
		return err
	}
	cfg, err := manager.Load()
	if err != nil {
		return err
	}

	if !cfg.RemoveRepository(path) {
		return fmt.Errorf("not tracking %s", path)
	}
	if err := manager.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.Success("Stopped tracking %s", path)
	return nil
}

func runTrackList(cmd *cobra.Command, args []string) error {
	manager, err := newConfigManager()
	if err != nil {
		return err
	}
	cfg, err := manager.Load()
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(cfg.Repositories)
	}

	if len(cfg.Repositories) == 0 {
		ui.Info("No working trees tracked; they are discovered from the working directory")
		return nil
	}
	for _, p := range cfg.Repositories {
		ui.OutputLine("%s", p)
	}
	return nil
}
