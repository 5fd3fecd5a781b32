package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aki/treesync/internal/cli/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the treesync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Show the configuration after defaults are applied.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	manager, err := newConfigManager()
	if err != nil {
		return err
	}
	cfg, err := manager.Load()
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return ui.GlobalFormatter.Output(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	manager, err := newConfigManager()
	if err != nil {
		return err
	}

	if !manager.Exists() {
		ui.Info("No config file at %s; defaults apply", manager.Path())
		return nil
	}

	// Load validates after decoding
	if _, err := manager.Load(); err != nil {
		return err
	}
	ui.Success("Configuration is valid: %s", manager.Path())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	manager, err := newConfigManager()
	if err != nil {
		return err
	}
	ui.OutputLine("%s", manager.Path())
	return nil
}
