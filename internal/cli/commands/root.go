package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
)

var flagFormat string

var rootCmd = &cobra.Command{
	Use:   "treesync",
	Short: "Track working tree state for file views",
	Long: `Treesync keeps the dirty files, branch and per-file last commit of your
git working trees current, so file views can mark them without blocking.

Trees are polled on a background loop; git is only invoked when something
may have changed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		return ui.SetGlobalFormatter(format)
	},
}

func init() {
	RegisterLoggerFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default is the per-user config directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "pretty", "Output format (pretty, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
