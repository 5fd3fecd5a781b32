package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Discover working trees",
	Long: `List the working tree containing dir and every working tree below it.

dir defaults to the current directory. With --save the discovered trees
are added to the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var scanSave bool

func init() {
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Track the discovered working trees")
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	var dir string
	if len(args) > 0 {
		dir = args[0]
	}
	found, err := c.Discover(dir)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	added := 0
	if scanSave {
		for _, p := range found {
			if c.Config.AddRepository(p) {
				added++
			}
		}
		if added > 0 {
			if err := c.ConfigManager.Save(c.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
		}
	}

	if ui.GlobalFormatter.IsJSON() {
		if found == nil {
			found = []string{}
		}
		return ui.GlobalFormatter.Output(found)
	}

	if len(found) == 0 {
		ui.Info("No working trees found")
		return nil
	}
	for _, p := range found {
		ui.OutputLine("%s", p)
	}
	if scanSave {
		ui.Success("Tracking %s more", plural(added, "working tree"))
	}
	return nil
}
