package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
	"github.com/aki/treesync/internal/core/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep tracked working trees in sync",
	Long: `Run the background loop over every tracked working tree and print a line
whenever their state changes.

The config file is watched; edits to tracked repositories or display
toggles are applied without restarting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := startLoop(ctx, c); err != nil {
		return err
	}
	defer c.Registry.Close()

	ui.Info("Watching working trees (registry %s)", c.Registry.ID())
	ui.Info("Press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			ui.Success("Stopped")
			return nil
		case <-c.Registry.Repaint():
			if err := printRepaint(c.Registry, time.Now()); err != nil {
				return err
			}
		}
	}
}

func printRepaint(reg *registry.Registry, now time.Time) error {
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(collectStatus(reg, false))
	}

	for _, tree := range reg.Trees() {
		if tree.Disposed() {
			continue
		}
		ui.OutputLine("%s %s %s %s %s",
			ui.DimStyle.Render(now.Format(time.TimeOnly)),
			tree.Root(),
			orDash(tree.BranchLabel()),
			orDash(tree.CommitID()),
			ui.DirtyStyle.Render(plural(len(tree.DirtySet().Files()), "dirty file")),
		)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
