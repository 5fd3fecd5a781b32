package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
	"github.com/aki/treesync/internal/core/commitinfo"
	"github.com/aki/treesync/internal/core/registry"
	"github.com/aki/treesync/internal/core/repository"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of tracked working trees",
	Long: `Scan every tracked working tree once and print its branch, commit and
dirty file count.

With --files, each dirty file is listed with the last commit that touched it.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	statusFiles   bool
	statusTimeout time.Duration
)

func init() {
	statusCmd.Flags().BoolVar(&statusFiles, "files", false, "List dirty files with their last commit")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 30*time.Second, "Give up waiting for git after this long")
}

type commitStatus struct {
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type fileStatus struct {
	Path   string        `json:"path"`
	Commit *commitStatus `json:"commit,omitempty"`
}

type treeStatus struct {
	Path     string       `json:"path"`
	Root     string       `json:"root,omitempty"`
	Branch   string       `json:"branch,omitempty"`
	CommitID string       `json:"commitId,omitempty"`
	Tracked  bool         `json:"tracked"`
	Dirty    []fileStatus `json:"dirty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	paths, err := c.TrackedPaths()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	reg := c.Registry
	reg.Reconcile(paths)
	defer reg.Close()

	if err := settle(ctx, reg); err != nil {
		return err
	}

	if statusFiles {
		// The first pass enqueues every dirty file; settling resolves them
		for _, tree := range reg.Trees() {
			for _, file := range tree.DirtySet().Files() {
				tree.GetOrQuery(file)
			}
		}
		if err := settle(ctx, reg); err != nil {
			return err
		}
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(collectStatus(reg, statusFiles))
	}

	trees := reg.Trees()
	ui.PrintTreeTable(trees)
	if !statusFiles {
		return nil
	}

	width := ui.TerminalWidth()
	now := time.Now()
	for _, tree := range trees {
		if tree.Disposed() {
			continue
		}
		ui.OutputLine("%s", ui.BoldStyle.Render(tree.Root()))
		ui.PrintDirtyFiles(tree, width, now)
	}
	return nil
}

func collectStatus(reg *registry.Registry, withCommits bool) []treeStatus {
	trees := reg.Trees()
	out := make([]treeStatus, 0, len(trees))
	for _, tree := range trees {
		out = append(out, newTreeStatus(tree, withCommits))
	}
	return out
}

func newTreeStatus(tree *repository.Sync, withCommits bool) treeStatus {
	st := treeStatus{
		Path:    tree.Path(),
		Tracked: !tree.Disposed(),
		Dirty:   []fileStatus{},
	}
	if tree.Disposed() {
		return st
	}

	st.Root = tree.Root()
	st.Branch = tree.BranchLabel()
	st.CommitID = tree.CommitID()
	for _, file := range tree.DirtySet().Files() {
		fs := fileStatus{Path: relativeTo(tree.Root(), file)}
		if withCommits {
			fs.Commit = newCommitStatus(tree.GetOrQuery(file))
		}
		st.Dirty = append(st.Dirty, fs)
	}
	return st
}

func newCommitStatus(info commitinfo.Info) *commitStatus {
	if !info.Available {
		return nil
	}
	return &commitStatus{
		Author:    info.Author,
		Timestamp: info.Timestamp,
		Message:   info.Message,
	}
}
