package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/aki/treesync/internal/core/repository"
)

// PrintTreeTable displays tracked trees using a table
func PrintTreeTable(trees []*repository.Sync) {
	if len(trees) == 0 {
		Info("No working trees tracked")
		return
	}

	tbl := NewTable("PATH", "BRANCH", "COMMIT", "DIRTY")
	for _, tree := range trees {
		if tree.Disposed() {
			tbl.AddRow(tree.Path(), "-", DimStyle.Render("not a working tree"), "-")
			continue
		}
		tbl.AddRow(tree.Path(), orDash(tree.BranchLabel()), orDash(tree.CommitID()), len(tree.DirtySet().Files()))
	}

	PrintSectionHeader(TreeIcon, "Working trees", len(trees))
	tbl.Print()
	fmt.Fprintln(Out)
}

// PrintDirtyFiles lists the dirty files of a tree with their commit labels,
// fitting each line into width cells
func PrintDirtyFiles(tree *repository.Sync, width int, now time.Time) {
	files := tree.DirtySet().Files()
	if len(files) == 0 {
		OutputLine("  %s", DimStyle.Render("clean"))
		return
	}

	for _, file := range files {
		rel, err := filepath.Rel(tree.Root(), file)
		if err != nil {
			rel = file
		}

		room := 0
		if width > 0 {
			room = width - ansi.StringWidth(fmt.Sprintf("  %s %s  ", DirtyIcon, rel))
		}
		var label string
		if width <= 0 || room > 0 {
			label = CommitLabel(tree.GetOrQuery(file), room, now)
		}

		line := fmt.Sprintf("  %s %s", DirtyStyle.Render(DirtyIcon), rel)
		if label != "" {
			line += "  " + DimStyle.Render(label)
		}
		OutputLine("%s", line)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
