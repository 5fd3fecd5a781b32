package ui

import (
	"os"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/aki/treesync/internal/core/commitinfo"
)

// DefaultWidth is used when the terminal size is unknown
const DefaultWidth = 80

// TerminalWidth returns the width of stdout, or DefaultWidth
func TerminalWidth() int {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// CommitLabel renders info in at most width cells. Narrow widths keep only
// the time, then the author is added, then the subject truncated with
// "...". A width of zero or less means unbounded. Unavailable entries
// render empty.
func CommitLabel(info commitinfo.Info, width int, now time.Time) string {
	if !info.Available {
		return ""
	}

	when := RelativeTime(info.Timestamp, now)
	byAuthor := when + " by " + info.Author
	full := byAuthor + ": " + info.Message

	if width <= 0 || ansi.StringWidth(full) <= width {
		return full
	}
	if ansi.StringWidth(byAuthor) > width {
		return when
	}

	room := width - ansi.StringWidth(byAuthor) - len(": ")
	if room <= len("...") {
		return byAuthor
	}
	return byAuthor + ": " + ansi.Truncate(info.Message, room, "...")
}
