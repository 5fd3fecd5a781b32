package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Out receives all regular output
var Out io.Writer = os.Stdout

// ErrOut receives error output
var ErrOut io.Writer = os.Stderr

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprintf(ErrOut, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// Info prints an informational message
func Info(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// OutputLine prints a plain line
func OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(Out, format+"\n", args...)
}

// FormatTime formats a time relative to now
func FormatTime(t time.Time) string {
	return RelativeTime(t, time.Now())
}

// RelativeTime formats t relative to now, falling back to the date for
// anything older than a week
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return t.Local().Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
