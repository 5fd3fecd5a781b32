// Package commitinfo resolves and caches, per working tree, the last commit
// that touched each file. Lookups never block on git: a miss is queued and
// answered on a later tick by the owning loop.
package commitinfo

import (
	"strings"
	"time"
)

// DateLayout is the layout of `git log --date=iso` dates
const DateLayout = "2006-01-02 15:04:05 -0700"

// Info describes the last commit touching a path. The zero value is the
// unavailable placeholder: not yet resolved, or resolution failed.
type Info struct {
	Author    string
	Timestamp time.Time
	Message   string
	Available bool
}

// Equal compares two entries, treating timestamps by instant
func (i Info) Equal(other Info) bool {
	return i.Available == other.Available &&
		i.Author == other.Author &&
		i.Message == other.Message &&
		i.Timestamp.Equal(other.Timestamp)
}

// ParseCommitLine parses a `hash|author|iso-date|subject` line. Anything
// that does not parse yields an unavailable Info.
func ParseCommitLine(line string) Info {
	fields := strings.SplitN(strings.TrimSpace(line), "|", 4)
	if len(fields) != 4 || fields[0] == "" {
		return Info{}
	}

	ts, err := time.Parse(DateLayout, strings.TrimSpace(fields[2]))
	if err != nil {
		return Info{}
	}

	return Info{
		Author:    fields[1],
		Timestamp: ts,
		Message:   fields[3],
		Available: true,
	}
}
