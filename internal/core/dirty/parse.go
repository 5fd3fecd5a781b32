package dirty

import (
	"strconv"
	"strings"
)

// RenameSeparator joins the old and new path of a rename or copy record
const RenameSeparator = " -> "

// ParseStatus extracts every path mentioned in `git status --porcelain`
// output, in order. Rename and copy records contribute both paths. Lines too
// short to carry a path are skipped.
func ParseStatus(output string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		paths = append(paths, parseLine(line)...)
	}
	return paths
}

func parseLine(line string) []string {
	line = strings.TrimRight(line, "\r")
	if len(line) <= 3 {
		return nil
	}

	code, rest := line[:2], line[3:]
	if strings.ContainsAny(code, "RC") {
		if i := strings.Index(rest, RenameSeparator); i >= 0 {
			return compact(unquote(rest[:i]), unquote(rest[i+len(RenameSeparator):]))
		}
	}
	return compact(unquote(rest))
}

// unquote decodes a path git wrapped in C-style quotes. Text that is not a
// valid quoted string is used as is.
func unquote(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
		p = p[1 : len(p)-1]
	}
	return p
}

func compact(paths ...string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
