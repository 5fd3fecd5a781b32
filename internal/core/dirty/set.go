package dirty

import "sort"

// Set is an immutable set of absolute paths: every reported file plus all of
// its ancestor directories up to the tree root. A nil *Set is empty.
type Set struct {
	paths map[string]struct{}
	files []string
}

func newSet(paths map[string]struct{}, files []string) *Set {
	sort.Strings(files)
	return &Set{paths: paths, files: files}
}

// Contains reports whether path is in the set
func (s *Set) Contains(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of paths, directories included
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the members in lexical order
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Files returns the paths reported by git, without the synthesized
// ancestors, in lexical order
func (s *Set) Files() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.files...)
}

// Equal reports mutual containment
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for p := range s.paths {
		if !other.Contains(p) {
			return false
		}
	}
	for p := range other.paths {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}
