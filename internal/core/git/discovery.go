package git

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
)

// Discover returns every working tree at or below root, identified by a
// ".git" entry that go-git can open. Unreadable directories are skipped.
func Discover(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	found := make(map[string]struct{})
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == abs {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ".git" {
			return nil
		}

		parent := filepath.Dir(path)
		if _, err := git.PlainOpen(parent); err == nil {
			found[parent] = struct{}{}
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", abs, err)
	}

	paths := make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
