package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Branch reads the checked-out branch and repository name with go-git,
// without spawning a process.
func (c *Client) Branch(dir string) (BranchInfo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return BranchInfo{}, fmt.Errorf("failed to open repository: %w", err)
	}

	info := BranchInfo{Repository: repositoryName(repo, dir)}

	head, err := repo.Head()
	switch {
	case err == nil:
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Detached = true
			info.Branch = shortHash(head.Hash())
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// unborn branch: HEAD is symbolic but points at nothing yet
		ref, refErr := repo.Storer.Reference(plumbing.HEAD)
		if refErr != nil || ref.Type() != plumbing.SymbolicReference {
			return info, fmt.Errorf("failed to get HEAD: %w", err)
		}
		info.Branch = ref.Target().Short()
	default:
		return info, fmt.Errorf("failed to get HEAD: %w", err)
	}

	return info, nil
}

// BranchLabel returns Branch(dir).Label(), or "" when it cannot be resolved
func (c *Client) BranchLabel(dir string) string {
	info, err := c.Branch(dir)
	if err != nil {
		c.logger.Debug("branch info unavailable", "dir", dir, "error", err)
	}
	return info.Label()
}

func repositoryName(repo *git.Repository, dir string) string {
	remote, err := repo.Remote("origin")
	if err != nil {
		remotes, listErr := repo.Remotes()
		if listErr != nil || len(remotes) == 0 {
			return worktreeName(repo, dir)
		}
		remote = remotes[0]
	}

	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return worktreeName(repo, dir)
	}
	if name := NameFromURL(cfg.URLs[0]); name != "" {
		return name
	}
	return worktreeName(repo, dir)
}

func worktreeName(repo *git.Repository, dir string) string {
	if wt, err := repo.Worktree(); err == nil {
		return filepath.Base(wt.Filesystem.Root())
	}
	return filepath.Base(dir)
}

// NameFromURL extracts the repository name from a remote URL, handling
// scp-like ssh ("git@host:owner/name.git"), URL and local path forms.
func NameFromURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if url == "" {
		return ""
	}

	if i := strings.LastIndexAny(url, "/:\\"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

func shortHash(h plumbing.Hash) string {
	s := h.String()
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
