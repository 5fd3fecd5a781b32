// Package git wraps the git executable and go-git for the sync engine.
package git

import (
	"path/filepath"
	"strings"

	"github.com/aki/treesync/internal/core/logger"
	"github.com/aki/treesync/internal/core/process"
)

// CommitFormat is the pretty format used for single-file commit lookups.
// Fields are separated by '|' and the subject comes last so it may contain '|'.
const CommitFormat = "%H|%an|%ad|%s"

// Client issues the read-only git queries the sync engine needs. All methods
// return "" when git cannot answer.
type Client struct {
	invoker process.Invoker
	gitPath string
	logger  logger.Logger
}

// NewClient creates a client that runs gitPath through invoker
func NewClient(invoker process.Invoker, gitPath string, log logger.Logger) *Client {
	if gitPath == "" {
		gitPath = "git"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		invoker: invoker,
		gitPath: gitPath,
		logger:  log,
	}
}

func (c *Client) run(dir string, args ...string) string {
	return c.invoker.Run(c.gitPath, args, dir)
}

// Toplevel returns the root of the working tree containing dir
func (c *Client) Toplevel(dir string) string {
	out := strings.TrimSpace(c.run(dir, "rev-parse", "--show-toplevel"))
	if out == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(out))
}

// ShortCommitID returns the abbreviated id of HEAD
func (c *Client) ShortCommitID(dir string) string {
	return strings.TrimSpace(c.run(dir, "rev-parse", "--short", "HEAD"))
}

// Status returns `git status --porcelain` output with unquoted UTF-8 paths
func (c *Client) Status(dir string) string {
	return c.run(dir, "-c", "core.quotepath=false", "status", "--porcelain", "--untracked-files=all")
}

// LastCommit returns the CommitFormat line of the last commit touching path
func (c *Client) LastCommit(dir, path string) string {
	return strings.TrimSpace(c.run(dir,
		"log", "-1",
		"--pretty=format:"+CommitFormat,
		"--date=iso",
		"--", path,
	))
}
