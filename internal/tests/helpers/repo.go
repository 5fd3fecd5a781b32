// Package helpers provides shared fixtures for tests that need a real git
// working tree.
package helpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// RequireGit skips the test when no git executable is on PATH
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

// CreateTestRepo creates a temporary git repository with one commit on main.
// The returned path has symlinks resolved so it compares equal to what
// `git rev-parse --show-toplevel` prints.
func CreateTestRepo(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	// Clear git environment variables for test isolation
	for _, key := range []string{"GIT_DIR", "GIT_WORK_TREE", "GIT_INDEX_FILE"} {
		if orig, ok := os.LookupEnv(key); ok {
			t.Setenv(key, orig)
			os.Unsetenv(key)
		}
	}

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	if err := runGit(tmpDir, "init", "--initial-branch=main"); err != nil {
		// Fallback for older git versions
		if err := runGit(tmpDir, "init"); err != nil {
			t.Fatalf("Failed to init git repo: %v", err)
		}
	}

	GitCmd(t, tmpDir, "config", "user.email", "test@example.com")
	GitCmd(t, tmpDir, "config", "user.name", "Test User")
	GitCmd(t, tmpDir, "config", "commit.gpgsign", "false")
	_ = runGit(tmpDir, "config", "init.templateDir", "")

	WriteFile(t, tmpDir, "README.md", "# Test Repository\n")
	GitCmd(t, tmpDir, "add", "README.md")
	GitCmd(t, tmpDir, "commit", "-m", "Initial commit")

	// Ignore error - might already be on main
	_ = runGit(tmpDir, "branch", "-M", "main")

	return tmpDir
}

// WriteFile writes content to rel under dir, creating parent directories
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// CommitAll stages everything in dir and commits it with message
func CommitAll(t *testing.T, dir, message string) {
	t.Helper()
	GitCmd(t, dir, "add", "-A")
	GitCmd(t, dir, "commit", "-m", message)
}

// GitCmd runs git in dir and fails the test on error
func GitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v, output: %s", args, err, output)
	}
}

func runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Run()
}
