package git

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/treesync/internal/tests/helpers"
)

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:aki/treesync.git", "treesync"},
		{"https://github.com/aki/treesync.git", "treesync"},
		{"https://github.com/aki/treesync", "treesync"},
		{"https://github.com/aki/treesync/", "treesync"},
		{"ssh://git@example.com:2222/team/game.git", "game"},
		{"/srv/git/tools.git", "tools"},
		{`C:\repos\engine`, "engine"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromURL(tt.url))
		})
	}
}

func TestBranchInfo_Label(t *testing.T) {
	assert.Equal(t, "treesync@main", BranchInfo{Repository: "treesync", Branch: "main"}.Label())
	assert.Equal(t, "main", BranchInfo{Branch: "main"}.Label())
	assert.Equal(t, "treesync", BranchInfo{Repository: "treesync"}.Label())
	assert.Equal(t, "", BranchInfo{}.Label())
}

func TestClient_Branch(t *testing.T) {
	repo := helpers.CreateTestRepo(t)
	c := newTestClient()

	info, err := c.Branch(repo)
	require.NoError(t, err)
	assert.Equal(t, "main", info.Branch)
	assert.False(t, info.Detached)
	assert.Equal(t, filepath.Base(repo), info.Repository, "without a remote the directory name is used")

	helpers.GitCmd(t, repo, "remote", "add", "origin", "git@github.com:aki/game-client.git")
	helpers.GitCmd(t, repo, "checkout", "-b", "feature/dirty-markers")

	assert.Equal(t, "game-client@feature/dirty-markers", c.BranchLabel(repo))
}

func TestClient_BranchDetached(t *testing.T) {
	repo := helpers.CreateTestRepo(t)
	c := newTestClient()

	helpers.GitCmd(t, repo, "checkout", "--detach", "HEAD")

	info, err := c.Branch(repo)
	require.NoError(t, err)
	assert.True(t, info.Detached)
	assert.Equal(t, c.ShortCommitID(repo)[:7], info.Branch[:7])
}

func TestClient_BranchLabelOutsideRepository(t *testing.T) {
	c := newTestClient()
	_, err := c.Branch(t.TempDir())
	assert.Error(t, err)
	assert.Equal(t, "", c.BranchLabel(t.TempDir()))
}
