package mcp

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/aki/treesync/internal/core/registry"
)

var testRoot = filepath.Join(string(filepath.Separator), "work", "game")

// stubGit serves one tree at testRoot with a fixed status
type stubGit struct{}

func (stubGit) Toplevel(dir string) string {
	if dir == testRoot || strings.HasPrefix(dir, testRoot+string(filepath.Separator)) {
		return testRoot
	}
	return ""
}

func (stubGit) ShortCommitID(string) string { return "abc1234" }

func (stubGit) Status(string) string { return " M assets/hero.png\n?? notes.txt" }

func (stubGit) LastCommit(dir, path string) string {
	return "deadbeef|Jane Doe|2024-03-05 14:07:09 +0000|Update " + filepath.Base(path)
}

func (stubGit) BranchLabel(string) string { return "game@main" }

// setupTestServer creates a server over a registry tracking testRoot and a
// path that is not a working tree. The registry has been ticked once.
func setupTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()

	reg := registry.New(registry.NewFactory(stubGit{}))
	reg.Reconcile([]string{testRoot, filepath.Join(string(filepath.Separator), "plain")})
	reg.Tick()

	return NewServer(reg, Options{Version: "test"}), reg
}

// decodeResult unmarshals the result field of an enhanced tool result
func decodeResult(t *testing.T, result *mcp.CallToolResult, v interface{}) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])

	var envelope struct {
		Result   json.RawMessage        `json:"result"`
		Metadata map[string]interface{} `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Result, v))
	return envelope.Metadata
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}
