package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/treesync/internal/core/commitinfo"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("tree_list",
		mcp.WithDescription(GetEnhancedDescription("tree_list")),
	), s.handleTreeList)

	s.mcpServer.AddTool(mcp.NewTool("dirty_check",
		mcp.WithDescription(GetEnhancedDescription("dirty_check")),
		mcp.WithString("path",
			mcp.Description("Absolute path of a file or directory"),
			mcp.Required(),
		),
	), s.handleDirtyCheck)

	s.mcpServer.AddTool(mcp.NewTool("commit_info",
		mcp.WithDescription(GetEnhancedDescription("commit_info")),
		mcp.WithString("path",
			mcp.Description("Absolute path of a file"),
			mcp.Required(),
		),
	), s.handleCommitInfo)

	s.mcpServer.AddTool(mcp.NewTool("refresh",
		mcp.WithDescription(GetEnhancedDescription("refresh")),
	), s.handleRefresh)

	s.mcpServer.AddTool(mcp.NewTool("focus_changed",
		mcp.WithDescription(GetEnhancedDescription("focus_changed")),
	), s.handleFocusChanged)
}

// dirtyResult is the dirty_check payload
type dirtyResult struct {
	Path  string `json:"path"`
	Root  string `json:"root"`
	Dirty bool   `json:"dirty"`
}

// commitResult is the commit_info payload
type commitResult struct {
	Path      string `json:"path"`
	Root      string `json:"root"`
	Available bool   `json:"available"`
	Author    string `json:"author,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

func newCommitResult(path, root string, info commitinfo.Info) commitResult {
	res := commitResult{
		Path:      path,
		Root:      root,
		Available: info.Available,
	}
	if info.Available {
		res.Author = info.Author
		res.Timestamp = info.Timestamp.Format(time.RFC3339)
		res.Message = info.Message
	}
	return res
}

func (s *Server) handleTreeList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return createEnhancedResult("tree_list", s.treeList(), nil)
}

func (s *Server) handleDirtyCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := pathArgument(request)
	if err != nil {
		return nil, err
	}

	tree, ok := s.registry.Lookup(path)
	if !ok {
		return nil, TreeNotFoundError(path)
	}

	return createEnhancedResult("dirty_check", dirtyResult{
		Path:  path,
		Root:  tree.Root(),
		Dirty: tree.IsDirty(path),
	}, nil)
}

func (s *Server) handleCommitInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := pathArgument(request)
	if err != nil {
		return nil, err
	}

	tree, ok := s.registry.Lookup(path)
	if !ok {
		return nil, TreeNotFoundError(path)
	}

	info := tree.GetOrQuery(path)
	metadata := &ToolResultMetadata{}
	if !info.Available {
		metadata.Note = "not resolved yet; ask again after the next refresh"
	}
	return createEnhancedResult("commit_info", newCommitResult(path, tree.Root(), info), metadata)
}

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.registry.Refresh()
	return createEnhancedResult("refresh", map[string]int{"trees": len(s.registry.Trees())}, nil)
}

func (s *Server) handleFocusChanged(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.registry.OnFocusChanged()
	return createEnhancedResult("focus_changed", map[string]int{"trees": len(s.registry.Trees())}, nil)
}

func pathArgument(request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("invalid or missing path argument")
	}
	if !filepath.IsAbs(path) {
		return "", InvalidParameterError("path", "an absolute path")
	}
	return filepath.Clean(path), nil
}
