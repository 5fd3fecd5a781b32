package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// TreesURI is the resource listing every tracked tree
const TreesURI = "treesync://trees"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		TreesURI,
		"Tracked Working Trees",
		mcp.WithResourceDescription("Every tracked working tree with its commit, branch and dirty file count"),
		mcp.WithMIMEType("application/json"),
	), s.handleTreesResource)
}

// treeInfo describes one tracked tree
type treeInfo struct {
	Path       string   `json:"path"`
	Root       string   `json:"root,omitempty"`
	Disposed   bool     `json:"disposed"`
	Commit     string   `json:"commit,omitempty"`
	Branch     string   `json:"branch,omitempty"`
	DirtyFiles []string `json:"dirtyFiles"`
	Cached     int      `json:"cachedCommitEntries"`
}

func (s *Server) treeList() []treeInfo {
	trees := s.registry.Trees()
	out := make([]treeInfo, 0, len(trees))
	for _, tree := range trees {
		info := treeInfo{
			Path:       tree.Path(),
			Root:       tree.Root(),
			Disposed:   tree.Disposed(),
			Commit:     tree.CommitID(),
			Branch:     tree.BranchLabel(),
			DirtyFiles: tree.DirtySet().Files(),
		}
		if info.DirtyFiles == nil {
			info.DirtyFiles = []string{}
		}
		_, entries := tree.CommitCache()
		info.Cached = len(entries)
		out = append(out, info)
	}
	return out
}

func (s *Server) handleTreesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(s.treeList(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree list: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
