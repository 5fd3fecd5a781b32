package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/treesync/internal/cli/ui"
	"github.com/aki/treesync/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Serve working tree state over the Model Context Protocol while the
background loop keeps it current.

Tools: tree_list, dirty_check, commit_info, refresh, focus_changed.
Resource: treesync://trees.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var (
	mcpTransport string
	mcpPort      int
	mcpAuthToken string
)

func init() {
	mcpCmd.Flags().StringVarP(&mcpTransport, "transport", "t", mcp.TransportStdio, "Transport type (stdio, http)")
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 3000, "Port for HTTP transport")
	mcpCmd.Flags().StringVar(&mcpAuthToken, "auth-token", "", "Bearer token for HTTP transport")
}

func runMCP(cmd *cobra.Command, args []string) error {
	if mcpTransport != mcp.TransportStdio && mcpTransport != mcp.TransportHTTP {
		return fmt.Errorf("unsupported transport: %s", mcpTransport)
	}

	c, err := newContainer()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := startLoop(ctx, c); err != nil {
		return err
	}
	defer c.Registry.Close()

	server := mcp.NewServer(c.Registry, mcp.Options{
		Version:     Version,
		Transport:   mcpTransport,
		Port:        mcpPort,
		BearerToken: mcpAuthToken,
		Logger:      c.Logger,
	})

	// stdout carries the protocol on stdio
	if mcpTransport == mcp.TransportHTTP {
		ui.Info("Starting MCP server on port %d", mcpPort)
		ui.Info("Press Ctrl+C to stop")
	}

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
