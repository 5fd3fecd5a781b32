// Package mcp exposes a running registry to MCP clients: dirty state and
// commit metadata are pulled through tools, and the tracked trees are
// published as a resource.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/treesync/internal/core/logger"
	"github.com/aki/treesync/internal/core/registry"
)

// Transports
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Options configures a Server
type Options struct {
	// Version is reported to clients
	Version   string
	Transport string
	// Port is used by the HTTP transport
	Port int
	// BearerToken protects the HTTP transport when set
	BearerToken string
	Logger      logger.Logger
}

// Server serves one registry over MCP
type Server struct {
	mcpServer *server.MCPServer
	registry  *registry.Registry
	opts      Options
	logger    logger.Logger
}

// NewServer creates a server and registers its tools and resources
func NewServer(reg *registry.Registry, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Transport == "" {
		opts.Transport = TransportStdio
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			"treesync",
			opts.Version,
			server.WithLogging(),
			server.WithResourceCapabilities(false, false),
		),
		registry: reg,
		opts:     opts,
		logger:   opts.Logger.With("component", "mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Start serves until the transport ends or ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", s.opts.Transport)

	switch s.opts.Transport {
	case TransportStdio:
		return server.ServeStdio(s.mcpServer)
	case TransportHTTP:
		return s.startHTTPServer(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.opts.Transport)
	}
}

func (s *Server) startHTTPServer(ctx context.Context) error {
	sseServer := server.NewSSEServer(s.mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.authMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shut down MCP server", "error", err)
		}
	}()

	s.logger.Info("MCP server listening", "port", s.opts.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// authMiddleware checks the bearer token when one is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.BearerToken != "" && r.Header.Get("Authorization") != "Bearer "+s.opts.BearerToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
