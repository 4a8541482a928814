// ABOUTME: MCP server initialization and configuration for dendro.
// ABOUTME: Sets up the server with clustering and report tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/dendro/internal/embeddings"
	"github.com/2389-research/dendro/internal/pipeline"
	"github.com/2389-research/dendro/internal/storage"
)

// Server wraps the MCP server with report storage and a default embedder.
type Server struct {
	mcp      *gomcp.Server
	reports  storage.ReportStore
	embedder embeddings.Embedder
	defaults pipeline.Options
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithEmbedder sets the embedding table used when a call brings no vectors of its own.
func WithEmbedder(e embeddings.Embedder) ServerOption {
	return func(s *Server) {
		s.embedder = e
	}
}

// WithDefaults sets the clustering defaults applied to cluster_rows calls.
// The Embedder field is ignored; use WithEmbedder.
func WithDefaults(opts pipeline.Options) ServerOption {
	return func(s *Server) {
		opts.Embedder = nil
		s.defaults = opts
	}
}

// NewServer creates an MCP server with clustering capabilities.
func NewServer(reports storage.ReportStore, opts ...ServerOption) (*Server, error) {
	if reports == nil {
		return nil, fmt.Errorf("report store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "dendro",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		reports: reports,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerClusterTools()
	s.registerReportTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
