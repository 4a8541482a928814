// ABOUTME: MCP server command implementation for dendro.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/dendro/internal/logger"
	mcppkg "github.com/2389-research/dendro/internal/mcp"
	"github.com/2389-research/dendro/internal/pipeline"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents to cluster
rows and read saved reports through a standardized protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := globalConfig
	opts := []mcppkg.ServerOption{
		mcppkg.WithDefaults(pipeline.Options{
			EmbeddingDim: cfg.Embeddings.Dim,
			Method:       cfg.Clustering.Method,
			TopK:         cfg.Clustering.TopK,
			Strategy:     cfg.Clustering.Strategy,
			OOV:          cfg.Embeddings.OOV,
		}),
	}
	if cfg.HasEmbeddings() {
		emb, err := loadEmbedder(cfg, "")
		if err != nil {
			return err
		}
		opts = append(opts, mcppkg.WithEmbedder(emb))
	} else {
		logger.Logger.Warnw("no embedding table configured; cluster_rows needs inline embeddings")
	}

	server, err := mcppkg.NewServer(globalReportStore, opts...)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
