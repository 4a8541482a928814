// ABOUTME: Loads the configured embedding table for CLI commands.
// ABOUTME: Resolves flag overrides against config and logs load timing.
package main

import (
	"time"

	"github.com/2389-research/dendro/internal/config"
	"github.com/2389-research/dendro/internal/embeddings"
	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/logger"
)

// loadEmbedder opens the table at override, or the configured path when override is empty.
func loadEmbedder(cfg *config.Config, override string) (*embeddings.Table, error) {
	path := override
	if path == "" {
		path = cfg.Embeddings.Path
	}
	if path == "" {
		return nil, errors.WithHint(
			errors.InvalidInputf("no embedding table configured"),
			"run 'dendro setup' or pass --embeddings <file>")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tbl, err := embeddings.LoadTable(expanded, embeddings.WithLowerCaseFallback(cfg.LowerCaseFallback()))
	if err != nil {
		return nil, err
	}
	logger.Logger.Infow("loaded embeddings",
		"path", expanded,
		"words", tbl.Len(),
		"dim", tbl.Dimension(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return tbl, nil
}
