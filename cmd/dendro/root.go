// ABOUTME: Root Cobra command and global flags for the dendro CLI.
// ABOUTME: Sets up lifecycle hooks for config loading, logging, and store initialization.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/dendro/internal/config"
	"github.com/2389-research/dendro/internal/logger"
	"github.com/2389-research/dendro/internal/storage"
)

var globalConfig *config.Config
var globalReportStore storage.ReportStore

// Global flags
var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "dendro",
	Short: "Hierarchical clustering of text rows by word embedding",
	Long: `
██████╗ ███████╗███╗   ██╗██████╗ ██████╗  ██████╗
██╔══██╗██╔════╝████╗  ██║██╔══██╗██╔══██╗██╔═══██╗
██║  ██║█████╗  ██╔██╗ ██║██║  ██║██████╔╝██║   ██║
██║  ██║██╔══╝  ██║╚██╗██║██║  ██║██╔══██╗██║   ██║
██████╔╝███████╗██║ ╚████║██████╔╝██║  ██║╚██████╔╝
╚═════╝ ╚══════╝╚═╝  ╚═══╝╚═════╝ ╚═╝  ╚═╝ ╚═════╝

Embed one column of a table with pretrained word vectors, build a
Ward dendrogram, and report the K most significant clusters.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		if err := logger.Initialize(cfg.Log.JSON || logJSON, level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		reportsDir, err := cfg.GetReportsDir()
		if err != nil {
			return fmt.Errorf("failed to resolve reports dir: %w", err)
		}
		reportStore, err := storage.NewReportMDStore(reportsDir)
		if err != nil {
			return fmt.Errorf("failed to open report store: %w", err)
		}
		globalReportStore = reportStore
		logger.Logger.Debugw("initialized", "reports", reportsDir)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalReportStore != nil {
			_ = globalReportStore.Close()
			globalReportStore = nil
		}
		logger.Sync()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON to stderr")
}
