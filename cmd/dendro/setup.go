// ABOUTME: Cobra command for interactive embedding table setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the table settings.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/dendro/internal/config"
	"github.com/2389-research/dendro/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the embedding table",
	Long:  "Interactive wizard to point dendro at a word-embedding table and pick clustering defaults.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.Embeddings.Path,
		cfg.Embeddings.Dim,
		cfg.Clustering.TopK,
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	path, dim, topK := final.Result()
	cfg.Embeddings.Path = path
	cfg.Embeddings.Dim = dim
	cfg.Clustering.TopK = topK

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
