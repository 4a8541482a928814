// ABOUTME: Configuration management for dendro with YAML config loading.
// ABOUTME: Handles embedding table settings, clustering defaults, report paths, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config stores dendro configuration loaded from ~/.config/dendro/config.yaml.
type Config struct {
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Reports    ReportsConfig    `yaml:"reports"`
	Log        LogConfig        `yaml:"log"`
}

// EmbeddingsConfig points at the word-embedding table.
type EmbeddingsConfig struct {
	Path              string `yaml:"path"`
	Dim               int    `yaml:"dim"`
	LowerCaseFallback *bool  `yaml:"lower_case_fallback,omitempty"`
	OOV               string `yaml:"oov"`
}

// ClusteringConfig holds the defaults for a clustering run.
type ClusteringConfig struct {
	Method   string `yaml:"method"`
	TopK     int    `yaml:"top_k"`
	Strategy string `yaml:"strategy"`
}

// ReportsConfig holds an optional override for report storage.
type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig controls logger output.
type LogConfig struct {
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Clustering: ClusteringConfig{
			Method:   "ward",
			TopK:     5,
			Strategy: "significant",
		},
		Embeddings: EmbeddingsConfig{OOV: "error"},
		Log:        LogConfig{Level: "info"},
	}
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.Clustering.Method == "" {
		c.Clustering.Method = d.Clustering.Method
	}
	if c.Clustering.TopK == 0 {
		c.Clustering.TopK = d.Clustering.TopK
	}
	if c.Clustering.Strategy == "" {
		c.Clustering.Strategy = d.Clustering.Strategy
	}
	if c.Embeddings.OOV == "" {
		c.Embeddings.OOV = d.Embeddings.OOV
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// HasEmbeddings returns true if an embedding table path is configured.
func (c *Config) HasEmbeddings() bool {
	return c.Embeddings.Path != ""
}

// LowerCaseFallback reports whether lookups retry with the lowercased token. Defaults to true.
func (c *Config) LowerCaseFallback() bool {
	if c.Embeddings.LowerCaseFallback == nil {
		return true
	}
	return *c.Embeddings.LowerCaseFallback
}

// GetEmbeddingsPath returns the embedding table path with ~ expanded.
func (c *Config) GetEmbeddingsPath() (string, error) {
	return ExpandPath(c.Embeddings.Path)
}

// GetReportsDir returns the report directory, defaulting to $XDG_DATA_HOME/dendro/reports.
func (c *Config) GetReportsDir() (string, error) {
	if c.Reports.Dir != "" {
		return ExpandPath(c.Reports.Dir)
	}
	return ReportsDir()
}

// ReportsDir returns the default report directory.
func ReportsDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "dendro", "reports"), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "dendro", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
