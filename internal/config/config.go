package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Trello    TrelloConfig    `yaml:"trello"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Database  DatabaseConfig  `yaml:"database"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL               string `yaml:"url"`
	APIKey            string `yaml:"api_key"`
	DocsCollection    string `yaml:"docs_collection"`
	HistoryCollection string `yaml:"history_collection"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"` // "gemini" or "openai"
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// LLMConfig contains the chat completion provider settings
type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// TrelloConfig contains Trello API credentials
type TrelloConfig struct {
	APIKey  string `yaml:"api_key"`
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// AnalysisConfig contains tuning knobs for the analysis pipeline
type AnalysisConfig struct {
	BatchSize        int    `yaml:"batch_size"`
	DocTopN          int    `yaml:"doc_top_n"`
	HistoryTopK      int    `yaml:"history_top_k"`
	FallbackLevel    string `yaml:"fallback_level"`
	NonCriticalLevel string `yaml:"non_critical_level"`
	LLMTimeoutSec    int    `yaml:"llm_timeout_seconds"`
	SearchTimeoutSec int    `yaml:"search_timeout_seconds"`
}

// DatabaseConfig contains the SQLite result store settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"trello-agent.yaml",
		"trello-agent.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "trello-agent", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Qdrant.DocsCollection == "" {
		cfg.Qdrant.DocsCollection = "project_documents"
	}
	if cfg.Qdrant.HistoryCollection == "" {
		cfg.Qdrant.HistoryCollection = "analysis_history"
	}
	if cfg.Trello.BaseURL == "" {
		cfg.Trello.BaseURL = "https://api.trello.com/1"
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}
	if cfg.Analysis.BatchSize == 0 {
		cfg.Analysis.BatchSize = 8
	}
	if cfg.Analysis.DocTopN == 0 {
		cfg.Analysis.DocTopN = 4
	}
	if cfg.Analysis.HistoryTopK == 0 {
		cfg.Analysis.HistoryTopK = 3
	}
	if cfg.Analysis.FallbackLevel == "" {
		cfg.Analysis.FallbackLevel = "MEDIUM"
	}
	if cfg.Analysis.NonCriticalLevel == "" {
		cfg.Analysis.NonCriticalLevel = "LOW"
	}
	if cfg.Analysis.LLMTimeoutSec == 0 {
		cfg.Analysis.LLMTimeoutSec = 120
	}
	if cfg.Analysis.SearchTimeoutSec == 0 {
		cfg.Analysis.SearchTimeoutSec = 15
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "trello-agent.db"
	}
}
