package config

import (
	"fmt"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	if cfg.Qdrant.URL == "" {
		errs = append(errs, ValidationError{"qdrant.url", "required"})
	}

	if cfg.Embedding.Primary.Provider == "" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "required"})
	} else if cfg.Embedding.Primary.Provider != "gemini" && cfg.Embedding.Primary.Provider != "openai" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.Embedding.Primary.APIKey == "" {
		errs = append(errs, ValidationError{"embedding.primary.api_key", "required"})
	}

	if cfg.LLM.Provider == "" {
		errs = append(errs, ValidationError{"llm.provider", "required"})
	} else if cfg.LLM.Provider != "gemini" && cfg.LLM.Provider != "openai" {
		errs = append(errs, ValidationError{"llm.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.LLM.APIKey == "" {
		errs = append(errs, ValidationError{"llm.api_key", "required"})
	}

	if cfg.Trello.APIKey == "" {
		errs = append(errs, ValidationError{"trello.api_key", "required"})
	}
	if cfg.Trello.Token == "" {
		errs = append(errs, ValidationError{"trello.token", "required"})
	}

	if cfg.Analysis.BatchSize < 1 {
		errs = append(errs, ValidationError{"analysis.batch_size", "must be at least 1"})
	}
	if _, err := models.ParseLevel(cfg.Analysis.FallbackLevel); err != nil {
		errs = append(errs, ValidationError{"analysis.fallback_level", "must be HIGH, MEDIUM or LOW"})
	}
	if _, err := models.ParseLevel(cfg.Analysis.NonCriticalLevel); err != nil {
		errs = append(errs, ValidationError{"analysis.non_critical_level", "must be HIGH, MEDIUM or LOW"})
	}

	return errs
}

// FallbackLevel returns the tier assigned when a card's classification fails
func (cfg *Config) FallbackLevel() models.Level {
	lvl, err := models.ParseLevel(cfg.Analysis.FallbackLevel)
	if err != nil {
		return models.LevelMedium
	}
	return lvl
}

// NonCriticalLevel returns the nominal tier assigned to non-critical cards
func (cfg *Config) NonCriticalLevel() models.Level {
	lvl, err := models.ParseLevel(cfg.Analysis.NonCriticalLevel)
	if err != nil {
		return models.LevelLow
	}
	return lvl
}
