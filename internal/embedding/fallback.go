package embedding

import (
	"context"
	"fmt"
	"log"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
)

// FallbackProvider chains a primary and an optional fallback embedding
// provider. Card context retrieval treats a missing embedding as "no
// context", so the fallback gives a second chance before an analysis
// proceeds without documentation or history.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
}

// NewFallbackProvider builds the provider chain from the embedding
// configuration. A broken fallback configuration is logged and ignored;
// only the primary is mandatory.
func NewFallbackProvider(cfg *config.EmbeddingConfig) (*FallbackProvider, error) {
	primary, err := newProvider(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary embedding provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" && cfg.Fallback.APIKey != "" {
		fallback, err = newProvider(&cfg.Fallback)
		if err != nil {
			log.Printf("Warning: failed to create fallback embedding provider: %v", err)
		}
	}

	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
	}, nil
}

func newProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// Embed embeds one card fingerprint, switching to the fallback provider
// when the primary fails
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.primary.Embed(ctx, text)
	if err == nil {
		return vector, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback configured): %w", err)
	}

	log.Printf("Warning: primary embedding failed, trying fallback: %v", err)
	return p.fallback.Embed(ctx, text)
}

// EmbedBatch embeds document chunks, switching to the fallback provider
// when the primary fails
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return vectors, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback configured): %w", err)
	}

	log.Printf("Warning: primary batch embedding failed, trying fallback: %v", err)
	return p.fallback.EmbedBatch(ctx, texts)
}

// Close releases both providers
func (p *FallbackProvider) Close() error {
	var firstErr error
	if err := p.primary.Close(); err != nil {
		firstErr = err
	}
	if p.fallback != nil {
		if err := p.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
