package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Defaults for card-fingerprint embeddings. 768 dimensions matches the
// Qdrant collections this system creates.
const (
	defaultGeminiEmbedModel = "gemini-embedding-001"
	defaultDimensions       = 768
)

// GeminiProvider embeds card fingerprints and documentation chunks with
// the Gemini embedding API. Requests carry the semantic-similarity task
// hint since every vector ends up in a cosine similarity search.
type GeminiProvider struct {
	client *genai.Client
	model  string
	dims   int32
}

// NewGeminiProvider creates a Gemini embedding provider
func NewGeminiProvider(apiKey, model string, dimensions int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding provider requires an api key")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = defaultGeminiEmbedModel
	}
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		dims:   int32(dimensions),
	}, nil
}

// Embed embeds a single card fingerprint or query
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds a batch of texts in one API call. Blank texts are
// rejected up front; a card without name and description has nothing to
// search on.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to embed")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text %d is empty", i)
		}
		contents[i] = &genai.Content{
			Parts: []*genai.Part{
				{Text: text},
			},
		}
	}

	dims := p.dims
	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors",
			len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// Close releases resources
func (p *GeminiProvider) Close() error {
	return nil
}
