package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/analysis"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/embedding"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/llm"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/policy"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/retrieval"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/store"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/trello"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/vectordb"
)

// app bundles the fully wired pipeline for the CLI commands
type app struct {
	cfg          *config.Config
	store        *store.Store
	trello       *trello.Client
	llm          llm.Provider
	embedder     *embedding.FallbackProvider
	vectors      *vectordb.Client
	retriever    *retrieval.Retriever
	orchestrator *analysis.Orchestrator
}

// newApp builds the whole stack from the configuration. Callers must
// Close it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var err error
	if a.store, err = store.Open(cfg.Database.Path); err != nil {
		return nil, err
	}

	if a.trello, err = trello.NewClient(&cfg.Trello); err != nil {
		a.Close()
		return nil, err
	}

	if a.llm, err = llm.New(&cfg.LLM); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	if a.embedder, err = embedding.NewFallbackProvider(&cfg.Embedding); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	if a.vectors, err = vectordb.NewClient(&cfg.Qdrant); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	if err := a.vectors.EnsureCollections(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ensure collections: %w", err)
	}

	a.retriever = retrieval.NewRetriever(a.embedder, a.vectors,
		cfg.Analysis.DocTopN, cfg.Analysis.HistoryTopK,
		time.Duration(cfg.Analysis.SearchTimeoutSec)*time.Second)

	classifier := analysis.NewClassifier(a.llm,
		cfg.FallbackLevel(), cfg.NonCriticalLevel(),
		time.Duration(cfg.Analysis.LLMTimeoutSec)*time.Second)

	resolver := policy.NewResolver(a.store)

	a.orchestrator = analysis.NewOrchestrator(a.retriever, classifier,
		a.store, resolver, a.trello, cfg.Analysis.BatchSize)

	return a, nil
}

func (a *app) Close() {
	if a.vectors != nil {
		a.vectors.Close()
	}
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.llm != nil {
		a.llm.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
