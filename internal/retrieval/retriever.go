package retrieval

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/embedding"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/vectordb"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// VectorStore is the subset of vector store operations the retriever needs
type VectorStore interface {
	SearchDocuments(ctx context.Context, vector []float32, limit int) ([]models.Excerpt, error)
	SearchAnalyses(ctx context.Context, vector []float32, limit int) ([]models.PriorAnalysis, error)
	UpsertAnalysis(ctx context.Context, card *models.Card, result *models.AnalysisResult, sessionID string, vector []float32) error
	UpsertDocumentChunks(ctx context.Context, chunks []vectordb.DocumentChunk, vectors [][]float32) error
}

// Retriever gathers per-card context from the documentation and
// analysis-history collections. Both retrievals are best-effort: a failed
// or empty search degrades that half of the bundle to empty, it never
// fails the analysis.
type Retriever struct {
	embedder    embedding.Provider
	store       VectorStore
	docTopN     int
	historyTopK int
	timeout     time.Duration
}

// NewRetriever creates a context retriever
func NewRetriever(embedder embedding.Provider, store VectorStore, docTopN, historyTopK int, timeout time.Duration) *Retriever {
	if docTopN <= 0 {
		docTopN = 4
	}
	if historyTopK <= 0 {
		historyTopK = 3
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Retriever{
		embedder:    embedder,
		store:       store,
		docTopN:     docTopN,
		historyTopK: historyTopK,
		timeout:     timeout,
	}
}

// Retrieve returns the context bundle for a card. The card fingerprint is
// embedded once and used as the query for both collections.
func (r *Retriever) Retrieve(ctx context.Context, card *models.Card) models.ContextBundle {
	bundle := models.ContextBundle{}

	query := embedding.PrepareQueryText(card.Fingerprint())
	if query == "" {
		log.Printf("Warning: card %s has no text to search context for", card.ID)
		return bundle
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vector, err := r.embedder.Embed(embedCtx, query)
	if err != nil {
		log.Printf("Warning: context embedding failed for card %s: %v", card.ID, err)
		return bundle
	}

	docCtx, cancelDocs := context.WithTimeout(ctx, r.timeout)
	defer cancelDocs()
	excerpts, err := r.store.SearchDocuments(docCtx, vector, r.docTopN)
	if err != nil {
		log.Printf("Warning: document retrieval failed for card %s: %v", card.ID, err)
	} else {
		bundle.DocExcerpts = excerpts
	}

	histCtx, cancelHist := context.WithTimeout(ctx, r.timeout)
	defer cancelHist()
	priors, err := r.store.SearchAnalyses(histCtx, vector, r.historyTopK)
	if err != nil {
		log.Printf("Warning: history retrieval failed for card %s: %v", card.ID, err)
	} else {
		bundle.SimilarAnalyses = priors
	}

	return bundle
}

// IndexAnalysis appends a finished analysis to the history collection so it
// can surface as context for future similar cards
func (r *Retriever) IndexAnalysis(ctx context.Context, card *models.Card, result *models.AnalysisResult, sessionID string) error {
	query := embedding.PrepareQueryText(card.Fingerprint())
	if query == "" {
		return fmt.Errorf("card %s has no text to index", card.ID)
	}

	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vector, err := r.embedder.Embed(tctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed analysis for card %s: %w", card.ID, err)
	}

	return r.store.UpsertAnalysis(ctx, card, result, sessionID, vector)
}

// IndexDocument chunks a documentation file and stores it in the docs
// collection. Returns the number of chunks indexed.
func (r *Retriever) IndexDocument(ctx context.Context, filename, content string) (int, error) {
	pieces := ChunkText(content, defaultChunkSize, defaultChunkOverlap)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("document %s is empty", filename)
	}

	chunks := make([]vectordb.DocumentChunk, len(pieces))
	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		chunks[i] = vectordb.DocumentChunk{
			Filename:   filename,
			ChunkIndex: i,
			Text:       piece,
		}
		texts[i] = piece
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed document %s: %w", filename, err)
	}

	if err := r.store.UpsertDocumentChunks(ctx, chunks, vectors); err != nil {
		return 0, err
	}

	return len(chunks), nil
}
