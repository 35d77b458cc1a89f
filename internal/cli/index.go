package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/embedding"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/retrieval"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/vectordb"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Index project documents into the vector DB",
		Long: `Chunks the given text documents and indexes them in the documents
collection, from which the analysis retrieves context for each card.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			embedder, err := embedding.NewFallbackProvider(&cfg.Embedding)
			if err != nil {
				return fmt.Errorf("failed to create embedding provider: %w", err)
			}
			defer embedder.Close()

			vectors, err := vectordb.NewClient(&cfg.Qdrant)
			if err != nil {
				return fmt.Errorf("failed to connect to Qdrant: %w", err)
			}
			defer vectors.Close()

			if err := vectors.EnsureCollections(ctx); err != nil {
				return fmt.Errorf("failed to ensure collections: %w", err)
			}

			retriever := retrieval.NewRetriever(embedder, vectors,
				cfg.Analysis.DocTopN, cfg.Analysis.HistoryTopK,
				time.Duration(cfg.Analysis.SearchTimeoutSec)*time.Second)

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				chunks, err := retriever.IndexDocument(ctx, filepath.Base(path), string(content))
				if err != nil {
					return fmt.Errorf("failed to index %s: %w", path, err)
				}
				fmt.Printf("Indexed %s (%d chunks)\n", path, chunks)
			}
			return nil
		},
	}

	return cmd
}
