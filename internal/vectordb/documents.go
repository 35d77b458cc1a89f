package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
	"github.com/qdrant/go-client/qdrant"
)

// DocumentChunk is one indexed fragment of an uploaded documentation file
type DocumentChunk struct {
	Filename   string
	ChunkIndex int
	Text       string
}

// UpsertDocumentChunks stores documentation fragments in the docs collection
func (c *Client) UpsertDocumentChunks(ctx context.Context, chunks []DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch")
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(documentChunkID(chunk)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: map[string]*qdrant.Value{
				"filename":    qdrant.NewValueString(chunk.Filename),
				"chunk_index": qdrant.NewValueInt(int64(chunk.ChunkIndex)),
				"text":        qdrant.NewValueString(chunk.Text),
				"indexed_at":  qdrant.NewValueString(time.Now().UTC().Format(time.RFC3339)),
			},
		}
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.docsCollection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("document upsert failed: %w", err)
	}
	return nil
}

// SearchDocuments finds the documentation excerpts most similar to the query
func (c *Client) SearchDocuments(ctx context.Context, vector []float32, limit int) ([]models.Excerpt, error) {
	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.docsCollection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("document search failed: %w", err)
	}

	excerpts := make([]models.Excerpt, 0, len(points))
	for _, point := range points {
		var text string
		if v := point.Payload["text"]; v != nil {
			text = v.GetStringValue()
		}
		if text == "" {
			continue
		}
		excerpts = append(excerpts, models.Excerpt{
			Text:  text,
			Score: float64(point.Score),
		})
	}

	return excerpts, nil
}

// documentChunkID generates a deterministic point ID so re-indexing a file
// overwrites its previous chunks instead of duplicating them
func documentChunkID(chunk DocumentChunk) string {
	data := fmt.Sprintf("%s#%d", chunk.Filename, chunk.ChunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}
