package vectordb

import (
	"context"
	"fmt"
	"log"

	"github.com/qdrant/go-client/qdrant"
)

const vectorDimensions = 768

// EnsureCollections creates the document and history collections if missing
func (c *Client) EnsureCollections(ctx context.Context) error {
	if err := c.ensureCollection(ctx, c.docsCollection, nil); err != nil {
		return err
	}
	historyIndexes := []struct {
		field     string
		fieldType qdrant.FieldType
	}{
		{"card_id", qdrant.FieldType_FieldTypeKeyword},
		{"board_id", qdrant.FieldType_FieldTypeKeyword},
		{"criticality_level", qdrant.FieldType_FieldTypeKeyword},
	}
	return c.ensureCollection(ctx, c.historyCollection, historyIndexes)
}

func (c *Client) ensureCollection(ctx context.Context, name string, indexes []struct {
	field     string
	fieldType qdrant.FieldType
}) error {
	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}

	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorDimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	for _, idx := range indexes {
		_, err = c.qdrant.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      idx.field,
			FieldType:      qdrant.PtrOf(idx.fieldType),
		})
		if err != nil {
			// Index creation failure is not fatal
			log.Printf("Warning: failed to create index for %s.%s: %v", name, idx.field, err)
		}
	}

	return nil
}
