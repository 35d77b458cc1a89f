package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
	"github.com/qdrant/go-client/qdrant"
)

// UpsertAnalysis stores a finished card analysis in the history collection
// so future classifications of similar cards can retrieve it
func (c *Client) UpsertAnalysis(ctx context.Context, card *models.Card, result *models.AnalysisResult, sessionID string, vector []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(models.HistoryPointID(card.ID, sessionID)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: map[string]*qdrant.Value{
			"card_id":           qdrant.NewValueString(card.ID),
			"card_name":         qdrant.NewValueString(card.Name),
			"summary":           qdrant.NewValueString(summarize(card.Desc)),
			"board_id":          qdrant.NewValueString(card.BoardID),
			"board_name":        qdrant.NewValueString(card.BoardName),
			"criticality_level": qdrant.NewValueString(string(result.Level)),
			"is_critical":       qdrant.NewValueBool(result.IsCritical),
			"justification":     qdrant.NewValueString(result.Justification),
			"analyzed_at":       qdrant.NewValueString(result.AnalyzedAt.UTC().Format(time.RFC3339)),
		},
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.historyCollection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("history upsert failed: %w", err)
	}
	return nil
}

// SearchAnalyses finds prior analyses most similar to the query
func (c *Client) SearchAnalyses(ctx context.Context, vector []float32, limit int) ([]models.PriorAnalysis, error) {
	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.historyCollection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}

	analyses := make([]models.PriorAnalysis, 0, len(points))
	for _, point := range points {
		prior := payloadToPriorAnalysis(point.Payload)
		prior.Score = float64(point.Score)
		analyses = append(analyses, prior)
	}

	return analyses, nil
}

// payloadToPriorAnalysis converts a Qdrant payload to a PriorAnalysis
func payloadToPriorAnalysis(payload map[string]*qdrant.Value) models.PriorAnalysis {
	prior := models.PriorAnalysis{}

	if v := payload["card_name"]; v != nil {
		prior.CardName = v.GetStringValue()
	}
	if v := payload["summary"]; v != nil {
		prior.Summary = v.GetStringValue()
	}
	if v := payload["criticality_level"]; v != nil {
		if lvl, err := models.ParseLevel(v.GetStringValue()); err == nil {
			prior.Level = lvl
		}
	}
	if v := payload["justification"]; v != nil {
		prior.Justification = v.GetStringValue()
	}

	return prior
}

// summarize bounds a card description for storage as history context
func summarize(desc string) string {
	const maxLen = 500
	if len(desc) <= maxLen {
		return desc
	}
	return desc[:maxLen] + "..."
}
