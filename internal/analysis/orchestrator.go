package analysis

import (
	"context"
	"fmt"
	"log"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// ContextRetriever provides per-card context and records finished analyses
// back into the history collection
type ContextRetriever interface {
	Retrieve(ctx context.Context, card *models.Card) models.ContextBundle
	IndexAnalysis(ctx context.Context, card *models.Card, result *models.AnalysisResult, sessionID string) error
}

// CardClassifier turns a batch prompt into one result per expected card
type CardClassifier interface {
	Classify(ctx context.Context, prompt string, expected []models.Card) ([]models.AnalysisResult, error)
	Fallback(cards []models.Card, reason string) []models.AnalysisResult
}

// ResultStore persists sessions and the append-only analysis history
type ResultStore interface {
	CreateSession(ctx context.Context, boardID, listID string, reanalyse bool) (*models.AnalysisSession, error)
	SaveHistory(ctx context.Context, sessionID string, result models.AnalysisResult) error
}

// ActionPolicy resolves the side-effect configuration for a board
type ActionPolicy interface {
	Resolve(ctx context.Context, boardID string) (*models.BoardConfig, bool, error)
}

// Tracker performs the Trello side effects. Each call is independent; a
// failure of one never blocks the others.
type Tracker interface {
	AddCriticalityLabel(ctx context.Context, cardID, boardID string, level models.Level) error
	AddComment(ctx context.Context, cardID, text string) error
	MoveCard(ctx context.Context, cardID, listID string) error
}

// Orchestrator drives the batch analysis pipeline: it partitions cards
// into fixed-size batches, classifies each batch through one LLM call,
// persists every result, and applies the board's configured side effects.
// Per-batch and per-card failures degrade to fallback results; only a
// result store write failure aborts the run.
type Orchestrator struct {
	retriever  ContextRetriever
	classifier CardClassifier
	store      ResultStore
	policy     ActionPolicy
	tracker    Tracker
	batchSize  int
}

// NewOrchestrator creates a batch analysis orchestrator
func NewOrchestrator(retriever ContextRetriever, classifier CardClassifier, store ResultStore, policy ActionPolicy, tracker Tracker, batchSize int) *Orchestrator {
	if batchSize <= 0 {
		batchSize = 8
	}
	return &Orchestrator{
		retriever:  retriever,
		classifier: classifier,
		store:      store,
		policy:     policy,
		tracker:    tracker,
		batchSize:  batchSize,
	}
}

// Analyze runs the full pipeline for a list of cards belonging to one
// board. It always produces exactly one result per input card, in input
// order, and returns the completed session with its distribution.
func (o *Orchestrator) Analyze(ctx context.Context, cards []models.Card, boardID, listID string, reanalyse bool) (*models.AnalysisSession, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards to analyze")
	}

	session, err := o.store.CreateSession(ctx, boardID, listID, reanalyse)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis session: %w", err)
	}

	log.Printf("[orchestrator] session %s started: %d card(s), batch size %d, reanalyse=%v",
		session.Reference, len(cards), o.batchSize, reanalyse)

	cardsByID := make(map[string]*models.Card, len(cards))
	for i := range cards {
		cardsByID[cards[i].ID] = &cards[i]
	}

	for start := 0; start < len(cards); start += o.batchSize {
		end := start + o.batchSize
		if end > len(cards) {
			end = len(cards)
		}
		batch := cards[start:end]

		results := o.analyzeBatch(ctx, batch)

		// History rows are written in batch order, within a batch in card
		// order. A store write failure is the one unrecoverable error.
		for _, result := range results {
			if err := o.store.SaveHistory(ctx, session.ID, result); err != nil {
				return nil, fmt.Errorf("failed to persist analysis for card %s: %w", result.CardID, err)
			}
		}

		for i := range results {
			result := &results[i]
			if !result.Success {
				continue
			}
			card := cardsByID[result.CardID]
			if err := o.retriever.IndexAnalysis(ctx, card, result, session.ID); err != nil {
				log.Printf("Warning: failed to index analysis for card %s: %v", result.CardID, err)
			}
		}

		session.Results = append(session.Results, results...)
	}

	o.applyBoardActions(ctx, session, boardID)

	session.Distribution = computeDistribution(session.Results)
	log.Printf("[orchestrator] session %s done: %d analyzed, %d failed, distribution HIGH=%d MEDIUM=%d LOW=%d",
		session.Reference, session.Distribution.Succeeded, session.Distribution.Failed,
		session.Distribution.High, session.Distribution.Medium, session.Distribution.Low)

	return session, nil
}

// Reanalyze runs a fresh single-card session flagged as a re-analysis.
// The prior history entries for the card are left untouched.
func (o *Orchestrator) Reanalyze(ctx context.Context, card models.Card) (*models.AnalysisResult, error) {
	session, err := o.Analyze(ctx, []models.Card{card}, card.BoardID, "", true)
	if err != nil {
		return nil, err
	}
	if len(session.Results) != 1 {
		return nil, fmt.Errorf("expected one result for card %s, got %d", card.ID, len(session.Results))
	}
	return &session.Results[0], nil
}

// analyzeBatch retrieves context, builds the prompt and classifies one
// batch. A whole-batch LLM failure degrades every card to a fallback
// result instead of aborting the run.
func (o *Orchestrator) analyzeBatch(ctx context.Context, batch []models.Card) []models.AnalysisResult {
	entries := make([]CardContext, len(batch))
	for i := range batch {
		entries[i] = CardContext{
			Card:    batch[i],
			Context: o.retriever.Retrieve(ctx, &batch[i]),
		}
	}

	prompt := BuildBatchPrompt(entries)

	results, err := o.classifier.Classify(ctx, prompt, batch)
	if err != nil {
		log.Printf("Warning: batch of %d card(s) failed entirely: %v", len(batch), err)
		return o.classifier.Fallback(batch, "batch classification call failed")
	}
	return results
}

// applyBoardActions resolves the board configuration and performs the
// configured side effects for every successful critical result. The three
// actions are independent per card; each failure is logged and isolated.
func (o *Orchestrator) applyBoardActions(ctx context.Context, session *models.AnalysisSession, boardID string) {
	cfg, found, err := o.policy.Resolve(ctx, boardID)
	if err != nil {
		log.Printf("Warning: board config lookup failed for %s, skipping actions: %v", boardID, err)
		return
	}
	if !found {
		log.Printf("[orchestrator] no configuration for board %s, skipping actions", boardID)
		return
	}

	for i := range session.Results {
		result := &session.Results[i]
		if !result.Success || !result.IsCritical {
			continue
		}

		if cfg.AddLabels {
			if err := o.tracker.AddCriticalityLabel(ctx, result.CardID, boardID, result.Level); err != nil {
				log.Printf("Warning: label failed for card %s: %v", result.CardID, err)
			}
		}

		if cfg.AddComments && result.Justification != "" {
			if err := o.tracker.AddComment(ctx, result.CardID, result.Justification); err != nil {
				log.Printf("Warning: comment failed for card %s: %v", result.CardID, err)
			}
		}

		if cfg.MoveHighCards && result.Level == models.LevelHigh && cfg.TargetListID != "" {
			if err := o.tracker.MoveCard(ctx, result.CardID, cfg.TargetListID); err != nil {
				log.Printf("Warning: move failed for card %s: %v", result.CardID, err)
			}
		}
	}
}

// computeDistribution aggregates the session's criticality split
func computeDistribution(results []models.AnalysisResult) models.Distribution {
	dist := models.Distribution{Total: len(results)}

	for _, r := range results {
		if r.Success {
			dist.Succeeded++
		} else {
			dist.Failed++
			continue
		}

		if r.IsCritical {
			dist.Critical++
			switch r.Level {
			case models.LevelHigh:
				dist.High++
			case models.LevelMedium:
				dist.Medium++
			case models.LevelLow:
				dist.Low++
			}
		} else {
			dist.NonCritical++
		}
	}

	if dist.Total > 0 {
		dist.SuccessRate = float64(dist.Succeeded) / float64(dist.Total) * 100
	}

	return dist
}
