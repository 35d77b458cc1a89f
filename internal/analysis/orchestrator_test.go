package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// scriptedLLM replays one canned response (or error) per batch call
type scriptedLLM struct {
	turns []scriptedTurn
	calls int
}

type scriptedTurn struct {
	response string
	err      error
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *scriptedLLM) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	if s.calls >= len(s.turns) {
		return "", errors.New("no scripted response left")
	}
	turn := s.turns[s.calls]
	s.calls++
	return turn.response, turn.err
}

func (s *scriptedLLM) Close() error { return nil }

type stubRetriever struct {
	indexed []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, card *models.Card) models.ContextBundle {
	return models.ContextBundle{}
}

func (s *stubRetriever) IndexAnalysis(ctx context.Context, card *models.Card, result *models.AnalysisResult, sessionID string) error {
	s.indexed = append(s.indexed, card.ID)
	return nil
}

type memoryStore struct {
	sessions  []*models.AnalysisSession
	history   []models.HistoryEntry
	saveErr   error
	createErr error
}

func (m *memoryStore) CreateSession(ctx context.Context, boardID, listID string, reanalyse bool) (*models.AnalysisSession, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	session := &models.AnalysisSession{
		ID:        fmt.Sprintf("session-%d", len(m.sessions)+1),
		Reference: fmt.Sprintf("ANALYSE-20260831-%03d", len(m.sessions)+1),
		BoardID:   boardID,
		ListID:    listID,
		Reanalyse: reanalyse,
		CreatedAt: time.Now().UTC(),
	}
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *memoryStore) SaveHistory(ctx context.Context, sessionID string, result models.AnalysisResult) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	reanalyse := false
	for _, s := range m.sessions {
		if s.ID == sessionID {
			reanalyse = s.Reanalyse
		}
	}
	m.history = append(m.history, models.HistoryEntry{
		ID:            int64(len(m.history) + 1),
		CardID:        result.CardID,
		SessionID:     sessionID,
		CardName:      result.CardName,
		IsCritical:    result.IsCritical,
		Level:         result.Level,
		Justification: result.Justification,
		Success:       result.Success,
		Reanalyse:     reanalyse,
		AnalyzedAt:    result.AnalyzedAt,
	})
	return nil
}

func (m *memoryStore) historyFor(cardID string) []models.HistoryEntry {
	var entries []models.HistoryEntry
	for _, e := range m.history {
		if e.CardID == cardID {
			entries = append(entries, e)
		}
	}
	return entries
}

type memoryPolicy struct {
	configs map[string]models.BoardConfig
	err     error
}

func (m *memoryPolicy) Resolve(ctx context.Context, boardID string) (*models.BoardConfig, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	cfg, ok := m.configs[boardID]
	if !ok {
		return nil, false, nil
	}
	return &cfg, true, nil
}

type actionCall struct {
	kind   string
	cardID string
	arg    string
}

type recordingTracker struct {
	calls    []actionCall
	labelErr error
}

func (r *recordingTracker) AddCriticalityLabel(ctx context.Context, cardID, boardID string, level models.Level) error {
	r.calls = append(r.calls, actionCall{"label", cardID, string(level)})
	return r.labelErr
}

func (r *recordingTracker) AddComment(ctx context.Context, cardID, text string) error {
	r.calls = append(r.calls, actionCall{"comment", cardID, text})
	return nil
}

func (r *recordingTracker) MoveCard(ctx context.Context, cardID, listID string) error {
	r.calls = append(r.calls, actionCall{"move", cardID, listID})
	return nil
}

func (r *recordingTracker) callsOf(kind string) []actionCall {
	var out []actionCall
	for _, c := range r.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type orchFixture struct {
	orch    *Orchestrator
	store   *memoryStore
	tracker *recordingTracker
	ret     *stubRetriever
}

func newFixture(llmTurns []scriptedTurn, batchSize int, configs map[string]models.BoardConfig) *orchFixture {
	store := &memoryStore{}
	tracker := &recordingTracker{}
	ret := &stubRetriever{}
	classifier := NewClassifier(&scriptedLLM{turns: llmTurns}, models.LevelMedium, models.LevelLow, time.Minute)
	orch := NewOrchestrator(ret, classifier, store, &memoryPolicy{configs: configs}, tracker, batchSize)
	return &orchFixture{orch: orch, store: store, tracker: tracker, ret: ret}
}

func twoCards() []models.Card {
	return []models.Card{
		{ID: "c1", Name: "Login broken", Desc: "all users blocked", BoardID: "B1"},
		{ID: "c2", Name: "Typo in footer", BoardID: "B1"},
	}
}

func TestAnalyzeEmptyListCreatesNoSession(t *testing.T) {
	f := newFixture(nil, 2, nil)

	if _, err := f.orch.Analyze(context.Background(), nil, "B1", "L1", false); err == nil {
		t.Fatal("Analyze() with no cards should fail")
	}
	if len(f.store.sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(f.store.sessions))
	}
}

func TestAnalyzeWellFormedBatch(t *testing.T) {
	f := newFixture([]scriptedTurn{
		{response: "CARD: c1 | OUI | HIGH | login outage\nCARD: c2 | NON | LOW | cosmetic"},
	}, 2, nil)

	session, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(session.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(session.Results))
	}

	c1 := session.Results[0]
	if !c1.IsCritical || c1.Level != models.LevelHigh || !c1.Success {
		t.Errorf("c1 = %+v, want critical HIGH success", c1)
	}
	c2 := session.Results[1]
	if c2.IsCritical || !c2.Success {
		t.Errorf("c2 = %+v, want non-critical success", c2)
	}

	dist := session.Distribution
	if dist.High != 1 || dist.NonCritical != 1 || dist.Total != 2 || dist.Succeeded != 2 {
		t.Errorf("distribution = %+v, want HIGH:1 non-critical:1", dist)
	}

	if len(f.store.history) != 2 {
		t.Errorf("history entries = %d, want 2", len(f.store.history))
	}
}

func TestAnalyzeProducesResultPerCardEvenWhenEveryBatchFails(t *testing.T) {
	cards := make([]models.Card, 5)
	for i := range cards {
		cards[i] = models.Card{ID: fmt.Sprintf("c%d", i+1), Name: fmt.Sprintf("Card %d", i+1), BoardID: "B1"}
	}

	f := newFixture([]scriptedTurn{
		{err: errors.New("provider down")},
		{err: errors.New("provider down")},
		{err: errors.New("provider down")},
	}, 2, nil)

	session, err := f.orch.Analyze(context.Background(), cards, "B1", "L1", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v (batch failures must not abort the run)", err)
	}

	if len(session.Results) != 5 {
		t.Fatalf("got %d results, want 5", len(session.Results))
	}

	seen := make(map[string]bool)
	for _, r := range session.Results {
		if r.Success {
			t.Errorf("card %s should be a fallback", r.CardID)
		}
		if r.Level != models.LevelMedium {
			t.Errorf("card %s fallback level = %v, want MEDIUM", r.CardID, r.Level)
		}
		if seen[r.CardID] {
			t.Errorf("duplicate result for card %s", r.CardID)
		}
		seen[r.CardID] = true
	}
	for _, c := range cards {
		if !seen[c.ID] {
			t.Errorf("no result for card %s", c.ID)
		}
	}

	// Failed classifications are still persisted for audit
	if len(f.store.history) != 5 {
		t.Errorf("history entries = %d, want 5", len(f.store.history))
	}
}

func TestAnalyzeBatchIsolation(t *testing.T) {
	cards := []models.Card{
		{ID: "c1", Name: "First", BoardID: "B1"},
		{ID: "c2", Name: "Second", BoardID: "B1"},
	}

	// Batch size 1: first batch fails, second succeeds
	f := newFixture([]scriptedTurn{
		{err: errors.New("timeout")},
		{response: "CARD: c2 | NON | LOW | fine"},
	}, 1, nil)

	session, err := f.orch.Analyze(context.Background(), cards, "B1", "L1", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if session.Results[0].Success {
		t.Error("c1 should be a fallback after its batch failed")
	}
	if !session.Results[1].Success {
		t.Error("c2's batch should have run despite c1's failure")
	}
}

func TestAnalyzePartialResponse(t *testing.T) {
	f := newFixture([]scriptedTurn{
		{response: "CARD: c1 | OUI | HIGH | outage"},
	}, 2, nil)

	session, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !session.Results[0].Success || session.Results[0].Level != models.LevelHigh {
		t.Errorf("c1 = %+v", session.Results[0])
	}
	if session.Results[1].Success {
		t.Error("c2 should be a fallback")
	}
	if session.Results[1].Level != models.LevelMedium {
		t.Errorf("c2 fallback level = %v, want MEDIUM", session.Results[1].Level)
	}

	// Both entries written, fallback included
	if len(f.store.history) != 2 {
		t.Errorf("history entries = %d, want 2", len(f.store.history))
	}

	// Only the successful result is indexed as future context
	if len(f.ret.indexed) != 1 || f.ret.indexed[0] != "c1" {
		t.Errorf("indexed = %v, want [c1]", f.ret.indexed)
	}
}

func TestAnalyzeHistoryWrittenInBatchOrder(t *testing.T) {
	cards := []models.Card{
		{ID: "c1", Name: "A", BoardID: "B1"},
		{ID: "c2", Name: "B", BoardID: "B1"},
		{ID: "c3", Name: "C", BoardID: "B1"},
	}

	// The model answers out of order; history order must follow input order
	f := newFixture([]scriptedTurn{
		{response: "CARD: c2 | NON | LOW | b\nCARD: c1 | NON | LOW | a"},
		{response: "CARD: c3 | NON | LOW | c"},
	}, 2, nil)

	if _, err := f.orch.Analyze(context.Background(), cards, "B1", "L1", false); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := []string{"c1", "c2", "c3"}
	for i, entry := range f.store.history {
		if entry.CardID != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, entry.CardID, want[i])
		}
	}
}

func TestAnalyzeStoreFailureIsHard(t *testing.T) {
	f := newFixture([]scriptedTurn{
		{response: "CARD: c1 | OUI | HIGH | outage\nCARD: c2 | NON | LOW | fine"},
	}, 2, nil)
	f.store.saveErr = errors.New("database is locked")

	if _, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false); err == nil {
		t.Fatal("expected hard failure when the result store is unavailable")
	}
}

func TestAnalyzeBoardActions(t *testing.T) {
	configs := map[string]models.BoardConfig{
		"B1": {
			BoardID:       "B1",
			TargetListID:  "Ldone",
			MoveHighCards: true,
			AddLabels:     true,
			AddComments:   true,
		},
	}

	response := "CARD: c1 | OUI | HIGH | login outage\nCARD: c2 | NON | LOW | cosmetic"

	t.Run("configured board triggers actions for critical cards", func(t *testing.T) {
		f := newFixture([]scriptedTurn{{response: response}}, 2, configs)

		if _, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		moves := f.tracker.callsOf("move")
		if len(moves) != 1 || moves[0].cardID != "c1" || moves[0].arg != "Ldone" {
			t.Errorf("moves = %+v, want exactly one move of c1 to Ldone", moves)
		}

		labels := f.tracker.callsOf("label")
		if len(labels) != 1 || labels[0].cardID != "c1" || labels[0].arg != "HIGH" {
			t.Errorf("labels = %+v, want one HIGH label on c1", labels)
		}

		comments := f.tracker.callsOf("comment")
		if len(comments) != 1 || comments[0].cardID != "c1" {
			t.Errorf("comments = %+v, want one comment on c1", comments)
		}
	})

	t.Run("unconfigured board triggers no actions", func(t *testing.T) {
		f := newFixture([]scriptedTurn{{response: response}}, 2, configs)

		cards := twoCards()
		for i := range cards {
			cards[i].BoardID = "B2"
		}
		if _, err := f.orch.Analyze(context.Background(), cards, "B2", "L1", false); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		if len(f.tracker.calls) != 0 {
			t.Errorf("tracker calls = %+v, want none for unconfigured board", f.tracker.calls)
		}
		// Analysis and persistence still happen
		if len(f.store.history) != 2 {
			t.Errorf("history entries = %d, want 2", len(f.store.history))
		}
	})

	t.Run("label failure does not block comment and move", func(t *testing.T) {
		f := newFixture([]scriptedTurn{{response: response}}, 2, configs)
		f.tracker.labelErr = errors.New("label API down")

		if _, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		if len(f.tracker.callsOf("comment")) != 1 {
			t.Error("comment should be attempted despite label failure")
		}
		if len(f.tracker.callsOf("move")) != 1 {
			t.Error("move should be attempted despite label failure")
		}
	})

	t.Run("fallback results trigger no actions", func(t *testing.T) {
		f := newFixture([]scriptedTurn{{err: errors.New("provider down")}}, 2, configs)

		if _, err := f.orch.Analyze(context.Background(), twoCards(), "B1", "L1", false); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if len(f.tracker.calls) != 0 {
			t.Errorf("tracker calls = %+v, want none for fallback results", f.tracker.calls)
		}
	})
}

func TestReanalyzeAppendsHistory(t *testing.T) {
	f := newFixture([]scriptedTurn{
		{response: "CARD: c1 | NON | LOW | fine"},
		{response: "CARD: c1 | OUI | HIGH | situation changed"},
	}, 8, nil)

	card := models.Card{ID: "c1", Name: "Login broken", BoardID: "B1"}

	if _, err := f.orch.Analyze(context.Background(), []models.Card{card}, "B1", "L1", false); err != nil {
		t.Fatalf("initial Analyze() error = %v", err)
	}

	result, err := f.orch.Reanalyze(context.Background(), card)
	if err != nil {
		t.Fatalf("Reanalyze() error = %v", err)
	}
	if !result.IsCritical || result.Level != models.LevelHigh {
		t.Errorf("reanalysis result = %+v", result)
	}

	entries := f.store.historyFor("c1")
	if len(entries) != 2 {
		t.Fatalf("history entries = %d, want 2 (append-only)", len(entries))
	}
	if entries[0].Reanalyse {
		t.Error("first entry should belong to the initial session")
	}
	if !entries[1].Reanalyse {
		t.Error("newest entry should belong to a reanalyse session")
	}
	if len(f.store.sessions) != 2 {
		t.Errorf("sessions = %d, want 2 (re-analysis creates a fresh session)", len(f.store.sessions))
	}
}
