package models

import "time"

// AnalysisResult is the outcome of classifying a single card.
// Success is false when the result came from a fallback (missing or
// unparseable LLM output, or a failed batch call) rather than a valid
// parsed response.
type AnalysisResult struct {
	CardID        string    `json:"card_id"`
	CardName      string    `json:"card_name"`
	IsCritical    bool      `json:"is_critical"`
	Level         Level     `json:"criticality_level"`
	Justification string    `json:"justification"`
	Success       bool      `json:"success"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// AnalysisSession groups every result produced by one pipeline invocation
// against one board. Reanalyse distinguishes an explicit re-analysis from
// an initial pass.
type AnalysisSession struct {
	ID           string           `json:"id"`
	Reference    string           `json:"reference"`
	BoardID      string           `json:"board_id"`
	ListID       string           `json:"list_id"`
	Reanalyse    bool             `json:"reanalyse"`
	CreatedAt    time.Time        `json:"created_at"`
	Results      []AnalysisResult `json:"results"`
	Distribution Distribution     `json:"distribution"`
}

// Distribution summarizes the criticality split of a session
type Distribution struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	Critical    int     `json:"critical"`
	NonCritical int     `json:"non_critical"`
	High        int     `json:"high"`
	Medium      int     `json:"medium"`
	Low         int     `json:"low"`
	SuccessRate float64 `json:"success_rate"`
}

// HistoryEntry is an immutable audit record linking a card to the result
// it received in one session. Re-analysis appends a new entry, it never
// rewrites an old one.
type HistoryEntry struct {
	ID            int64     `json:"id"`
	CardID        string    `json:"card_id"`
	SessionID     string    `json:"session_id"`
	CardName      string    `json:"card_name"`
	IsCritical    bool      `json:"is_critical"`
	Level         Level     `json:"criticality_level"`
	Justification string    `json:"justification"`
	Success       bool      `json:"success"`
	Reanalyse     bool      `json:"reanalyse"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// BoardConfig holds the per-board side-effect configuration. Absence of a
// config for a board means no side effects are applied there.
type BoardConfig struct {
	BoardID        string `yaml:"board_id" json:"board_id"`
	TargetListID   string `yaml:"target_list_id" json:"target_list_id"`
	TargetListName string `yaml:"target_list_name" json:"target_list_name"`
	MoveHighCards  bool   `yaml:"move_high_cards" json:"move_high_cards"`
	AddLabels      bool   `yaml:"add_labels" json:"add_labels"`
	AddComments    bool   `yaml:"add_comments" json:"add_comments"`
}
