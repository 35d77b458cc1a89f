package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/llm"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// Classifier owns the LLM call for a batch and the parsing of
// its free-text response into one result per expected card.
type Classifier struct {
	llm              llm.Provider
	timeout          time.Duration
	fallbackLevel    models.Level
	nonCriticalLevel models.Level
}

// NewClassifier creates a criticality classifier
func NewClassifier(provider llm.Provider, fallbackLevel, nonCriticalLevel models.Level, timeout time.Duration) *Classifier {
	if !fallbackLevel.Valid() {
		fallbackLevel = models.LevelMedium
	}
	if !nonCriticalLevel.Valid() {
		nonCriticalLevel = models.LevelLow
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Classifier{
		llm:              provider,
		timeout:          timeout,
		fallbackLevel:    fallbackLevel,
		nonCriticalLevel: nonCriticalLevel,
	}
}

// Classify sends the rendered batch prompt to the LLM and reconciles the
// parsed response against the expected cards. The returned error covers
// only the whole-batch call failure; per-card parse problems are absorbed
// into fallback results. Exactly one result per expected card is returned.
func (c *Classifier) Classify(ctx context.Context, prompt string, expected []models.Card) ([]models.AnalysisResult, error) {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.llm.CompleteWithSystem(tctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("batch completion failed: %w", err)
	}

	return c.reconcile(raw, expected), nil
}

// Fallback produces a failed result for every card, used when the whole
// batch call errored out
func (c *Classifier) Fallback(cards []models.Card, reason string) []models.AnalysisResult {
	now := time.Now().UTC()
	results := make([]models.AnalysisResult, len(cards))
	for i, card := range cards {
		results[i] = c.fallbackResult(card, reason, now)
	}
	return results
}

// parsedLine is the outcome of parsing one response line for a known card
type parsedLine struct {
	result models.AnalysisResult
	ok     bool
	reason string
}

// reconcile matches parsed response lines to expected cards by identifier.
// Duplicates keep the first occurrence, unknown identifiers are discarded,
// and every expected card missing a well-formed line gets a fallback.
func (c *Classifier) reconcile(raw string, expected []models.Card) []models.AnalysisResult {
	now := time.Now().UTC()

	known := make(map[string]bool, len(expected))
	for _, card := range expected {
		known[card.ID] = true
	}

	parsed := make(map[string]parsedLine)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		id, pl := c.parseLine(line, now)
		if id == "" {
			continue
		}
		if !known[id] {
			log.Printf("Warning: discarding response line for unknown card %q: %s", id, excerpt(line))
			continue
		}
		if _, dup := parsed[id]; dup {
			log.Printf("Warning: duplicate response line for card %q ignored: %s", id, excerpt(line))
			continue
		}
		parsed[id] = pl
	}

	results := make([]models.AnalysisResult, 0, len(expected))
	for _, card := range expected {
		pl, found := parsed[card.ID]
		switch {
		case !found:
			results = append(results, c.fallbackResult(card, "card missing from model response", now))
		case !pl.ok:
			results = append(results, c.fallbackResult(card, pl.reason, now))
		default:
			result := pl.result
			result.CardName = card.Name
			results = append(results, result)
		}
	}

	return results
}

// parseLine extracts (card id, outcome) from one response line. An empty
// id means the line carried no recognizable identifier at all.
func (c *Classifier) parseLine(line string, now time.Time) (string, parsedLine) {
	body := strings.TrimSpace(line)
	if rest, found := cutPrefixFold(body, "CARD:"); found {
		body = strings.TrimSpace(rest)
	}

	parts := strings.Split(body, "|")
	if len(parts) < 2 {
		return "", parsedLine{}
	}

	id := strings.TrimSpace(parts[0])
	if id == "" {
		return "", parsedLine{}
	}

	flag := strings.ToUpper(strings.TrimSpace(parts[1]))
	var critical bool
	switch flag {
	case "OUI":
		critical = true
	case "NON":
		critical = false
	default:
		return id, parsedLine{reason: fmt.Sprintf("unexpected token %q in model response: %s", flag, excerpt(line))}
	}

	rest := parts[2:]
	level := c.nonCriticalLevel
	if len(rest) > 0 {
		if lvl, err := models.ParseLevel(rest[0]); err == nil {
			level = lvl
			rest = rest[1:]
		} else if critical {
			return id, parsedLine{reason: fmt.Sprintf("missing criticality tier for critical card: %s", excerpt(line))}
		}
	} else if critical {
		return id, parsedLine{reason: fmt.Sprintf("missing criticality tier for critical card: %s", excerpt(line))}
	}
	if !critical {
		// Non-critical cards always carry the nominal tier, whatever the
		// model emitted.
		level = c.nonCriticalLevel
	}

	justification := strings.TrimSpace(strings.Join(rest, "|"))

	return id, parsedLine{
		ok: true,
		result: models.AnalysisResult{
			CardID:        id,
			IsCritical:    critical,
			Level:         level,
			Justification: justification,
			Success:       true,
			AnalyzedAt:    now,
		},
	}
}

func (c *Classifier) fallbackResult(card models.Card, reason string, now time.Time) models.AnalysisResult {
	return models.AnalysisResult{
		CardID:        card.ID,
		CardName:      card.Name,
		IsCritical:    false,
		Level:         c.fallbackLevel,
		Justification: "classification failed: " + reason,
		Success:       false,
		AnalyzedAt:    now,
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func excerpt(line string) string {
	const maxLen = 120
	if len(line) <= maxLen {
		return line
	}
	return line[:maxLen] + "..."
}
