package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// CardContext pairs a card with its retrieved context for prompting
type CardContext struct {
	Card    models.Card
	Context models.ContextBundle
}

const systemPrompt = `You are a Senior Product Owner and certified Risk Analyst with over 15 years of experience in agile SaaS environments. Your mission is to assess the criticality of Trello cards based on business impact, user risk, and technical urgency, using the application documentation and the analysis history provided with each card.`

// BuildBatchPrompt renders one prompt for a whole batch of cards. Card
// sections are emitted in input order with their retrieved context, and the
// prompt ends with the exact output grammar the classifier parses.
func BuildBatchPrompt(entries []CardContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assess the criticality of the %d card(s) below.\n\n", len(entries))

	for i, entry := range entries {
		card := entry.Card

		fmt.Fprintf(&b, "━━━━━━━━━━━━━━━━━━\nCARD %d\n", i+1)
		fmt.Fprintf(&b, "- ID: %s\n", card.ID)
		fmt.Fprintf(&b, "- Title: %s\n", orNone(card.Name))
		fmt.Fprintf(&b, "- Description: %s\n", orNone(card.Desc))
		fmt.Fprintf(&b, "- Labels: %s\n", orNone(strings.Join(card.LabelNames(), ", ")))
		fmt.Fprintf(&b, "- Due Date: %s\n", formatDue(card.Due))
		fmt.Fprintf(&b, "- List: %s\n", orNone(card.ListName))
		fmt.Fprintf(&b, "- Members: %s\n", orNone(strings.Join(card.Members, ", ")))

		b.WriteString("\nDOCUMENTATION CONTEXT:\n")
		if len(entry.Context.DocExcerpts) == 0 {
			b.WriteString("No documentation context available for this card.\n")
		} else {
			for _, excerpt := range entry.Context.DocExcerpts {
				fmt.Fprintf(&b, "- %s\n", excerpt.Text)
			}
		}

		b.WriteString("\nSIMILAR CARDS HISTORY:\n")
		if len(entry.Context.SimilarAnalyses) == 0 {
			b.WriteString("No similar cards found in the analysis history.\n")
		} else {
			for _, prior := range entry.Context.SimilarAnalyses {
				fmt.Fprintf(&b, "- %q was rated %s: %s\n", prior.CardName, prior.Level, prior.Justification)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(grammarInstructions(entries))

	return b.String()
}

// grammarInstructions spells out the per-card response line format
func grammarInstructions(entries []CardContext) string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.Card.ID
	}

	var b strings.Builder
	b.WriteString("━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("FORMAT YOUR RESPONSE EXACTLY LIKE THIS, one line per card, nothing else:\n")
	b.WriteString("CARD: <card id> | <OUI or NON> | <HIGH, MEDIUM or LOW> | <short justification>\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- OUI means the card is critical, NON means it is not.\n")
	b.WriteString("- The criticality tier is mandatory when the card is critical.\n")
	b.WriteString("- Use the card id exactly as given; every card must appear exactly once.\n")
	b.WriteString("- Lines may be in any order.\n")
	fmt.Fprintf(&b, "- Card ids to cover: %s\n", strings.Join(ids, ", "))

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func formatDue(due *time.Time) string {
	if due == nil {
		return "None"
	}
	return due.Format("2006-01-02")
}
