package trello

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// levelColors maps criticality tiers to the Trello label color used for
// the "Priority - <Level>" labels
var levelColors = map[models.Level]string{
	models.LevelHigh:   "red",
	models.LevelMedium: "orange",
	models.LevelLow:    "green",
}

// LabelName returns the board label name for a criticality tier
func LabelName(level models.Level) string {
	switch level {
	case models.LevelHigh:
		return "Priority - High"
	case models.LevelMedium:
		return "Priority - Medium"
	case models.LevelLow:
		return "Priority - Low"
	}
	return "Priority - " + string(level)
}

type boardLabel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AddCriticalityLabel attaches the tier's priority label to a card,
// creating the label on the board first when it does not exist yet
func (c *Client) AddCriticalityLabel(ctx context.Context, cardID, boardID string, level models.Level) error {
	name := LabelName(level)

	var labels []boardLabel
	if err := c.do(ctx, "GET", "/boards/"+boardID+"/labels", url.Values{"fields": {"name,color"}}, &labels); err != nil {
		return fmt.Errorf("failed to list labels of board %s: %w", boardID, err)
	}

	var labelID string
	for _, l := range labels {
		if l.Name == name {
			labelID = l.ID
			break
		}
	}
	if labelID == "" {
		var created boardLabel
		params := url.Values{
			"name":  {name},
			"color": {levelColors[level]},
		}
		if err := c.do(ctx, "POST", "/boards/"+boardID+"/labels", params, &created); err != nil {
			return fmt.Errorf("failed to create label %q: %w", name, err)
		}
		labelID = created.ID
	}

	if err := c.do(ctx, "POST", "/cards/"+cardID+"/idLabels", url.Values{"value": {labelID}}, nil); err != nil {
		return fmt.Errorf("failed to attach label %q to card %s: %w", name, cardID, err)
	}
	return nil
}

// AddComment posts a comment on a card
func (c *Client) AddComment(ctx context.Context, cardID, text string) error {
	if err := c.do(ctx, "POST", "/cards/"+cardID+"/actions/comments", url.Values{"text": {text}}, nil); err != nil {
		return fmt.Errorf("failed to comment on card %s: %w", cardID, err)
	}
	return nil
}

// MoveCard moves a card to another list
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) error {
	if err := c.do(ctx, "PUT", "/cards/"+cardID, url.Values{"idList": {listID}}, nil); err != nil {
		return fmt.Errorf("failed to move card %s to list %s: %w", cardID, listID, err)
	}
	return nil
}
