package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card represents a Trello card with the metadata needed for analysis
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Desc      string     `json:"desc"`
	Due       *time.Time `json:"due,omitempty"`
	ListName  string     `json:"list_name"`
	Labels    []Label    `json:"labels"`
	Members   []string   `json:"members"`
	BoardID   string     `json:"board_id"`
	BoardName string     `json:"board_name"`
	URL       string     `json:"url"`
}

// Label represents a Trello label attached to a card
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Fingerprint returns the text used as the similarity-search query for a card
func (c *Card) Fingerprint() string {
	return strings.TrimSpace(c.Name + " " + c.Desc)
}

// LabelNames returns the names of all labels on the card
func (c *Card) LabelNames() []string {
	names := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		names[i] = l.Name
	}
	return names
}

// HistoryPointID generates a deterministic UUID for a card's analysis
// record in the history collection, unique per session.
func HistoryPointID(cardID, sessionID string) string {
	data := fmt.Sprintf("%s#%s", cardID, sessionID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}
