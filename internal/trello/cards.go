package trello

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

type trelloCard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Due     string `json:"due"`
	IDBoard string `json:"idBoard"`
	IDList  string `json:"idList"`
	URL     string `json:"url"`
	Labels  []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"labels"`
	Members []struct {
		FullName string `json:"fullName"`
	} `json:"members"`
}

type trelloList struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IDBoard string `json:"idBoard"`
}

type trelloBoard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetListCards fetches every card on a list, enriched with the list and
// board names the analysis prompt needs
func (c *Client) GetListCards(ctx context.Context, listID string) ([]models.Card, error) {
	var list trelloList
	if err := c.do(ctx, "GET", "/lists/"+listID, url.Values{"fields": {"name,idBoard"}}, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	var board trelloBoard
	if err := c.do(ctx, "GET", "/boards/"+list.IDBoard, url.Values{"fields": {"name"}}, &board); err != nil {
		return nil, fmt.Errorf("failed to fetch board %s: %w", list.IDBoard, err)
	}

	var raw []trelloCard
	params := url.Values{
		"fields":        {"name,desc,due,idBoard,url,labels"},
		"members":       {"true"},
		"member_fields": {"fullName"},
	}
	if err := c.do(ctx, "GET", "/lists/"+listID+"/cards", params, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch cards of list %s: %w", listID, err)
	}

	cards := make([]models.Card, 0, len(raw))
	for _, rc := range raw {
		card := models.Card{
			ID:        rc.ID,
			Name:      rc.Name,
			Desc:      rc.Desc,
			ListName:  list.Name,
			BoardID:   rc.IDBoard,
			BoardName: board.Name,
			URL:       rc.URL,
		}
		if rc.Due != "" {
			if due, err := time.Parse(time.RFC3339, rc.Due); err == nil {
				card.Due = &due
			}
		}
		for _, l := range rc.Labels {
			card.Labels = append(card.Labels, models.Label{Name: l.Name, Color: l.Color})
		}
		for _, m := range rc.Members {
			card.Members = append(card.Members, m.FullName)
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// GetCard fetches a single card by id, enriched the same way as
// GetListCards
func (c *Client) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	var rc trelloCard
	params := url.Values{
		"fields":        {"name,desc,due,idBoard,idList,url,labels"},
		"members":       {"true"},
		"member_fields": {"fullName"},
	}
	if err := c.do(ctx, "GET", "/cards/"+cardID, params, &rc); err != nil {
		return nil, fmt.Errorf("failed to fetch card %s: %w", cardID, err)
	}

	card := models.Card{
		ID:      rc.ID,
		Name:    rc.Name,
		Desc:    rc.Desc,
		BoardID: rc.IDBoard,
		URL:     rc.URL,
	}
	if rc.Due != "" {
		if due, err := time.Parse(time.RFC3339, rc.Due); err == nil {
			card.Due = &due
		}
	}
	for _, l := range rc.Labels {
		card.Labels = append(card.Labels, models.Label{Name: l.Name, Color: l.Color})
	}
	for _, m := range rc.Members {
		card.Members = append(card.Members, m.FullName)
	}

	var board trelloBoard
	if err := c.do(ctx, "GET", "/boards/"+rc.IDBoard, url.Values{"fields": {"name"}}, &board); err == nil {
		card.BoardName = board.Name
	}

	if rc.IDList != "" {
		var list trelloList
		if err := c.do(ctx, "GET", "/lists/"+rc.IDList, url.Values{"fields": {"name"}}, &list); err == nil {
			card.ListName = list.Name
		}
	}

	return &card, nil
}
