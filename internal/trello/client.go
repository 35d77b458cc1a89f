package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
)

// Client talks to the Trello REST API. Authentication uses the key/token
// query parameter scheme on every request.
type Client struct {
	httpClient *http.Client
	apiKey     string
	token      string
	baseURL    string
}

// NewClient creates a Trello API client
func NewClient(cfg *config.TrelloConfig) (*Client, error) {
	if cfg.APIKey == "" || cfg.Token == "" {
		return nil, fmt.Errorf("trello api key and token are required")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.trello.com/1"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     cfg.APIKey,
		token:      cfg.Token,
		baseURL:    baseURL,
	}, nil
}

// do issues one authenticated request and decodes the JSON response into
// out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trello request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trello %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode trello response: %w", err)
	}
	return nil
}
