package policy

import (
	"context"
	"fmt"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// ConfigSource looks up the stored configuration for a board. A nil config
// with a nil error means no configuration exists for that board.
type ConfigSource interface {
	GetBoardConfig(ctx context.Context, boardID string) (*models.BoardConfig, error)
}

// Resolver resolves per-board side-effect configuration. The lookup is a
// strict equality match on the board identifier: a board without its own
// configuration gets none, never another board's or the most recent one.
type Resolver struct {
	source ConfigSource
}

// NewResolver creates a board action policy resolver
func NewResolver(source ConfigSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the configuration for a board, or found=false when the
// board has none
func (r *Resolver) Resolve(ctx context.Context, boardID string) (*models.BoardConfig, bool, error) {
	if boardID == "" {
		return nil, false, nil
	}

	cfg, err := r.source.GetBoardConfig(ctx, boardID)
	if err != nil {
		return nil, false, fmt.Errorf("board config lookup failed for %s: %w", boardID, err)
	}
	if cfg == nil {
		return nil, false, nil
	}
	if cfg.BoardID != boardID {
		// A stored config must only ever apply to its own board.
		return nil, false, fmt.Errorf("board config mismatch: asked for %s, got %s", boardID, cfg.BoardID)
	}

	return cfg, true, nil
}
