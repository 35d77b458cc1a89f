package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

// Store is the SQLite-backed result store: analysis sessions, the
// append-only per-card history, and per-board action configuration.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	reference  TEXT NOT NULL UNIQUE,
	board_id   TEXT NOT NULL DEFAULT '',
	list_id    TEXT NOT NULL DEFAULT '',
	reanalyse  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);

CREATE TABLE IF NOT EXISTS ticket_analysis_history (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id           TEXT NOT NULL,
	analyse_id        TEXT NOT NULL,
	card_name         TEXT DEFAULT '',
	is_critical       INTEGER NOT NULL DEFAULT 0,
	criticality_level TEXT NOT NULL,
	justification     TEXT DEFAULT '',
	success           INTEGER NOT NULL DEFAULT 0,
	analyzed_at       DATETIME NOT NULL,
	UNIQUE(card_id, analyse_id)
);
CREATE INDEX IF NOT EXISTS idx_history_card ON ticket_analysis_history(card_id);
CREATE INDEX IF NOT EXISTS idx_history_analyse ON ticket_analysis_history(analyse_id);

CREATE TABLE IF NOT EXISTS board_configs (
	board_id         TEXT PRIMARY KEY,
	target_list_id   TEXT DEFAULT '',
	target_list_name TEXT DEFAULT '',
	move_high_cards  INTEGER NOT NULL DEFAULT 0,
	add_labels       INTEGER NOT NULL DEFAULT 0,
	add_comments     INTEGER NOT NULL DEFAULT 0,
	updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (and if needed bootstraps) the store at the given path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new analysis session. The reference follows the
// ANALYSE-YYYYMMDD-NNN format; NNN continues from the highest reference
// issued today, so it stays unique even after rows are deleted.
func (s *Store) CreateSession(ctx context.Context, boardID, listID string, reanalyse bool) (*models.AnalysisSession, error) {
	now := time.Now().UTC()
	prefix := "ANALYSE-" + now.Format("20060102") + "-"

	var lastSeq int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(CAST(substr(reference, ?) AS INTEGER)), 0)
		 FROM analyses WHERE reference LIKE ?`,
		len(prefix)+1, prefix+"%",
	).Scan(&lastSeq); err != nil {
		return nil, fmt.Errorf("failed to find today's last session reference: %w", err)
	}

	session := &models.AnalysisSession{
		ID:        uuid.NewString(),
		Reference: fmt.Sprintf("%s%03d", prefix, lastSeq+1),
		BoardID:   boardID,
		ListID:    listID,
		Reanalyse: reanalyse,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, reference, board_id, list_id, reanalyse, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.Reference, boardID, listID, reanalyse, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// SaveHistory appends one analysis result to the card's audit history.
// Existing entries are never updated; re-analysis writes a new row under a
// new session.
func (s *Store) SaveHistory(ctx context.Context, sessionID string, result models.AnalysisResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ticket_analysis_history
		 (card_id, analyse_id, card_name, is_critical, criticality_level, justification, success, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.CardID, sessionID, result.CardName, result.IsCritical,
		string(result.Level), result.Justification, result.Success, result.AnalyzedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save history for card %s: %w", result.CardID, err)
	}
	return nil
}

// HistoryForCard returns every analysis the card ever received, newest
// first, each joined to its owning session's reanalyse flag
func (s *Store) HistoryForCard(ctx context.Context, cardID string) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id, h.card_id, h.analyse_id, h.card_name, h.is_critical,
		        h.criticality_level, h.justification, h.success, h.analyzed_at, a.reanalyse
		 FROM ticket_analysis_history h
		 JOIN analyses a ON a.id = h.analyse_id
		 WHERE h.card_id = ?
		 ORDER BY h.id DESC`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var level string
		if err := rows.Scan(&e.ID, &e.CardID, &e.SessionID, &e.CardName, &e.IsCritical,
			&level, &e.Justification, &e.Success, &e.AnalyzedAt, &e.Reanalyse); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Level = models.Level(level)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetBoardConfig returns the configuration stored for exactly this board,
// or nil when the board has none
func (s *Store) GetBoardConfig(ctx context.Context, boardID string) (*models.BoardConfig, error) {
	var cfg models.BoardConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT board_id, target_list_id, target_list_name, move_high_cards, add_labels, add_comments
		 FROM board_configs WHERE board_id = ?`,
		boardID,
	).Scan(&cfg.BoardID, &cfg.TargetListID, &cfg.TargetListName,
		&cfg.MoveHighCards, &cfg.AddLabels, &cfg.AddComments)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query board config for %s: %w", boardID, err)
	}
	return &cfg, nil
}

// SetBoardConfig creates or replaces the configuration for a board
func (s *Store) SetBoardConfig(ctx context.Context, cfg models.BoardConfig) error {
	if cfg.BoardID == "" {
		return fmt.Errorf("board config requires a board id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO board_configs (board_id, target_list_id, target_list_name, move_high_cards, add_labels, add_comments, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(board_id) DO UPDATE SET
		   target_list_id = excluded.target_list_id,
		   target_list_name = excluded.target_list_name,
		   move_high_cards = excluded.move_high_cards,
		   add_labels = excluded.add_labels,
		   add_comments = excluded.add_comments,
		   updated_at = CURRENT_TIMESTAMP`,
		cfg.BoardID, cfg.TargetListID, cfg.TargetListName,
		cfg.MoveHighCards, cfg.AddLabels, cfg.AddComments,
	)
	if err != nil {
		return fmt.Errorf("failed to save board config for %s: %w", cfg.BoardID, err)
	}
	return nil
}

// ListBoardConfigs returns every stored board configuration
func (s *Store) ListBoardConfigs(ctx context.Context) ([]models.BoardConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT board_id, target_list_id, target_list_name, move_high_cards, add_labels, add_comments
		 FROM board_configs ORDER BY board_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list board configs: %w", err)
	}
	defer rows.Close()

	var configs []models.BoardConfig
	for rows.Next() {
		var cfg models.BoardConfig
		if err := rows.Scan(&cfg.BoardID, &cfg.TargetListID, &cfg.TargetListName,
			&cfg.MoveHighCards, &cfg.AddLabels, &cfg.AddComments); err != nil {
			return nil, fmt.Errorf("failed to scan board config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}
