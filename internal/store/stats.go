package store

import (
	"context"
	"fmt"
)

// Stats aggregates everything ever analyzed, across all sessions
type Stats struct {
	TotalSessions  int
	TotalAnalyses  int
	Succeeded      int
	Failed         int
	Initial        int
	Reanalyses     int
	ReanalysisRate float64
	Critical       int
	NonCritical    int
	ByLevel        map[string]int
	ByBoard        []BoardStats
}

// BoardStats is the per-board rollup inside Stats
type BoardStats struct {
	BoardID  string
	Sessions int
	Analyses int
	Critical int
}

// GlobalStats computes the aggregate statistics over the whole history
func (s *Store) GlobalStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByLevel: map[string]int{}}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analyses`,
	).Scan(&stats.TotalSessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(success), 0),
		        COALESCE(SUM(is_critical), 0)
		 FROM ticket_analysis_history`,
	).Scan(&stats.TotalAnalyses, &stats.Succeeded, &stats.Critical); err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %w", err)
	}
	stats.Failed = stats.TotalAnalyses - stats.Succeeded
	stats.NonCritical = stats.TotalAnalyses - stats.Critical

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(a.reanalyse = 0), 0), COALESCE(SUM(a.reanalyse = 1), 0)
		 FROM ticket_analysis_history h
		 JOIN analyses a ON a.id = h.analyse_id`,
	).Scan(&stats.Initial, &stats.Reanalyses); err != nil {
		return nil, fmt.Errorf("failed to split reanalyses: %w", err)
	}
	if stats.TotalAnalyses > 0 {
		stats.ReanalysisRate = float64(stats.Reanalyses) / float64(stats.TotalAnalyses) * 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT criticality_level, COUNT(*) FROM ticket_analysis_history GROUP BY criticality_level`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan level count: %w", err)
		}
		stats.ByLevel[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	boardRows, err := s.db.QueryContext(ctx,
		`SELECT a.board_id,
		        COUNT(DISTINCT a.id),
		        COUNT(h.id),
		        COALESCE(SUM(h.is_critical), 0)
		 FROM analyses a
		 LEFT JOIN ticket_analysis_history h ON h.analyse_id = a.id
		 GROUP BY a.board_id
		 ORDER BY a.board_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up boards: %w", err)
	}
	defer boardRows.Close()
	for boardRows.Next() {
		var b BoardStats
		if err := boardRows.Scan(&b.BoardID, &b.Sessions, &b.Analyses, &b.Critical); err != nil {
			return nil, fmt.Errorf("failed to scan board stats: %w", err)
		}
		stats.ByBoard = append(stats.ByBoard, b)
	}

	return stats, boardRows.Err()
}
