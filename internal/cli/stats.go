package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/store"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show global analysis statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.GlobalStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}

			fmt.Println("Global statistics:")
			fmt.Printf("  Sessions: %d\n", stats.TotalSessions)
			fmt.Printf("  Analyses: %d (%d succeeded, %d failed)\n",
				stats.TotalAnalyses, stats.Succeeded, stats.Failed)
			fmt.Printf("  Re-analyses: %d of %d (%.1f%%)\n",
				stats.Reanalyses, stats.TotalAnalyses, stats.ReanalysisRate)
			fmt.Printf("  Critical: %d / Non-critical: %d\n", stats.Critical, stats.NonCritical)
			fmt.Printf("  Levels: HIGH=%d MEDIUM=%d LOW=%d\n",
				stats.ByLevel["HIGH"], stats.ByLevel["MEDIUM"], stats.ByLevel["LOW"])

			if len(stats.ByBoard) > 0 {
				fmt.Println("\nPer board:")
				for _, b := range stats.ByBoard {
					fmt.Printf("  %s: %d sessions, %d analyses, %d critical\n",
						b.BoardID, b.Sessions, b.Analyses, b.Critical)
				}
			}
			return nil
		},
	}
}
