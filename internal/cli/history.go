package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <card-id>",
		Short: "Show the analysis history of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cardID := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.HistoryForCard(ctx, cardID)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Printf("Card %s has never been analyzed\n", cardID)
				return nil
			}

			fmt.Printf("History of card %s (%d analyses, newest first):\n", cardID, len(entries))
			for _, e := range entries {
				kind := "analysis"
				if e.Reanalyse {
					kind = "re-analysis"
				}
				critical := "NON"
				if e.IsCritical {
					critical = "OUI"
				}
				status := ""
				if !e.Success {
					status = " [fallback]"
				}
				fmt.Printf("  %s  %s  %s %s%s - %s\n",
					e.AnalyzedAt.Format("2006-01-02 15:04"), kind, critical, e.Level, status, e.Justification)
			}
			return nil
		},
	}

	return cmd
}
