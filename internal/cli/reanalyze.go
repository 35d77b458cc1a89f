package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReanalyzeCmd() *cobra.Command {
	var boardID string
	cmd := &cobra.Command{
		Use:   "reanalyze <card-id>",
		Short: "Re-analyze a single card",
		Long: `Runs a fresh analysis of one card under a new session. The previous
results stay in the history untouched; the new one is appended on top.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cardID := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			card, err := app.trello.GetCard(ctx, cardID)
			if err != nil {
				return fmt.Errorf("failed to fetch card: %w", err)
			}

			if boardID != "" {
				card.BoardID = boardID
			}

			result, err := app.orchestrator.Reanalyze(ctx, *card)
			if err != nil {
				return fmt.Errorf("re-analysis failed: %w", err)
			}

			critical := "NON"
			if result.IsCritical {
				critical = "OUI"
			}
			fmt.Printf("Re-analyzed %s (%s): %s %s - %s\n",
				result.CardName, result.CardID, critical, result.Level, result.Justification)
			if !result.Success {
				fmt.Println("Note: the model response could not be used; this is a fallback result.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "board id override (defaults to the card's board)")

	return cmd
}
