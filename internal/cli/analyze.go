package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

func newAnalyzeCmd() *cobra.Command {
	var listID, boardID string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze every card of a Trello list",
		Long: `Fetches all cards of the given list, classifies their criticality in
batches, records the results, and applies the board's configured actions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			cards, err := app.trello.GetListCards(ctx, listID)
			if err != nil {
				return fmt.Errorf("failed to fetch cards: %w", err)
			}
			if len(cards) == 0 {
				fmt.Printf("List %s has no cards to analyze\n", listID)
				return nil
			}

			if boardID == "" {
				boardID = cards[0].BoardID
			}

			session, err := app.orchestrator.Analyze(ctx, cards, boardID, listID, false)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			printSession(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&listID, "list", "", "Trello list id to analyze")
	cmd.Flags().StringVar(&boardID, "board", "", "board id override (defaults to the cards' board)")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

func printSession(session *models.AnalysisSession) {
	d := session.Distribution
	fmt.Printf("\nSession %s (%s)\n", session.Reference, session.ID)
	fmt.Printf("  Cards analyzed: %d (%d succeeded, %d failed, %.1f%% success)\n",
		d.Total, d.Succeeded, d.Failed, d.SuccessRate)
	fmt.Printf("  Critical: %d / Non-critical: %d\n", d.Critical, d.NonCritical)
	fmt.Printf("  Levels: HIGH=%d MEDIUM=%d LOW=%d\n", d.High, d.Medium, d.Low)

	fmt.Println("\nResults:")
	for _, r := range session.Results {
		status := "ok"
		if !r.Success {
			status = "fallback"
		}
		critical := "NON"
		if r.IsCritical {
			critical = "OUI"
		}
		fmt.Printf("  [%s] %s (%s): %s %s - %s\n",
			status, r.CardName, r.CardID, critical, r.Level, r.Justification)
	}
}
