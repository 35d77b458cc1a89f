package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/store"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigBoardCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Println("\nValidation errors:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Println("\nConfiguration is valid!")
			fmt.Printf("  - Qdrant URL: %s\n", cfg.Qdrant.URL)
			fmt.Printf("  - LLM: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Printf("  - Batch size: %d\n", cfg.Analysis.BatchSize)
			fmt.Printf("  - Fallback level: %s\n", cfg.FallbackLevel())
			return nil
		},
	}
}

func newConfigBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Per-board action configuration",
	}

	cmd.AddCommand(newConfigBoardSetCmd())
	cmd.AddCommand(newConfigBoardShowCmd())
	return cmd
}

func newConfigBoardSetCmd() *cobra.Command {
	var boardCfg models.BoardConfig
	cmd := &cobra.Command{
		Use:   "set <board-id>",
		Short: "Set the action configuration for a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			boardCfg.BoardID = args[0]

			if boardCfg.MoveHighCards && boardCfg.TargetListID == "" {
				return fmt.Errorf("--move-high requires --target-list")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SetBoardConfig(ctx, boardCfg); err != nil {
				return err
			}

			fmt.Printf("Saved configuration for board %s\n", boardCfg.BoardID)
			return nil
		},
	}

	cmd.Flags().StringVar(&boardCfg.TargetListID, "target-list", "", "list id HIGH cards are moved to")
	cmd.Flags().StringVar(&boardCfg.TargetListName, "target-list-name", "", "display name of the target list")
	cmd.Flags().BoolVar(&boardCfg.MoveHighCards, "move-high", false, "move HIGH criticality cards to the target list")
	cmd.Flags().BoolVar(&boardCfg.AddLabels, "add-labels", false, "attach priority labels to critical cards")
	cmd.Flags().BoolVar(&boardCfg.AddComments, "add-comments", false, "post the justification as a comment on critical cards")

	return cmd
}

func newConfigBoardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [board-id]",
		Short: "Show stored board configurations",
		Args:  cobra.MaximumNArgs(1),
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

			var configs []models.BoardConfig
			if len(args) == 1 {
				bc, err := db.GetBoardConfig(ctx, args[0])
				if err != nil {
					return err
				}
				if bc == nil {
					fmt.Printf("Board %s has no configuration; no actions will be applied to it\n", args[0])
					return nil
				}
				configs = append(configs, *bc)
			} else {
				if configs, err = db.ListBoardConfigs(ctx); err != nil {
					return err
				}
				if len(configs) == 0 {
					fmt.Println("No board configurations stored")
					return nil
				}
			}

			for _, bc := range configs {
				fmt.Printf("Board %s:\n", bc.BoardID)
				fmt.Printf("  move HIGH cards: %v", bc.MoveHighCards)
				if bc.TargetListID != "" {
					fmt.Printf(" (to %s %s)", bc.TargetListID, bc.TargetListName)
				}
				fmt.Println()
				fmt.Printf("  add labels:      %v\n", bc.AddLabels)
				fmt.Printf("  add comments:    %v\n", bc.AddComments)
			}
			return nil
		},
	}
}
