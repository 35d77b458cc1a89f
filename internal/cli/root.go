package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
)

var (
	cfgFile string
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "trello-agent",
	Short: "Trello Card Criticality Analysis Agent",
	Long: `trello-agent analyzes Trello cards in batches with an LLM to classify
their business criticality, enriched by project documentation and past
analyses retrieved from a Qdrant vector DB.

Results are kept in an append-only audit history; critical cards can be
labeled, commented, and moved according to per-board configuration.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReanalyzeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("trello-agent version %s\n", version)
		},
	}
}

// loadConfig locates, loads, and validates the configuration file
func loadConfig() (*config.Config, error) {
	cfgPath := config.FindConfigPath(cfgFile)
	if cfgPath == "" {
		return nil, fmt.Errorf("config file not found")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	return cfg, nil
}
