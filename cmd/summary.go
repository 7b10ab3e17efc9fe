package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/game-center/internal/store"
	"github.com/naka-gawa/game-center/internal/usecase"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarizes pull-request activity per game and outputs as JSON",
	Long:  `Reads games.json and every game's game-info.yaml, and outputs per-game pull request totals, whether the registry's prCount agrees, and aggregate figures in JSON format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		root, gamesDir, err := repoFlags(cmd)
		if err != nil {
			return err
		}

		aggregator := usecase.NewAggregator(store.NewFileStore(root, gamesDir), logger)
		results, err := aggregator.Aggregate(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
