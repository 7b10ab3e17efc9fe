package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/game-center/internal/usecase"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validates games.json and the files every listed game needs",
	Long: `Validates games.json, the required fields of each game entry, the files
in each game directory, and the site's entry page and top-level documents.
Every check runs; the command exits with status 1 if any of them failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		root, _, err := repoFlags(cmd)
		if err != nil {
			return err
		}

		tally := usecase.NewValidator(root, cmd.OutOrStdout(), logger).Run()
		if !tally.OK() {
			return errChecksFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
