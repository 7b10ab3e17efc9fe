package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/game-center/internal/usecase"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Serves the site locally and checks that every page loads",
	Long: `Starts a static file server rooted at the repository, then requests the
entry page, games.json and every listed game's index.html. The server is
always stopped at the end; the command exits with status 1 if any check failed.`,
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
		addr, _ := cmd.Flags().GetString("addr")
		settle, _ := cmd.Flags().GetDuration("settle")

		tally := usecase.NewSmokeTester(root, addr, settle, cmd.OutOrStdout(), logger).Run(cmd.Context())
		if !tally.OK() {
			return errChecksFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(smokeCmd)
	smokeCmd.Flags().String("addr", usecase.DefaultSmokeAddr, "Address the test server listens on")
	smokeCmd.Flags().Duration("settle", usecase.DefaultSettleDelay, "Delay between the server starting and the first request")
}
