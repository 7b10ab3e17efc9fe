package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/config"
	"github.com/naka-gawa/game-center/internal/domain"
	"github.com/naka-gawa/game-center/internal/gateway"
	"github.com/naka-gawa/game-center/internal/store"
	"github.com/naka-gawa/game-center/internal/usecase"
)

type trackOutput struct {
	PR             int               `json:"pr"`
	Affected       []string          `json:"affected"`
	Updated        []string          `json:"updated"`
	Skipped        []string          `json:"skipped"`
	Failed         map[string]string `json:"failed"`
	RegistrySynced []string          `json:"registry_synced"`
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Records a merged pull request in the metadata of every game it touched",
	Long: `Records a merged pull request in the game-info.yaml of every game whose
directory it changed, and syncs prCount in games.json.

The pull request is read from PR_NUMBER (required), PR_TITLE, PR_URL,
PR_MERGED_AT, PR_AUTHOR and PR_BODY. Changed files come from the last commit
(--source git) or from the GitHub API (--source github, which needs
GITHUB_TOKEN and GITHUB_REPOSITORY and fills PR fields left unset).

Failures on individual games are logged and do not change the exit status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		root, gamesDir, err := repoFlags(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		pr, err := config.LoadPullRequest(os.Getenv)
		if err != nil {
			return err
		}

		lister, pr, err := changeSource(cmd, source, root, pr, logger)
		if err != nil {
			return err
		}
		changed, err := lister.ListChangedFiles(ctx, pr.Number)
		if err != nil {
			return fmt.Errorf("failed to enumerate changed files: %w", err)
		}
		logger.Debug("changed files", zap.Strings("paths", changed))

		fileStore := store.NewFileStore(root, gamesDir)
		var s usecase.Store = fileStore
		if dryRun {
			s = store.NewDryRunStore(fileStore, logger)
		}

		result, err := usecase.NewTracker(s, gamesDir, logger).Track(ctx, pr, changed)
		if err != nil {
			return err
		}

		out := trackOutput{
			PR:             pr.Number,
			Affected:       result.Affected,
			Updated:        nonNil(result.Updated),
			Skipped:        nonNil(result.Skipped),
			Failed:         make(map[string]string, len(result.Failed)),
			RegistrySynced: nonNil(result.RegistrySynced),
		}
		for id, err := range result.Failed {
			out.Failed[id] = err.Error()
		}
		jsonData, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

// changeSource picks the changed-file source. The GitHub source also fills
// PR fields the environment left unset; a failed lookup only logs a warning.
func changeSource(cmd *cobra.Command, source, root string, pr domain.MergedPR, logger *zap.Logger) (gateway.ChangeLister, domain.MergedPR, error) {
	switch source {
	case "git":
		return gateway.NewGitDiff(root, logger), pr, nil
	case "github":
		gh, err := config.LoadGitHub(os.Getenv)
		if err != nil {
			return nil, pr, err
		}
		githubGateway, err := gateway.NewGitHubGateway(gh.Token, gh.Owner, gh.Repo, logger)
		if err != nil {
			return nil, pr, fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		enriched, err := githubGateway.EnrichPullRequest(cmd.Context(), pr)
		if err != nil {
			logger.Warn("could not fetch pull request metadata, using environment only", zap.Error(err))
			enriched = pr
		}
		return githubGateway, enriched, nil
	default:
		return nil, pr, fmt.Errorf("unknown --source %q, want git or github", source)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().String("source", "git", "Where changed files come from: git or github")
	trackCmd.Flags().Bool("dry-run", false, "Log the updates without writing any file")
}
