// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/naka-gawa/game-center/internal/domain"
)

// errChecksFailed signals that a checking command ran to completion but at
// least one check failed. The checks already reported themselves.
var errChecksFailed = errors.New("checks failed")

var rootCmd = &cobra.Command{
	Use:   "game-center",
	Short: "Maintenance tooling for the Game Center static site.",
	Long: `game-center maintains the metadata of the Game Center static website.
It records merged pull requests in each game's game-info.yaml and the
games.json registry, validates the repository structure, and smoke-tests
the site over a local HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("root", ".", "Repository root directory")
	rootCmd.PersistentFlags().String("games-dir", domain.DefaultGamesDir, "Directory, relative to the root, holding one directory per game")
}

// newLogger builds the console logger shared by all commands. Logs go to
// standard error so that standard output stays machine-readable.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// repoFlags returns the absolute repository root and the games directory.
func repoFlags(cmd *cobra.Command) (string, string, error) {
	root, _ := cmd.Flags().GetString("root")
	gamesDir, _ := cmd.Flags().GetString("games-dir")
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve --root %s: %w", root, err)
	}
	return abs, gamesDir, nil
}
