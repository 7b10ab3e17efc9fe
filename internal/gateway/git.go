package gateway

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// GitDiff lists the files changed between two commits of a local checkout.
type GitDiff struct {
	dir    string
	base   string
	head   string
	logger *zap.Logger
}

// NewGitDiff creates a GitDiff comparing the two most recent commits of the
// repository at dir.
func NewGitDiff(dir string, logger *zap.Logger) *GitDiff {
	return &GitDiff{dir: dir, base: "HEAD~1", head: "HEAD", logger: logger}
}

// ListChangedFiles runs "git diff --name-only". The PR number is not needed:
// the merge commit is expected to be checked out.
func (g *GitDiff) ListChangedFiles(ctx context.Context, _ int) ([]string, error) {
	g.logger.Debug("listing changed files", zap.String("dir", g.dir), zap.String("base", g.base), zap.String("head", g.head))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", g.base, g.head)
	cmd.Dir = g.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run git diff: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}
