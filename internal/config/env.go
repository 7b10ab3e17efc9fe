// Package config reads the tracker's inputs from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/naka-gawa/game-center/internal/domain"
)

// Environment variable names consumed by the tracker.
const (
	EnvPRNumber   = "PR_NUMBER"
	EnvPRTitle    = "PR_TITLE"
	EnvPRURL      = "PR_URL"
	EnvPRMergedAt = "PR_MERGED_AT"
	EnvPRAuthor   = "PR_AUTHOR"
	EnvPRBody     = "PR_BODY"

	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubRepository = "GITHUB_REPOSITORY"
)

// LoadPullRequest builds the merged PR from environment variables read
// through lookup. An unset merge time is left empty for the tracker to fill.
func LoadPullRequest(lookup func(string) string) (domain.MergedPR, error) {
	raw := strings.TrimSpace(lookup(EnvPRNumber))
	if raw == "" {
		return domain.MergedPR{}, fmt.Errorf("%s environment variable is not set", EnvPRNumber)
	}
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return domain.MergedPR{}, fmt.Errorf("%s must be a positive integer, got %q", EnvPRNumber, raw)
	}

	return domain.MergedPR{
		Number:   number,
		Title:    lookup(EnvPRTitle),
		URL:      lookup(EnvPRURL),
		Author:   lookup(EnvPRAuthor),
		Body:     lookup(EnvPRBody),
		MergedAt: strings.TrimSpace(lookup(EnvPRMergedAt)),
	}, nil
}

// GitHub holds the settings of the optional GitHub API source.
type GitHub struct {
	Token string
	Owner string
	Repo  string
}

// LoadGitHub reads the GitHub token and "owner/name" repository.
func LoadGitHub(lookup func(string) string) (GitHub, error) {
	token := lookup(EnvGitHubToken)
	if token == "" {
		return GitHub{}, fmt.Errorf("%s environment variable is not set", EnvGitHubToken)
	}
	owner, repo, ok := strings.Cut(lookup(EnvGitHubRepository), "/")
	if !ok || owner == "" || repo == "" {
		return GitHub{}, fmt.Errorf("%s must be in owner/name form, got %q", EnvGitHubRepository, lookup(EnvGitHubRepository))
	}
	return GitHub{Token: token, Owner: owner, Repo: repo}, nil
}
