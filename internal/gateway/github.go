// Package gateway enumerates the files changed by a pull request and fetches
// its metadata, either from the local git history or from the GitHub API.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/game-center/internal/domain"
)

// ChangeLister defines the behavior of a source of changed file paths.
type ChangeLister interface {
	ListChangedFiles(ctx context.Context, prNumber int) ([]string, error)
}

// GitHubGateway lists pull request files over the REST API and reads pull
// request metadata over GraphQL.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	logger        *zap.Logger
}

// pullRequestQuery fetches the metadata of a single pull request.
type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			Title    string
			URL      string
			Body     string
			MergedAt *githubv4.DateTime
			Author   struct {
				Login string
			}
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token, owner, repo string, logger *zap.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		owner:         owner,
		repo:          repo,
		logger:        logger,
	}, nil
}

// ListChangedFiles returns every file path touched by the pull request.
// For renamed files both the new and the previous path are returned.
func (g *GitHubGateway) ListChangedFiles(ctx context.Context, prNumber int) ([]string, error) {
	g.logger.Debug("fetching pull request files", zap.String("repo", g.owner+"/"+g.repo), zap.Int("pr", prNumber))
	opts := &github.ListOptions{PerPage: 100}
	var paths []string
	for {
		files, resp, err := g.restClient.PullRequests.ListFiles(ctx, g.owner, g.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull request files with REST API: %w", err)
		}
		for _, file := range files {
			paths = append(paths, file.GetFilename())
			if prev := file.GetPreviousFilename(); prev != "" {
				paths = append(paths, prev)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of pull request files", zap.Int("page", opts.Page))
	}
	g.logger.Debug("completed fetching pull request files", zap.Int("count", len(paths)))
	return paths, nil
}

// EnrichPullRequest fills the empty fields of pr from the GitHub API.
// Fields already set are kept.
func (g *GitHubGateway) EnrichPullRequest(ctx context.Context, pr domain.MergedPR) (domain.MergedPR, error) {
	var q pullRequestQuery
	variables := map[string]interface{}{
		"owner":  githubv4.String(g.owner),
		"name":   githubv4.String(g.repo),
		"number": githubv4.Int(pr.Number),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return pr, fmt.Errorf("failed to execute GraphQL query for pull request #%d: %w", pr.Number, err)
	}

	remote := q.Repository.PullRequest
	if pr.Title == "" {
		pr.Title = remote.Title
	}
	if pr.URL == "" {
		pr.URL = remote.URL
	}
	if pr.Body == "" {
		pr.Body = remote.Body
	}
	if pr.Author == "" {
		pr.Author = remote.Author.Login
	}
	if pr.MergedAt == "" && remote.MergedAt != nil {
		pr.MergedAt = remote.MergedAt.UTC().Format(domain.TimestampLayout)
	}
	return pr, nil
}
