package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) *GitHubGateway {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(server.URL+"/graphql", server.Client()),
		owner:         "octo",
		repo:          "game-center",
		logger:        zap.NewNop(),
	}
}

func TestGitHubGateway_ListChangedFiles(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		expected       []string
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - follows pagination and includes renames",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/octo/game-center/pulls/42/files", r.URL.Path)
				if r.URL.Query().Get("page") == "" {
					w.Header().Set("Link", fmt.Sprintf(`<%s?page=2&per_page=100>; rel="next"`, r.URL.Path))
					fmt.Fprint(w, `[{"filename": "games/snake/index.html"}]`)
					return
				}
				fmt.Fprint(w, `[{"filename": "games/pong/game.js", "previous_filename": "games/ping/game.js"}]`)
			},
			expected: []string{"games/snake/index.html", "games/pong/game.js", "games/ping/game.js"},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list pull request files with REST API",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/", tc.handlerFunc)
			gateway := setupTestGateway(t, mux)

			paths, err := gateway.ListChangedFiles(context.Background(), 42)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, paths)
			}
		})
	}
}

func TestGitHubGateway_EnrichPullRequest(t *testing.T) {
	testCases := []struct {
		name           string
		input          domain.MergedPR
		responseBody   string
		expected       domain.MergedPR
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:         "fills empty fields only",
			input:        domain.MergedPR{Number: 42, Title: "Local title"},
			responseBody: `{"data":{"repository":{"pullRequest":{"title":"Remote title","url":"https://github.com/octo/game-center/pull/42","body":"Fixes collision bug.","mergedAt":"2025-01-02T03:04:05Z","author":{"login":"octocat"}}}}}`,
			expected: domain.MergedPR{
				Number:   42,
				Title:    "Local title",
				URL:      "https://github.com/octo/game-center/pull/42",
				Body:     "Fixes collision bug.",
				Author:   "octocat",
				MergedAt: "2025-01-02T03:04:05.000Z",
			},
		},
		{
			name:         "unmerged pull request leaves merge time empty",
			input:        domain.MergedPR{Number: 7},
			responseBody: `{"data":{"repository":{"pullRequest":{"title":"Draft","url":"u","body":"","mergedAt":null,"author":{"login":"a"}}}}}`,
			expected:     domain.MergedPR{Number: 7, Title: "Draft", URL: "u", Author: "a"},
		},
		{
			name:           "error case - GraphQL errors",
			input:          domain.MergedPR{Number: 1},
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expected:       domain.MergedPR{Number: 1},
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for pull request #1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "pullRequest(number: $number)")
				assert.Contains(t, string(body), `"owner":"octo"`)
				fmt.Fprint(w, tc.responseBody)
			})
			gateway := setupTestGateway(t, mux)

			pr, err := gateway.EnrichPullRequest(context.Background(), tc.input)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, pr)
		})
	}
}
