package usecase

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var failedLine = regexp.MustCompile(`(?m)^  ✗ (.*)$`)

// failedChecks returns the descriptions of the failed checks in output.
func failedChecks(output string) []string {
	var failed []string
	for _, m := range failedLine.FindAllStringSubmatch(output, -1) {
		failed = append(failed, m[1])
	}
	return failed
}

func runValidator(t *testing.T, root string) (passed, failed int, output string) {
	t.Helper()
	var out bytes.Buffer
	tally := NewValidator(root, &out, zap.NewNop()).Run()
	assert.Equal(t, tally.Total, tally.Passed+tally.Failed)
	return tally.Passed, tally.Failed, out.String()
}

func TestValidator_Run(t *testing.T) {
	t.Run("happy path - complete repository passes", func(t *testing.T) {
		root := newSiteRepo(t, `{"games": [`+snakeEntry+`]}`)

		passed, failed, output := runValidator(t, root)

		assert.Zero(t, failed, output)
		// 5 registry checks, 9 field checks, 3 file checks, 5 game-info checks,
		// 1 README check, 7 site checks.
		assert.Equal(t, 30, passed, output)
	})

	t.Run("missing game directory fails only its file checks", func(t *testing.T) {
		pong := `{"id": "pong", "name": "Pong", "description": "Paddles", "status": "wip", "path": "./games/pong", "createdWith": "Copilot", "model": "gpt-4o", "prLinks": []}`
		root := newSiteRepo(t, `{"games": [`+snakeEntry+`, `+pong+`]}`)

		_, failed, output := runValidator(t, root)

		assert.Equal(t, 3, failed, output)
		assert.Equal(t, []string{
			"Game 2 (pong): directory exists at ./games/pong",
			"Game 2 (pong): has index.html",
			"Game 2 (pong): has README.md",
		}, failedChecks(output))
	})

	t.Run("field checks", func(t *testing.T) {
		entry := `{"id": "snake", "name": "  ", "status": "playable", "path": "./games/snake", "createdWith": "Copilot", "model": "gpt-4o", "prLinks": "none", "prCount": -1}`
		root := newSiteRepo(t, `{"games": [`+entry+`]}`)

		_, _, output := runValidator(t, root)

		failed := failedChecks(output)
		assert.Contains(t, failed, `Game 1 (snake): has "name" field`)
		assert.Contains(t, failed, `Game 1 (snake): has "description" field`)
		assert.Contains(t, failed, `Game 1 (snake): has "prLinks" array`)
		assert.Contains(t, failed, `Game 1 (snake): has "prCount" field (number)`)
		assert.NotContains(t, failed, `Game 1 (snake): has "id" field`)
		assert.NotContains(t, failed, "Game 1 (snake): has index.html")
	})

	t.Run("invalid registry still runs site checks", func(t *testing.T) {
		root := newSiteRepo(t, `{"games": [`)

		passed, failed, output := runValidator(t, root)

		assert.Equal(t, 2, failed, output)
		assert.Equal(t, 8, passed, output)
		assert.Contains(t, output, "games.json is valid JSON: invalid JSON")
		assert.NotContains(t, output, "Testing game entries...")
	})

	t.Run("missing registry and site files", func(t *testing.T) {
		root := t.TempDir()

		passed, failed, output := runValidator(t, root)

		assert.Zero(t, passed, output)
		assert.Equal(t, 10, failed, output)
	})

	t.Run("inconsistent game-info and missing AI mention", func(t *testing.T) {
		root := newSiteRepo(t, `{"games": [`+snakeEntry+`]}`)
		writeFiles(t, root, map[string]string{
			"games/snake/game-info.yaml": "game:\n  id: snake\npull_requests: []\nstats:\n  total_prs: 3\n",
			"games/snake/README.md":      "# Snake\n\nEat the pellets.\n",
		})

		_, _, output := runValidator(t, root)

		assert.Equal(t, []string{
			"Game 1 (snake): game-info.yaml stats are consistent: total_prs is 3 but 0 pull requests are listed",
			"Game 1 (snake): README.md mentions AI/model",
		}, failedChecks(output))
	})

	t.Run("README naming the model passes", func(t *testing.T) {
		root := newSiteRepo(t, `{"games": [`+snakeEntry+`]}`)
		require.NoError(t, os.WriteFile(filepath.Join(root, "games", "snake", "README.md"), []byte("Made by GPT-4o.\n"), 0o644))

		_, failed, output := runValidator(t, root)
		assert.Zero(t, failed, output)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		root := newSiteRepo(t, `{"games": [`+snakeEntry+`, `+snakeEntry+`]}`)

		_, _, output := runValidator(t, root)
		assert.Equal(t, []string{"game ids are unique: duplicate ids snake"}, failedChecks(output))
	})
}
