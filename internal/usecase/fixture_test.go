package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const siteIndex = `<!DOCTYPE html>
<html lang="en">
<head><title>Game Center</title></head>
<body>
  <div id="gameGrid" class="game-grid"></div>
  <script>fetch('./games.json')</script>
</body>
</html>
`

// writeFiles creates files under root; a trailing slash creates a directory.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newSiteRepo lays out a complete repository with a single playable game.
func newSiteRepo(t *testing.T, registry string) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":                 siteIndex,
		"games.json":                 registry,
		"README.md":                  "# Game Center\n",
		"AGENTS.md":                  "# Agents\n",
		".github/workflows/":         "",
		"games/snake/index.html":     "<html>snake</html>",
		"games/snake/README.md":      "# Snake\n\nBuilt with GitHub Copilot.\n",
		"games/snake/game-info.yaml": "game:\n  id: snake\npull_requests: []\nstats:\n  total_prs: 0\n",
	})
	return root
}

const snakeEntry = `{"id": "snake", "name": "Snake", "description": "Eat apples", "status": "playable", "path": "./games/snake", "createdWith": "GitHub Copilot", "model": "gpt-4o", "prLinks": [], "prCount": 0}`
