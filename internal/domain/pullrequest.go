package domain

import (
	"path"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultGamesDir is the top-level directory that contains one directory per game.
	DefaultGamesDir = "games"
	// MaxDescriptionLength bounds the description derived for a pull request.
	MaxDescriptionLength = 200
	// TimestampLayout is the layout of merge times generated locally.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
	// UnknownAuthor is recorded when no author login is known.
	UnknownAuthor = "unknown"
)

// MergedPR is the metadata of a merged pull request as handed to the tracker.
type MergedPR struct {
	Number   int
	Title    string
	URL      string
	Author   string
	Body     string
	MergedAt string
}

// WithDefaults fills the merge time with now and the author with
// UnknownAuthor when they are unset.
func (m MergedPR) WithDefaults(now time.Time) MergedPR {
	if m.MergedAt == "" {
		m.MergedAt = now.UTC().Format(TimestampLayout)
	}
	if strings.TrimSpace(m.Author) == "" {
		m.Author = UnknownAuthor
	}
	return m
}

// Record converts the merged PR into the entry stored in a game's record.
func (m MergedPR) Record() PullRequest {
	return PullRequest{
		Number:      m.Number,
		Title:       m.Title,
		URL:         m.URL,
		MergedAt:    m.MergedAt,
		Author:      m.Author,
		Description: SummarizeBody(m.Body, m.Title),
	}
}

// GameIDFromPath returns the game identifier for a changed file path when the
// path lies inside a game directory, i.e. "<gamesDir>/<id>/<file...>".
func GameIDFromPath(gamesDir, p string) (string, bool) {
	gamesDir = strings.Trim(path.Clean(strings.ReplaceAll(gamesDir, `\`, "/")), "/")
	p = strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "./")

	rest, ok := strings.CutPrefix(p, gamesDir+"/")
	if !ok {
		return "", false
	}
	id, remainder, ok := strings.Cut(rest, "/")
	if !ok || remainder == "" || id == "" || id == "." || id == ".." {
		return "", false
	}
	return id, true
}

// AffectedGames returns the unique game identifiers touched by paths, in the
// order they were first seen.
func AffectedGames(gamesDir string, paths []string) []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, p := range paths {
		id, ok := GameIDFromPath(gamesDir, strings.TrimSpace(p))
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// SummarizeBody derives a short description from a PR body: the first line
// that is neither blank, a markdown heading nor an HTML comment. It falls back
// to the title. The result is truncated to MaxDescriptionLength characters.
func SummarizeBody(body, title string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "<!--") {
			continue
		}
		return truncate(line, MaxDescriptionLength)
	}
	return truncate(title, MaxDescriptionLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
