package domain

// GameInfoFile is the name of the per-game metadata document inside a game directory.
const GameInfoFile = "game-info.yaml"

// GameInfo is the per-game metadata record tracking pull-request history.
type GameInfo struct {
	Game         GameMeta      `yaml:"game" json:"game"`
	PullRequests []PullRequest `yaml:"pull_requests" json:"pull_requests"`
	Stats        GameStats     `yaml:"stats" json:"stats"`

	// Extra holds keys this package does not model. They are written back
	// unchanged, after the modeled ones.
	Extra map[string]any `yaml:",inline" json:"-"`
}

// GameMeta identifies the game a record belongs to.
type GameMeta struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// PullRequest is one merged pull request that touched the game.
type PullRequest struct {
	Number      int    `yaml:"number" json:"number"`
	Title       string `yaml:"title" json:"title"`
	URL         string `yaml:"url" json:"url"`
	MergedAt    string `yaml:"merged_at" json:"merged_at"`
	Author      string `yaml:"author" json:"author"`
	Description string `yaml:"description" json:"description"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// GameStats aggregates the pull-request list of a record.
type GameStats struct {
	TotalPRs    int    `yaml:"total_prs" json:"total_prs"`
	FirstPRDate string `yaml:"first_pr_date" json:"first_pr_date"`
	LastPRDate  string `yaml:"last_pr_date" json:"last_pr_date"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// NewGameInfo seeds a record for a game that has no metadata file yet.
func NewGameInfo(gameID, mergedAt string) *GameInfo {
	return &GameInfo{
		Game:         GameMeta{ID: gameID, Name: gameID},
		PullRequests: []PullRequest{},
		Stats: GameStats{
			FirstPRDate: mergedAt,
			LastPRDate:  mergedAt,
		},
	}
}

// HasPR reports whether a pull request with the given number is recorded.
func (g *GameInfo) HasPR(number int) bool {
	for _, pr := range g.PullRequests {
		if pr.Number == number {
			return true
		}
	}
	return false
}

// AddPR prepends pr and recomputes the stats. It returns false and leaves the
// record untouched when a pull request with the same number is already present.
func (g *GameInfo) AddPR(pr PullRequest) bool {
	if g.HasPR(pr.Number) {
		return false
	}
	g.PullRequests = append([]PullRequest{pr}, g.PullRequests...)
	g.Stats.TotalPRs = len(g.PullRequests)
	g.Stats.LastPRDate = pr.MergedAt
	if g.Stats.FirstPRDate == "" {
		g.Stats.FirstPRDate = pr.MergedAt
	}
	return true
}

// Consistent reports whether the stats agree with the recorded pull requests.
func (g *GameInfo) Consistent() bool {
	return g.Stats.TotalPRs == len(g.PullRequests)
}
