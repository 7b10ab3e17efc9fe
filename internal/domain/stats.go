package domain

// GameSummary holds the pull-request figures for a single game.
type GameSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TotalPRs        int    `json:"total_prs"`
	FirstPRDate     string `json:"first_pr_date,omitempty"`
	LastPRDate      string `json:"last_pr_date,omitempty"`
	RegistryPRCount *int   `json:"registry_pr_count,omitempty"`
	InSync          bool   `json:"in_sync"`
}

// Summary is the repository-wide pull-request report.
type Summary struct {
	Games     []*GameSummary `json:"games"`
	Aggregate Aggregate      `json:"aggregate"`
}

// Aggregate holds figures computed across all games.
type Aggregate struct {
	Games    int     `json:"games"`
	TotalPRs int     `json:"total_prs"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Max      float64 `json:"max"`
}
