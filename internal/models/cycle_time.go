package models

// AuthorCycleStats holds cycle-time statistics for one author's closed
// requests within the observation window
type AuthorCycleStats struct {
	Count          int     `json:"count"`
	AvgDaysOpen    float64 `json:"avg_days_open"`
	StdDevDaysOpen float64 `json:"std_dev_days_open"`
}

// CycleTimeReport holds cycle-time statistics over the recently closed review
// requests of a repository. Not persisted.
type CycleTimeReport struct {
	RepoName       string                       `json:"repo_name"`
	WindowDays     int                          `json:"window_days"`
	TotalClosed    int                          `json:"total_closed"`
	AvgDaysOpen    float64                      `json:"avg_days_open"`
	StdDevDaysOpen float64                      `json:"std_dev_days_open"`
	PerAuthor      map[string]*AuthorCycleStats `json:"per_author,omitempty"`
	ReopenedCount  int                          `json:"reopened_count"`
}
