package models

import (
	"time"
)

// SnapshotDateFormat is the calendar-day format snapshots are keyed by.
const SnapshotDateFormat = "2006-01-02"

// Snapshot represents one day's aggregate statistics for the open review
// requests of a single repository
type Snapshot struct {
	RepoName                  string    `json:"repo_name" db:"repo_name"`
	Date                      time.Time `json:"date" db:"date"`
	TotalOpen                 int       `json:"total_open" db:"total_open"`
	AvgAgeDays                float64   `json:"avg_age_days" db:"avg_age_days"`
	AvgAgeDaysExcludingOldest float64   `json:"avg_age_days_excluding_oldest" db:"avg_age_days_excluding_oldest"`
	AvgComments               float64   `json:"avg_comments" db:"avg_comments"`
	AvgCommentsWithComments   float64   `json:"avg_comments_with_comments" db:"avg_comments_with_comments"`
	ApprovedCount             int       `json:"approved_count" db:"approved_count"`
	OldestAgeDays             int       `json:"oldest_age_days" db:"oldest_age_days"`
	OldestTitle               string    `json:"oldest_title" db:"oldest_title"`
	ZeroCommentCount          int       `json:"zero_comment_count" db:"zero_comment_count"`
}

// NewSnapshot creates an empty snapshot for a repository dated to the current
// UTC calendar day
func NewSnapshot(repoName string) *Snapshot {
	return &Snapshot{
		RepoName: repoName,
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// DateString returns the snapshot's calendar-day key
func (s *Snapshot) DateString() string {
	return s.Date.Format(SnapshotDateFormat)
}
