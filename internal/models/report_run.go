package models

import (
	"time"

	"github.com/google/uuid"
)

// Report run modes
const (
	RunModeOpen   = "open"
	RunModeClosed = "closed"
)

// ReportRun is an audit record for a single aggregation run over one
// repository
type ReportRun struct {
	ID           string     `json:"id" db:"id"`
	RepoName     string     `json:"repo_name" db:"repo_name"`
	Mode         string     `json:"mode" db:"mode"`
	RequestCount int        `json:"request_count" db:"request_count"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
}

// NewReportRun creates a new ReportRun with a generated UUID
func NewReportRun(repoName, mode string) *ReportRun {
	return &ReportRun{
		ID:        uuid.New().String(),
		RepoName:  repoName,
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

// Finish marks the run as finished with the number of requests it processed
func (r *ReportRun) Finish(requestCount int) {
	now := time.Now()
	r.RequestCount = requestCount
	r.FinishedAt = &now
}
