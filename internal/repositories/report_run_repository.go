package repositories

import (
	"database/sql"

	"github.com/prpulse/prpulse/internal/models"
)

type ReportRunRepository struct {
	db *sql.DB
}

func NewReportRunRepository(db *sql.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Init creates the report runs table if missing
func (r *ReportRunRepository) Init() error {
	query := `
		CREATE TABLE IF NOT EXISTS report_runs (
			id TEXT PRIMARY KEY,
			repo_name TEXT NOT NULL,
			mode TEXT NOT NULL,
			request_count INTEGER DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)
	`

	_, err := r.db.Exec(query)
	return err
}

// Create inserts a new report run record
func (r *ReportRunRepository) Create(run *models.ReportRun) error {
	query := `
		INSERT INTO report_runs (id, repo_name, mode, request_count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID, run.RepoName, run.Mode, run.RequestCount, run.StartedAt, run.FinishedAt,
	)

	return err
}

// Update updates an existing report run record
func (r *ReportRunRepository) Update(run *models.ReportRun) error {
	query := `
		UPDATE report_runs SET request_count = ?, finished_at = ? WHERE id = ?
	`

	_, err := r.db.Exec(query, run.RequestCount, run.FinishedAt, run.ID)
	return err
}

// GetByRepoName retrieves all runs for a repository, newest first
func (r *ReportRunRepository) GetByRepoName(repoName string) ([]*models.ReportRun, error) {
	query := `
		SELECT id, repo_name, mode, request_count, started_at, finished_at
		FROM report_runs WHERE repo_name = ?
		ORDER BY started_at DESC
	`

	rows, err := r.db.Query(query, repoName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ReportRun
	for rows.Next() {
		var run models.ReportRun
		err := rows.Scan(&run.ID, &run.RepoName, &run.Mode, &run.RequestCount, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
