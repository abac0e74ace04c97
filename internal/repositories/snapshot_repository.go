package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prpulse/prpulse/internal/models"
)

// snapshotColumn describes one column of the review_snapshots table. The
// migration in Init relies on this list to add columns that predate the
// current schema.
type snapshotColumn struct {
	name       string
	definition string
}

// snapshotColumns lists every non-key column with its ALTER TABLE definition.
// New snapshot fields must be appended here so older databases pick them up.
var snapshotColumns = []snapshotColumn{
	{"total_open", "INTEGER DEFAULT 0"},
	{"avg_age_days", "REAL DEFAULT 0"},
	{"avg_age_days_excluding_oldest", "REAL DEFAULT 0"},
	{"avg_comments", "REAL DEFAULT 0"},
	{"avg_comments_with_comments", "REAL DEFAULT 0"},
	{"approved_count", "INTEGER DEFAULT 0"},
	{"oldest_age_days", "INTEGER DEFAULT 0"},
	{"oldest_title", "TEXT DEFAULT ''"},
	{"zero_comment_count", "INTEGER DEFAULT 0"},
}

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Init creates the snapshot table if missing and adds any columns the stored
// schema predates. Safe to run repeatedly.
func (r *SnapshotRepository) Init() error {
	if err := r.createTable(); err != nil {
		return err
	}
	return r.migrateSchema()
}

func (r *SnapshotRepository) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS review_snapshots (
			repo_name TEXT,
			date TEXT,
			total_open INTEGER,
			avg_age_days REAL,
			avg_age_days_excluding_oldest REAL,
			avg_comments REAL,
			avg_comments_with_comments REAL,
			approved_count INTEGER,
			oldest_age_days INTEGER,
			oldest_title TEXT,
			zero_comment_count INTEGER,
			PRIMARY KEY (repo_name, date)
		)
	`

	_, err := r.db.Exec(query)
	return err
}

// migrateSchema adds missing columns with their defaults without touching
// existing rows' other values
func (r *SnapshotRepository) migrateSchema() error {
	rows, err := r.db.Query("PRAGMA table_info(review_snapshots)")
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range snapshotColumns {
		if existing[col.name] {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE review_snapshots ADD COLUMN %s %s", col.name, col.definition)
		if _, err := r.db.Exec(alter); err != nil {
			return err
		}
	}

	return nil
}

// Save upserts a snapshot for its (repo_name, date) key, fully replacing any
// prior row
func (r *SnapshotRepository) Save(snapshot *models.Snapshot) error {
	query := `
		INSERT OR REPLACE INTO review_snapshots (
			repo_name, date, total_open, avg_age_days, avg_age_days_excluding_oldest,
			avg_comments, avg_comments_with_comments, approved_count,
			oldest_age_days, oldest_title, zero_comment_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		snapshot.RepoName, snapshot.DateString(),
		snapshot.TotalOpen, snapshot.AvgAgeDays, snapshot.AvgAgeDaysExcludingOldest,
		snapshot.AvgComments, snapshot.AvgCommentsWithComments, snapshot.ApprovedCount,
		snapshot.OldestAgeDays, snapshot.OldestTitle, snapshot.ZeroCommentCount,
	)

	return err
}

const snapshotSelect = `
	SELECT repo_name, date, total_open, avg_age_days, avg_age_days_excluding_oldest,
	       avg_comments, avg_comments_with_comments, approved_count,
	       oldest_age_days, oldest_title, zero_comment_count
	FROM review_snapshots
`

// GetLatest retrieves the most recent snapshot for a repository, or nil if
// none is stored
func (r *SnapshotRepository) GetLatest(repoName string) (*models.Snapshot, error) {
	query := snapshotSelect + `WHERE repo_name = ? ORDER BY date DESC LIMIT 1`
	return r.queryOne(query, repoName)
}

// GetForDate retrieves the snapshot for an exact calendar day, or nil if none
// is stored
func (r *SnapshotRepository) GetForDate(repoName string, date time.Time) (*models.Snapshot, error) {
	query := snapshotSelect + `WHERE repo_name = ? AND date = ?`
	return r.queryOne(query, repoName, date.Format(models.SnapshotDateFormat))
}

// GetBeforeDate retrieves the most recent snapshot strictly before the given
// day, or nil if none is stored
func (r *SnapshotRepository) GetBeforeDate(repoName string, date time.Time) (*models.Snapshot, error) {
	query := snapshotSelect + `WHERE repo_name = ? AND date < ? ORDER BY date DESC LIMIT 1`
	return r.queryOne(query, repoName, date.Format(models.SnapshotDateFormat))
}

// GetEarliest retrieves the oldest snapshot for a repository, or nil if none
// is stored
func (r *SnapshotRepository) GetEarliest(repoName string) (*models.Snapshot, error) {
	query := snapshotSelect + `WHERE repo_name = ? ORDER BY date ASC LIMIT 1`
	return r.queryOne(query, repoName)
}

// GetInRange retrieves all snapshots between start and end inclusive, ordered
// ascending by date
func (r *SnapshotRepository) GetInRange(repoName string, start, end time.Time) ([]*models.Snapshot, error) {
	query := snapshotSelect + `WHERE repo_name = ? AND date BETWEEN ? AND ? ORDER BY date ASC`

	rows, err := r.db.Query(query, repoName,
		start.Format(models.SnapshotDateFormat), end.Format(models.SnapshotDateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

func (r *SnapshotRepository) queryOne(query string, args ...interface{}) (*models.Snapshot, error) {
	row := r.db.QueryRow(query, args...)

	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		// A missing row is an absent value, not an error
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	var dateStr string

	err := row.Scan(
		&snapshot.RepoName, &dateStr,
		&snapshot.TotalOpen, &snapshot.AvgAgeDays, &snapshot.AvgAgeDaysExcludingOldest,
		&snapshot.AvgComments, &snapshot.AvgCommentsWithComments, &snapshot.ApprovedCount,
		&snapshot.OldestAgeDays, &snapshot.OldestTitle, &snapshot.ZeroCommentCount,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(models.SnapshotDateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot date %q: %w", dateStr, err)
	}
	snapshot.Date = date

	return &snapshot, nil
}
