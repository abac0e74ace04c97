package models

// Direction classifies the movement of one metric between two snapshots
type Direction string

const (
	DirectionIncreased Direction = "increased"
	DirectionDecreased Direction = "decreased"
	DirectionUnchanged Direction = "unchanged"
)

// MetricDelta is one metric's movement between two snapshots. It carries no
// notion of better or worse; presentation decides how to style a direction.
type MetricDelta struct {
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
	Direction Direction `json:"direction"`
}

// ComparisonMetrics lists the numeric snapshot fields in display order
var ComparisonMetrics = []string{
	"total_open",
	"avg_age_days",
	"avg_age_days_excluding_oldest",
	"avg_comments",
	"avg_comments_with_comments",
	"approved_count",
	"oldest_age_days",
	"zero_comment_count",
}

// SnapshotComparison holds the per-metric movement between a current snapshot
// and a historical baseline
type SnapshotComparison struct {
	RepoName     string                 `json:"repo_name"`
	CurrentDate  string                 `json:"current_date"`
	PreviousDate string                 `json:"previous_date"`
	Metrics      map[string]MetricDelta `json:"metrics"`
}
