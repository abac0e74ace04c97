package services

import (
	"time"

	"github.com/prpulse/prpulse/internal/models"
)

// SnapshotHistory supplies the stored snapshots a comparison is built from
type SnapshotHistory interface {
	GetBeforeDate(repoName string, date time.Time) (*models.Snapshot, error)
	GetEarliest(repoName string) (*models.Snapshot, error)
}

type ComparisonService struct {
	snapshotRepo SnapshotHistory
}

func NewComparisonService(snapshotRepo SnapshotHistory) *ComparisonService {
	return &ComparisonService{
		snapshotRepo: snapshotRepo,
	}
}

// GetBaseline retrieves the newest stored snapshot at least daysAgo days old,
// falling back to the earliest stored snapshot. Returns nil when the store
// holds no history for the repository.
func (s *ComparisonService) GetBaseline(repoName string, daysAgo int) (*models.Snapshot, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -(daysAgo - 1))

	baseline, err := s.snapshotRepo.GetBeforeDate(repoName, cutoff)
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		return baseline, nil
	}

	return s.snapshotRepo.GetEarliest(repoName)
}

// GetComparison compares the current snapshot against the baseline from
// daysAgo days before now. Returns nil when no history exists at all.
func (s *ComparisonService) GetComparison(current *models.Snapshot, daysAgo int) (*models.SnapshotComparison, error) {
	baseline, err := s.GetBaseline(current.RepoName, daysAgo)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, nil
	}

	return Compare(current, baseline), nil
}

// Compare classifies each numeric metric's movement between two snapshots.
// No better/worse judgment is encoded; that belongs to presentation.
func Compare(current, previous *models.Snapshot) *models.SnapshotComparison {
	metrics := map[string]models.MetricDelta{
		"total_open":                    delta(float64(current.TotalOpen), float64(previous.TotalOpen)),
		"avg_age_days":                  delta(current.AvgAgeDays, previous.AvgAgeDays),
		"avg_age_days_excluding_oldest": delta(current.AvgAgeDaysExcludingOldest, previous.AvgAgeDaysExcludingOldest),
		"avg_comments":                  delta(current.AvgComments, previous.AvgComments),
		"avg_comments_with_comments":    delta(current.AvgCommentsWithComments, previous.AvgCommentsWithComments),
		"approved_count":                delta(float64(current.ApprovedCount), float64(previous.ApprovedCount)),
		"oldest_age_days":               delta(float64(current.OldestAgeDays), float64(previous.OldestAgeDays)),
		"zero_comment_count":            delta(float64(current.ZeroCommentCount), float64(previous.ZeroCommentCount)),
	}

	return &models.SnapshotComparison{
		RepoName:     current.RepoName,
		CurrentDate:  current.DateString(),
		PreviousDate: previous.DateString(),
		Metrics:      metrics,
	}
}

func delta(current, previous float64) models.MetricDelta {
	d := models.MetricDelta{Current: current, Previous: previous}
	switch {
	case current > previous:
		d.Direction = models.DirectionIncreased
	case current < previous:
		d.Direction = models.DirectionDecreased
	default:
		d.Direction = models.DirectionUnchanged
	}
	return d
}
