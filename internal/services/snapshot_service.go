package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/internal/repositories"
)

// ErrNoStoredSnapshots is returned in store-only mode when a repository has
// no persisted history to report from
var ErrNoStoredSnapshots = errors.New("no stored snapshots for repository")

type SnapshotService struct {
	snapshotRepo *repositories.SnapshotRepository
}

func NewSnapshotService(snapshotRepo *repositories.SnapshotRepository) *SnapshotService {
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
	}
}

// GetLatest retrieves the most recent snapshot for a repository
func (s *SnapshotService) GetLatest(repoName string) (*models.Snapshot, error) {
	if repoName == "" {
		return nil, errors.New("repository name is required")
	}
	return s.snapshotRepo.GetLatest(repoName)
}

// GetForDate retrieves the snapshot for an exact calendar day
func (s *SnapshotService) GetForDate(repoName string, date time.Time) (*models.Snapshot, error) {
	if repoName == "" {
		return nil, errors.New("repository name is required")
	}
	return s.snapshotRepo.GetForDate(repoName, date)
}

// GetInRange retrieves all snapshots between start and end inclusive
func (s *SnapshotService) GetInRange(repoName string, start, end time.Time) ([]*models.Snapshot, error) {
	if repoName == "" {
		return nil, errors.New("repository name is required")
	}
	if end.Before(start) {
		return nil, errors.New("end date must not be before start date")
	}
	return s.snapshotRepo.GetInRange(repoName, start, end)
}

// GetLatestRequired retrieves the most recent snapshot for a repository and
// fails when none is stored. Used in store-only mode, where the caller should
// fall back to live aggregation.
func (s *SnapshotService) GetLatestRequired(repoName string) (*models.Snapshot, error) {
	snapshot, err := s.GetLatest(repoName)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStoredSnapshots, repoName)
	}
	return snapshot, nil
}
