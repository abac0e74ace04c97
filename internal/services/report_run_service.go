package services

import (
	"errors"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/internal/repositories"
)

type ReportRunService struct {
	runRepo *repositories.ReportRunRepository
}

func NewReportRunService(runRepo *repositories.ReportRunRepository) *ReportRunService {
	return &ReportRunService{
		runRepo: runRepo,
	}
}

// GetByRepoName retrieves a repository's aggregation run history, newest first
func (s *ReportRunService) GetByRepoName(repoName string) ([]*models.ReportRun, error) {
	if repoName == "" {
		return nil, errors.New("repository name is required")
	}
	return s.runRepo.GetByRepoName(repoName)
}
