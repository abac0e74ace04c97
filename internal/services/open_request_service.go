package services

import (
	"context"
	"sort"
	"time"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/pkg/logger"
)

// SnapshotSaver persists one snapshot per repository per calendar day
type SnapshotSaver interface {
	Save(snapshot *models.Snapshot) error
}

// CommentSource supplies the comment timestamps of a single review request.
// An error means the timestamps are unavailable, not that the request has no
// comments.
type CommentSource interface {
	ListCommentTimes(ctx context.Context, repoName string, number int) ([]time.Time, error)
}

// OpenSnapshotOptions controls detail output and the two staleness detectors
type OpenSnapshotOptions struct {
	// Detail enables the two stale-list outputs
	Detail bool
	// StaleThresholdDays enables the no-recent-activity detector when > 0,
	// which implies Detail
	StaleThresholdDays int
	// MinZeroCommentAgeDays is the minimum age for the zero-comment list
	MinZeroCommentAgeDays int
	// ReadyLabel marks a request as ready for review
	ReadyLabel string
	// DoNotMergeLabel excludes a request from the no-recent-activity list
	DoNotMergeLabel string
}

type OpenRequestService struct {
	snapshotRepo SnapshotSaver
	comments     CommentSource
}

func NewOpenRequestService(snapshotRepo SnapshotSaver, comments CommentSource) *OpenRequestService {
	return &OpenRequestService{
		snapshotRepo: snapshotRepo,
		comments:     comments,
	}
}

// ComputeOpenSnapshot aggregates the currently open review requests of a
// repository into a snapshot and persists it for the current UTC day. When
// detail mode is active it also produces the two independent stale lists.
// An empty request set produces (and persists) an all-zero snapshot.
func (s *OpenRequestService) ComputeOpenSnapshot(ctx context.Context, repoName string, requests []*models.ReviewRequest, opts OpenSnapshotOptions) (*models.Snapshot, *models.StaleReport, error) {
	now := time.Now().UTC()
	detail := opts.Detail || opts.StaleThresholdDays > 0

	snapshot := models.NewSnapshot(repoName)
	snapshot.TotalOpen = len(requests)

	var ages []float64
	var comments []float64
	var commentsNonZero []float64
	oldestAge := 0
	oldestTitle := ""

	var zeroCommentList []*models.ZeroCommentRequest

	for i, req := range requests {
		age := wholeDaysSince(now, req.CreatedAt)
		ages = append(ages, float64(age))

		// Ties keep the first request reaching the maximum
		if i == 0 || age > oldestAge {
			oldestAge = age
			oldestTitle = req.Title
		}

		comments = append(comments, float64(req.CommentCount))
		if req.CommentCount > 0 {
			commentsNonZero = append(commentsNonZero, float64(req.CommentCount))
		} else {
			snapshot.ZeroCommentCount++
			if detail && age >= opts.MinZeroCommentAgeDays && req.HasLabel(opts.ReadyLabel) {
				zeroCommentList = append(zeroCommentList, &models.ZeroCommentRequest{
					Title:      req.Title,
					AgeDays:    age,
					URL:        req.URL,
					IsApproved: req.IsApproved(),
					IsDraft:    req.IsDraft,
				})
			}
		}

		if req.IsApproved() {
			snapshot.ApprovedCount++
		}
	}

	snapshot.AvgAgeDays = mean(ages)
	snapshot.AvgComments = mean(comments)
	snapshot.AvgCommentsWithComments = mean(commentsNonZero)
	snapshot.OldestAgeDays = oldestAge
	snapshot.OldestTitle = oldestTitle

	// Every request tied with the maximum age is excluded, not just the one
	// tracked as oldest
	if len(requests) > 1 {
		var younger []float64
		for _, age := range ages {
			if age < float64(oldestAge) {
				younger = append(younger, age)
			}
		}
		snapshot.AvgAgeDaysExcludingOldest = mean(younger)
	}

	var report *models.StaleReport
	if detail {
		sort.Slice(zeroCommentList, func(i, j int) bool {
			return zeroCommentList[i].AgeDays > zeroCommentList[j].AgeDays
		})

		report = &models.StaleReport{ZeroComment: zeroCommentList}
		if opts.StaleThresholdDays > 0 {
			report.NoRecentActivity = s.detectStale(ctx, repoName, requests, opts, now)
		}
	}

	if err := s.snapshotRepo.Save(snapshot); err != nil {
		return nil, nil, err
	}

	return snapshot, report, nil
}

// detectStale finds open requests whose last comment and last code push are
// both at least the threshold old. Requests labeled do-not-merge are skipped;
// draft status only annotates.
func (s *OpenRequestService) detectStale(ctx context.Context, repoName string, requests []*models.ReviewRequest, opts OpenSnapshotOptions, now time.Time) []*models.StaleRequest {
	var stale []*models.StaleRequest

	for _, req := range requests {
		if req.HasLabel(opts.DoNotMergeLabel) {
			continue
		}

		lastActivityDays := s.lastActivityDays(ctx, repoName, req, now)
		if lastActivityDays < opts.StaleThresholdDays {
			continue
		}

		// A recent push keeps the request out of the list even when the
		// discussion has gone quiet
		if wholeDaysSince(now, req.LastPushAt) < opts.StaleThresholdDays {
			continue
		}

		stale = append(stale, &models.StaleRequest{
			Title:            req.Title,
			LastActivityDays: lastActivityDays,
			URL:              req.URL,
			IsApproved:       req.IsApproved(),
			IsDraft:          req.IsDraft,
		})
	}

	return stale
}

// lastActivityDays returns the age of the most recent comment, falling back
// to the age of the request itself when comments are missing or unavailable
func (s *OpenRequestService) lastActivityDays(ctx context.Context, repoName string, req *models.ReviewRequest, now time.Time) int {
	times, err := s.comments.ListCommentTimes(ctx, repoName, req.Number)
	if err != nil {
		logger.WithError(err).Warnf("Comment lookup failed for %s#%d, falling back to creation date", repoName, req.Number)
		return wholeDaysSince(now, req.CreatedAt)
	}
	if len(times) == 0 {
		return wholeDaysSince(now, req.CreatedAt)
	}

	latest := times[0]
	for _, t := range times[1:] {
		if t.After(latest) {
			latest = t
		}
	}
	return wholeDaysSince(now, latest)
}

// wholeDaysSince returns the floor of the elapsed whole days, never negative
func wholeDaysSince(now time.Time, t time.Time) int {
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
