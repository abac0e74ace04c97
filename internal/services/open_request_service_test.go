package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prpulse/prpulse/internal/models"
)

type fakeSnapshotStore struct {
	saved   []*models.Snapshot
	saveErr error
}

func (f *fakeSnapshotStore) Save(snapshot *models.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, snapshot)
	return nil
}

type fakeCommentSource struct {
	times map[int][]time.Time
	errs  map[int]error
}

func (f *fakeCommentSource) ListCommentTimes(_ context.Context, _ string, number int) ([]time.Time, error) {
	if err := f.errs[number]; err != nil {
		return nil, err
	}
	return f.times[number], nil
}

func newOpenService() (*OpenRequestService, *fakeSnapshotStore, *fakeCommentSource) {
	store := &fakeSnapshotStore{}
	comments := &fakeCommentSource{times: map[int][]time.Time{}, errs: map[int]error{}}
	return NewOpenRequestService(store, comments), store, comments
}

// openRequest builds an open request created the given number of days ago,
// with a margin so the whole-day floor is stable while the test runs
func openRequest(number int, title string, ageDays int, commentCount int) *models.ReviewRequest {
	created := time.Now().UTC().Add(-time.Duration(ageDays)*24*time.Hour - time.Hour)
	return &models.ReviewRequest{
		Number:       number,
		Title:        title,
		URL:          "https://example.com/pr/" + title,
		CreatedAt:    created,
		CommentCount: commentCount,
		LastPushAt:   created,
	}
}

func TestComputeOpenSnapshotEmptyInput(t *testing.T) {
	service, store, _ := newOpenService()

	snapshot, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1", nil, OpenSnapshotOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalOpen)
	assert.Equal(t, 0.0, snapshot.AvgAgeDays)
	assert.Equal(t, 0.0, snapshot.AvgAgeDaysExcludingOldest)
	assert.Equal(t, 0.0, snapshot.AvgComments)
	assert.Equal(t, 0.0, snapshot.AvgCommentsWithComments)
	assert.Equal(t, 0, snapshot.ApprovedCount)
	assert.Equal(t, 0, snapshot.OldestAgeDays)
	assert.Equal(t, "", snapshot.OldestTitle)
	assert.Equal(t, 0, snapshot.ZeroCommentCount)
	assert.Nil(t, stale)

	// The zero snapshot is still persisted
	require.Len(t, store.saved, 1)
	assert.Equal(t, snapshot, store.saved[0])
}

func TestComputeOpenSnapshotAverages(t *testing.T) {
	service, store, _ := newOpenService()

	requests := []*models.ReviewRequest{
		openRequest(1, "old", 5, 3),
		openRequest(2, "young", 2, 5),
	}
	requests[1].ApprovalStates = []string{models.ApprovalStateApproved}

	snapshot, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1", requests, OpenSnapshotOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.TotalOpen)
	assert.Equal(t, 3.5, snapshot.AvgAgeDays)
	assert.Equal(t, 4.0, snapshot.AvgComments)
	assert.Equal(t, 4.0, snapshot.AvgCommentsWithComments)
	assert.Equal(t, 1, snapshot.ApprovedCount)
	assert.Equal(t, 5, snapshot.OldestAgeDays)
	assert.Equal(t, "old", snapshot.OldestTitle)
	assert.Equal(t, 0, snapshot.ZeroCommentCount)
	assert.Equal(t, 2.0, snapshot.AvgAgeDaysExcludingOldest)

	require.Len(t, store.saved, 1)
}

func TestComputeOpenSnapshotOrderIndependentAverages(t *testing.T) {
	requests := []*models.ReviewRequest{
		openRequest(1, "a", 7, 1),
		openRequest(2, "b", 3, 2),
		openRequest(3, "c", 1, 0),
	}
	reversed := []*models.ReviewRequest{requests[2], requests[1], requests[0]}

	serviceA, _, _ := newOpenService()
	forward, _, err := serviceA.ComputeOpenSnapshot(context.Background(), "repo1", requests, OpenSnapshotOptions{})
	require.NoError(t, err)

	serviceB, _, _ := newOpenService()
	backward, _, err := serviceB.ComputeOpenSnapshot(context.Background(), "repo1", reversed, OpenSnapshotOptions{})
	require.NoError(t, err)

	assert.Equal(t, forward.AvgAgeDays, backward.AvgAgeDays)
	assert.Equal(t, forward.AvgComments, backward.AvgComments)
	assert.Equal(t, forward.OldestAgeDays, backward.OldestAgeDays)
	assert.Equal(t, forward.ZeroCommentCount, backward.ZeroCommentCount)
}

func TestOldestTrackingWithEmptyTitle(t *testing.T) {
	service, _, _ := newOpenService()

	requests := []*models.ReviewRequest{
		openRequest(1, "", 5, 1),
		openRequest(2, "young", 2, 1),
	}

	snapshot, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1", requests, OpenSnapshotOptions{})
	require.NoError(t, err)

	// An empty title on the oldest request must not let younger requests
	// take over the maximum
	assert.Equal(t, 5, snapshot.OldestAgeDays)
	assert.Equal(t, "", snapshot.OldestTitle)
	assert.Equal(t, 2.0, snapshot.AvgAgeDaysExcludingOldest)
}

func TestExcludingOldestDropsAllTiedRequests(t *testing.T) {
	service, _, _ := newOpenService()

	requests := []*models.ReviewRequest{
		openRequest(1, "first oldest", 5, 1),
		openRequest(2, "second oldest", 5, 1),
		openRequest(3, "young", 2, 1),
	}

	snapshot, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1", requests, OpenSnapshotOptions{})
	require.NoError(t, err)

	// Ties keep the first title, and every tied request is excluded from the
	// excluding-oldest average
	assert.Equal(t, "first oldest", snapshot.OldestTitle)
	assert.Equal(t, 2.0, snapshot.AvgAgeDaysExcludingOldest)
}

func TestExcludingOldestSingleRequest(t *testing.T) {
	service, _, _ := newOpenService()

	snapshot, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{openRequest(1, "only", 5, 1)}, OpenSnapshotOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, snapshot.AvgAgeDaysExcludingOldest)
}

func TestExcludingOldestAllTied(t *testing.T) {
	service, _, _ := newOpenService()

	requests := []*models.ReviewRequest{
		openRequest(1, "a", 4, 1),
		openRequest(2, "b", 4, 1),
	}

	snapshot, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1", requests, OpenSnapshotOptions{})
	require.NoError(t, err)

	// Every request ties with the maximum, so the subset is empty
	assert.Equal(t, 0.0, snapshot.AvgAgeDaysExcludingOldest)
}

func TestZeroCommentFilter(t *testing.T) {
	service, _, _ := newOpenService()

	tooYoung := openRequest(1, "too young", 1, 0)
	tooYoung.Labels = []string{"ready for review"}
	unlabeled := openRequest(2, "unlabeled", 10, 0)
	ready := openRequest(3, "ready", 7, 0)
	ready.Labels = []string{"ready for review"}
	older := openRequest(4, "older ready", 12, 0)
	older.Labels = []string{"ready for review"}
	commented := openRequest(5, "commented", 20, 4)

	opts := OpenSnapshotOptions{
		Detail:                true,
		MinZeroCommentAgeDays: 2,
		ReadyLabel:            "ready for review",
	}

	snapshot, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{tooYoung, unlabeled, ready, older, commented}, opts)
	require.NoError(t, err)

	// All zero-comment requests are counted regardless of the display filter
	assert.Equal(t, 4, snapshot.ZeroCommentCount)
	assert.Equal(t, 4.0, snapshot.AvgCommentsWithComments)

	require.NotNil(t, stale)
	require.Len(t, stale.ZeroComment, 2)
	// Sorted by descending age
	assert.Equal(t, "older ready", stale.ZeroComment[0].Title)
	assert.Equal(t, 12, stale.ZeroComment[0].AgeDays)
	assert.Equal(t, "ready", stale.ZeroComment[1].Title)
}

func TestZeroCommentListNeedsDetailMode(t *testing.T) {
	service, _, _ := newOpenService()

	ready := openRequest(1, "ready", 7, 0)
	ready.Labels = []string{"ready for review"}

	snapshot, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{ready}, OpenSnapshotOptions{MinZeroCommentAgeDays: 2, ReadyLabel: "ready for review"})
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.ZeroCommentCount)
	assert.Nil(t, stale)
}

func TestNoRecentActivityFilter(t *testing.T) {
	service, _, comments := newOpenService()
	now := time.Now().UTC()

	quiet := openRequest(1, "quiet", 30, 2)
	quiet.LastPushAt = now.Add(-20 * 24 * time.Hour)
	comments.times[1] = []time.Time{now.Add(-25 * 24 * time.Hour), now.Add(-15 * 24 * time.Hour)}

	recentlyPushed := openRequest(2, "recently pushed", 30, 2)
	recentlyPushed.LastPushAt = now.Add(-3 * 24 * time.Hour)
	comments.times[2] = []time.Time{now.Add(-15 * 24 * time.Hour)}

	recentlyDiscussed := openRequest(3, "recently discussed", 30, 2)
	recentlyDiscussed.LastPushAt = now.Add(-20 * 24 * time.Hour)
	comments.times[3] = []time.Time{now.Add(-2 * 24 * time.Hour)}

	blocked := openRequest(4, "blocked", 30, 2)
	blocked.Labels = []string{"do not merge"}
	blocked.LastPushAt = now.Add(-20 * 24 * time.Hour)
	comments.times[4] = []time.Time{now.Add(-15 * 24 * time.Hour)}

	draft := openRequest(5, "draft", 30, 2)
	draft.IsDraft = true
	draft.ApprovalStates = []string{models.ApprovalStateApproved}
	draft.LastPushAt = now.Add(-20 * 24 * time.Hour)
	comments.times[5] = []time.Time{now.Add(-15 * 24 * time.Hour)}

	opts := OpenSnapshotOptions{
		StaleThresholdDays: 10,
		DoNotMergeLabel:    "do not merge",
	}

	_, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{quiet, recentlyPushed, recentlyDiscussed, blocked, draft}, opts)
	require.NoError(t, err)

	require.NotNil(t, stale)
	require.Len(t, stale.NoRecentActivity, 2)

	assert.Equal(t, "quiet", stale.NoRecentActivity[0].Title)
	assert.Equal(t, 15, stale.NoRecentActivity[0].LastActivityDays)

	// Draft status annotates but never excludes
	assert.Equal(t, "draft", stale.NoRecentActivity[1].Title)
	assert.True(t, stale.NoRecentActivity[1].IsDraft)
	assert.True(t, stale.NoRecentActivity[1].IsApproved)
}

func TestNoRecentActivityFallsBackToCreationDate(t *testing.T) {
	service, _, comments := newOpenService()
	now := time.Now().UTC()

	// Comment lookup fails: fall back to days since creation
	failing := openRequest(1, "failing lookup", 30, 2)
	failing.LastPushAt = now.Add(-30 * 24 * time.Hour)
	comments.errs[1] = errors.New("boom")

	// No comments at all: same fallback
	silent := openRequest(2, "never discussed", 30, 0)
	silent.LastPushAt = now.Add(-30 * 24 * time.Hour)

	// Failure on one request must not abort the rest
	fresh := openRequest(3, "fresh", 1, 0)
	comments.errs[3] = errors.New("boom")

	opts := OpenSnapshotOptions{StaleThresholdDays: 10, DoNotMergeLabel: "do not merge"}

	snapshot, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{failing, silent, fresh}, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.TotalOpen)
	require.NotNil(t, stale)
	require.Len(t, stale.NoRecentActivity, 2)
	assert.Equal(t, "failing lookup", stale.NoRecentActivity[0].Title)
	assert.Equal(t, 30, stale.NoRecentActivity[0].LastActivityDays)
	assert.Equal(t, "never discussed", stale.NoRecentActivity[1].Title)
}

func TestStaleThresholdImpliesDetail(t *testing.T) {
	service, _, _ := newOpenService()

	ready := openRequest(1, "ready", 7, 0)
	ready.Labels = []string{"ready for review"}

	opts := OpenSnapshotOptions{
		StaleThresholdDays:    60,
		MinZeroCommentAgeDays: 2,
		ReadyLabel:            "ready for review",
	}

	_, stale, err := service.ComputeOpenSnapshot(context.Background(), "repo1",
		[]*models.ReviewRequest{ready}, opts)
	require.NoError(t, err)

	// Detail output is produced even though Detail was not set explicitly
	require.NotNil(t, stale)
	assert.Len(t, stale.ZeroComment, 1)
	assert.Empty(t, stale.NoRecentActivity)
}

func TestSaveFailurePropagates(t *testing.T) {
	service, store, _ := newOpenService()
	store.saveErr = errors.New("disk full")

	_, _, err := service.ComputeOpenSnapshot(context.Background(), "repo1", nil, OpenSnapshotOptions{})
	assert.Error(t, err)
}
