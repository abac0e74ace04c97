package github

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/pkg/logger"
)

// Client enumerates review requests and their comment/timeline history for
// the repositories of one organization
type Client struct {
	gh  *github.Client
	org string
}

// NewClient creates a client for the given organization. An empty token
// produces an unauthenticated client.
func NewClient(token, org string) *Client {
	client := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	}

	return &Client{gh: client, org: org}
}

// ListOpenRequests fetches all open pull requests of a repository as review
// request views, including their review outcomes and last push time
func (c *Client) ListOpenRequests(ctx context.Context, repoName string) ([]*models.ReviewRequest, error) {
	opts := &github.PullRequestListOptions{
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var requests []*models.ReviewRequest
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.org, repoName, opts)
		if err != nil {
			return nil, err
		}

		for _, pr := range prs {
			req := c.toReviewRequest(pr)

			// Review outcomes decide the approved count
			states, err := c.listReviewStates(ctx, repoName, pr.GetNumber())
			if err != nil {
				logger.WithError(err).Warnf("Review lookup failed for %s#%d", repoName, pr.GetNumber())
			} else {
				req.ApprovalStates = states
			}

			// The head commit's time is the last code update; fall back to
			// the creation time when it cannot be fetched
			if pushedAt, err := c.lastPushTime(ctx, repoName, pr.GetNumber()); err != nil {
				logger.WithError(err).Warnf("Commit lookup failed for %s#%d", repoName, pr.GetNumber())
			} else if !pushedAt.IsZero() {
				req.LastPushAt = pushedAt
			}

			requests = append(requests, req)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return requests, nil
}

// ListClosedRequests fetches the closed pull requests of a repository in
// descending update order, the ordering the cycle-time aggregation relies on
func (c *Client) ListClosedRequests(ctx context.Context, repoName string) ([]*models.ReviewRequest, error) {
	opts := &github.PullRequestListOptions{
		State:     "closed",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var requests []*models.ReviewRequest
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.org, repoName, opts)
		if err != nil {
			return nil, err
		}

		for _, pr := range prs {
			requests = append(requests, c.toReviewRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return requests, nil
}

// ListCommentTimes fetches the creation timestamps of a request's issue
// comments
func (c *Client) ListCommentTimes(ctx context.Context, repoName string, number int) ([]time.Time, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var times []time.Time
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.org, repoName, number, opts)
		if err != nil {
			return nil, err
		}

		for _, comment := range comments {
			if comment.CreatedAt != nil {
				times = append(times, comment.CreatedAt.Time)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return times, nil
}

// ListReopenTimes fetches the timestamps of a request's reopened timeline
// events
func (c *Client) ListReopenTimes(ctx context.Context, repoName string, number int) ([]time.Time, error) {
	opts := &github.ListOptions{
		PerPage: 100,
	}

	var times []time.Time
	for {
		events, resp, err := c.gh.Issues.ListIssueTimeline(ctx, c.org, repoName, number, opts)
		if err != nil {
			return nil, err
		}

		for _, event := range events {
			if event.GetEvent() == models.TimelineEventReopened && event.CreatedAt != nil {
				times = append(times, event.CreatedAt.Time)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return times, nil
}

func (c *Client) listReviewStates(ctx context.Context, repoName string, number int) ([]string, error) {
	opts := &github.ListOptions{
		PerPage: 100,
	}

	var states []string
	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, c.org, repoName, number, opts)
		if err != nil {
			return nil, err
		}

		for _, review := range reviews {
			states = append(states, review.GetState())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return states, nil
}

func (c *Client) lastPushTime(ctx context.Context, repoName string, number int) (time.Time, error) {
	opts := &github.ListOptions{
		PerPage: 100,
	}

	var last time.Time
	for {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, c.org, repoName, number, opts)
		if err != nil {
			return time.Time{}, err
		}

		for _, commit := range commits {
			if commit.Commit != nil && commit.Commit.Committer != nil && commit.Commit.Committer.Date != nil {
				if commit.Commit.Committer.Date.Time.After(last) {
					last = commit.Commit.Committer.Date.Time
				}
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return last, nil
}

func (c *Client) toReviewRequest(pr *github.PullRequest) *models.ReviewRequest {
	req := &models.ReviewRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		URL:          pr.GetHTMLURL(),
		CommentCount: pr.GetComments(),
		IsDraft:      pr.GetDraft(),
	}

	if pr.User != nil {
		req.AuthorLogin = pr.User.GetLogin()
	}
	if pr.CreatedAt != nil {
		req.CreatedAt = pr.CreatedAt.Time
		req.LastPushAt = pr.CreatedAt.Time
	}
	if pr.ClosedAt != nil {
		req.ClosedAt = &pr.ClosedAt.Time
	}
	for _, label := range pr.Labels {
		req.Labels = append(req.Labels, label.GetName())
	}

	return req
}
