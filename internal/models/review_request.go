package models

import (
	"time"
)

// ApprovalStateApproved is the review outcome that marks a request as approved.
const ApprovalStateApproved = "APPROVED"

// TimelineEventReopened is the timeline event kind emitted when a closed
// request is reopened.
const TimelineEventReopened = "reopened"

// ReviewRequest is a read-only view of a pull request supplied by the GitHub
// client. ClosedAt is nil while the request is open.
type ReviewRequest struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	CreatedAt      time.Time  `json:"created_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	CommentCount   int        `json:"comment_count"`
	ApprovalStates []string   `json:"approval_states"`
	Labels         []string   `json:"labels"`
	IsDraft        bool       `json:"is_draft"`
	LastPushAt     time.Time  `json:"last_push_at"`
	AuthorLogin    string     `json:"author_login"`
}

// IsApproved reports whether at least one review outcome is an approval.
func (r *ReviewRequest) IsApproved() bool {
	for _, state := range r.ApprovalStates {
		if state == ApprovalStateApproved {
			return true
		}
	}
	return false
}

// HasLabel reports whether the request carries the given label.
func (r *ReviewRequest) HasLabel(label string) bool {
	for _, l := range r.Labels {
		if l == label {
			return true
		}
	}
	return false
}
