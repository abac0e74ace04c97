package models

// ZeroCommentRequest is a detail record for an open request that has never
// been commented on, is old enough to matter, and is marked ready for review.
// Never persisted.
type ZeroCommentRequest struct {
	Title      string `json:"title"`
	AgeDays    int    `json:"age_days"`
	URL        string `json:"url"`
	IsApproved bool   `json:"is_approved"`
	IsDraft    bool   `json:"is_draft"`
}

// StaleRequest is a detail record for an open request with no recent
// discussion or code update. Never persisted.
type StaleRequest struct {
	Title            string `json:"title"`
	LastActivityDays int    `json:"last_activity_days"`
	URL              string `json:"url"`
	IsApproved       bool   `json:"is_approved"`
	IsDraft          bool   `json:"is_draft"`
}

// StaleReport bundles the two independent detail lists produced by an open
// request aggregation run in detail mode.
type StaleReport struct {
	ZeroComment      []*ZeroCommentRequest `json:"zero_comment"`
	NoRecentActivity []*StaleRequest       `json:"no_recent_activity"`
}
