package event

import (
	"errors"
	"time"
)

// ErrIgnored marks a delivery that is valid but not relevant: wrong event
// type, wrong action, or a label other than the target.
var ErrIgnored = errors.New("event not relevant")

// ErrMalformedPayload marks a delivery whose body can't be decoded or is
// missing required fields.
var ErrMalformedPayload = errors.New("malformed payload")

// Kind of subject a delivery refers to
const (
	KindIssue       = "issue"
	KindPullRequest = "pull_request"
)

// Webhook actions the engine reacts to
const (
	ActionLabeled   = "labeled"
	ActionUnlabeled = "unlabeled"
)

// LabelEvent is a normalized label-change delivery. Built once per delivery
// and discarded after processing.
//
// IssueURL and IssueID are empty for pull requests: the webhook payload
// doesn't carry the canonical issue identity, so the engine resolves both
// with an issue lookup.
type LabelEvent struct {
	Kind      string
	Action    string
	Label     string
	Owner     string
	Repo      string
	Number    int
	IssueID   int64
	Title     string
	IssueURL  string
	Sender    string
	UpdatedAt time.Time
}
