package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triageflow/boardbot/internal/event"
)

const issuePayload = `{
	"action": "labeled",
	"label": {"name": "bug"},
	"issue": {
		"id": 9001,
		"number": 42,
		"title": "crash on startup",
		"url": "https://api.github.com/repos/acme/widgets/issues/42",
		"updated_at": "2024-01-01T00:00:00Z"
	},
	"sender": {"login": "alice"},
	"repository": {"owner": {"login": "acme"}, "name": "widgets"}
}`

const pullRequestPayload = `{
	"action": "labeled",
	"number": 7,
	"label": {"name": "bug"},
	"sender": {"login": "bob"},
	"repository": {"owner": {"login": "acme"}, "name": "widgets"}
}`

func TestParser_Parse_Issues(t *testing.T) {
	p := event.NewParser("bug")

	ev, err := p.Parse("issues", []byte(issuePayload))
	require.NoError(t, err)

	assert.Equal(t, event.KindIssue, ev.Kind)
	assert.Equal(t, event.ActionLabeled, ev.Action)
	assert.Equal(t, "bug", ev.Label)
	assert.Equal(t, "acme", ev.Owner)
	assert.Equal(t, "widgets", ev.Repo)
	assert.Equal(t, 42, ev.Number)
	assert.Equal(t, int64(9001), ev.IssueID)
	assert.Equal(t, "crash on startup", ev.Title)
	assert.Equal(t, "https://api.github.com/repos/acme/widgets/issues/42", ev.IssueURL)
	assert.Equal(t, "alice", ev.Sender)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ev.UpdatedAt)
}

func TestParser_Parse_PullRequest(t *testing.T) {
	p := event.NewParser("bug")

	ev, err := p.Parse("pull_request", []byte(pullRequestPayload))
	require.NoError(t, err)

	assert.Equal(t, event.KindPullRequest, ev.Kind)
	assert.Equal(t, 7, ev.Number)
	assert.Equal(t, "bob", ev.Sender)
	// The payload has no canonical issue URL for a PR; the engine
	// resolves it later.
	assert.Empty(t, ev.IssueURL)
	assert.Zero(t, ev.IssueID)
}

func TestParser_Parse_Ignored(t *testing.T) {
	p := event.NewParser("bug")

	tests := []struct {
		name      string
		eventType string
		body      string
	}{
		{"unknown event type", "push", issuePayload},
		{"irrelevant action", "issues", `{"action": "opened", "issue": {"number": 1}}`},
		{"label mismatch", "issues", `{"action": "labeled", "label": {"name": "enhancement"},
			"issue": {"id": 1, "number": 1, "url": "u"},
			"sender": {"login": "a"},
			"repository": {"owner": {"login": "o"}, "name": "r"}}`},
		{"label case mismatch", "issues", `{"action": "labeled", "label": {"name": "Bug"},
			"issue": {"id": 1, "number": 1, "url": "u"},
			"sender": {"login": "a"},
			"repository": {"owner": {"login": "o"}, "name": "r"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.Parse(tt.eventType, []byte(tt.body))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, event.ErrIgnored)
		})
	}
}

func TestParser_Parse_Malformed(t *testing.T) {
	p := event.NewParser("bug")

	tests := []struct {
		name      string
		eventType string
		body      string
	}{
		{"invalid json", "issues", `{not json`},
		{"missing action", "issues", `{"label": {"name": "bug"}}`},
		{"missing label", "issues", `{"action": "labeled"}`},
		{"missing sender", "issues", `{"action": "labeled", "label": {"name": "bug"},
			"repository": {"owner": {"login": "o"}, "name": "r"}}`},
		{"missing repository", "issues", `{"action": "labeled", "label": {"name": "bug"},
			"sender": {"login": "a"}}`},
		{"missing issue", "issues", `{"action": "labeled", "label": {"name": "bug"},
			"sender": {"login": "a"},
			"repository": {"owner": {"login": "o"}, "name": "r"}}`},
		{"missing pr number", "pull_request", `{"action": "labeled", "label": {"name": "bug"},
			"sender": {"login": "a"},
			"repository": {"owner": {"login": "o"}, "name": "r"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.Parse(tt.eventType, []byte(tt.body))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, event.ErrMalformedPayload)
		})
	}
}

func TestParser_Parse_Unlabeled(t *testing.T) {
	p := event.NewParser("bug")

	body := `{
		"action": "unlabeled",
		"label": {"name": "bug"},
		"issue": {"id": 9001, "number": 42, "url": "https://api.github.com/repos/acme/widgets/issues/42"},
		"sender": {"login": "alice"},
		"repository": {"owner": {"login": "acme"}, "name": "widgets"}
	}`
	ev, err := p.Parse("issues", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, event.ActionUnlabeled, ev.Action)
}
