package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// payload covers the fields shared by issue and pull-request label deliveries
type payload struct {
	Action string `json:"action"`
	Number int    `json:"number"` // top-level, pull_request deliveries only
	Label  struct {
		Name string `json:"name"`
	} `json:"label"`
	Issue *struct {
		ID        int64  `json:"id"`
		Number    int    `json:"number"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		UpdatedAt string `json:"updated_at"`
	} `json:"issue"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// Parser turns raw webhook deliveries into LabelEvents for one target label
type Parser struct {
	Label string
}

// NewParser creates a parser for the given target label
func NewParser(label string) *Parser {
	return &Parser{Label: label}
}

// Parse maps an event type header and JSON body to a LabelEvent.
// Returns ErrIgnored for deliveries that need no action and an error
// wrapping ErrMalformedPayload when required fields are missing.
// Label comparison is case-sensitive.
func (p *Parser) Parse(eventType string, body []byte) (*LabelEvent, error) {
	if eventType != "issues" && eventType != "pull_request" {
		return nil, ErrIgnored
	}

	var pl payload
	if err := json.Unmarshal(body, &pl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if pl.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrMalformedPayload)
	}
	if pl.Action != ActionLabeled && pl.Action != ActionUnlabeled {
		return nil, ErrIgnored
	}
	if pl.Label.Name == "" {
		return nil, fmt.Errorf("%w: missing label.name", ErrMalformedPayload)
	}
	if pl.Label.Name != p.Label {
		return nil, ErrIgnored
	}
	if pl.Sender.Login == "" {
		return nil, fmt.Errorf("%w: missing sender.login", ErrMalformedPayload)
	}
	if pl.Repository.Owner.Login == "" || pl.Repository.Name == "" {
		return nil, fmt.Errorf("%w: missing repository identity", ErrMalformedPayload)
	}

	ev := &LabelEvent{
		Action: pl.Action,
		Label:  pl.Label.Name,
		Owner:  pl.Repository.Owner.Login,
		Repo:   pl.Repository.Name,
		Sender: pl.Sender.Login,
	}

	switch eventType {
	case "issues":
		if pl.Issue == nil || pl.Issue.Number == 0 {
			return nil, fmt.Errorf("%w: missing issue", ErrMalformedPayload)
		}
		ev.Kind = KindIssue
		ev.IssueID = pl.Issue.ID
		ev.Number = pl.Issue.Number
		ev.Title = pl.Issue.Title
		ev.IssueURL = pl.Issue.URL
		if ts, err := time.Parse(time.RFC3339, pl.Issue.UpdatedAt); err == nil {
			ev.UpdatedAt = ts
		}
	case "pull_request":
		if pl.Number == 0 {
			return nil, fmt.Errorf("%w: missing pull request number", ErrMalformedPayload)
		}
		ev.Kind = KindPullRequest
		ev.Number = pl.Number
	}

	return ev, nil
}
