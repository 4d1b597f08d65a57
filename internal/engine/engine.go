package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/triageflow/boardbot/internal/board"
	"github.com/triageflow/boardbot/internal/event"
	"github.com/triageflow/boardbot/internal/logger"
)

// Boards is the board API surface the engine drives. *board.Client
// satisfies it; tests substitute an in-memory fake.
type Boards interface {
	ListProjects(ctx context.Context, owner, repo string) ([]board.Project, error)
	CreateProject(ctx context.Context, owner, repo, name, body string) (board.Project, error)
	ListColumns(ctx context.Context, projectID int64) ([]board.Column, error)
	CreateColumn(ctx context.Context, projectID int64, name string) (board.Column, error)
	ListCards(ctx context.Context, columnID int64) ([]board.Card, error)
	CreateCard(ctx context.Context, columnID, contentID int64, contentType string) (board.Card, error)
	DeleteCard(ctx context.Context, cardID int64) error
	GetIssue(ctx context.Context, owner, repo string, number int) (board.Issue, error)
}

// Outcomes reported to the caller after a delivery is processed
const (
	OutcomeCardAdded   = "card_added"
	OutcomeCardRemoved = "card_removed"
	OutcomeNoop        = "noop"
)

// backlogColumn is the intake column for newly labeled items,
// matched case-insensitively.
const backlogColumn = "Backlog"

// defaultColumns is the layout created with a new project, in order
var defaultColumns = []string{backlogColumn, "In Progress", "For Review", "In Review", "Done"}

// MissingColumnError means a project has no backlog column to insert into.
// That is a board misconfiguration, fatal for the delivery; redelivering
// won't help until the column is restored.
type MissingColumnError struct {
	ProjectID int64
	Column    string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("project %d has no %q column", e.ProjectID, e.Column)
}

// Engine keeps a repository's label project board in step with its
// label events. It holds no state between deliveries: every decision is
// guarded by re-reading the remote board, so duplicate deliveries are
// absorbed, at the cost of a small window where two truly concurrent
// deliveries for the same issue can both pass the existence check. The
// same window applies to first-label project creation. Both races are
// accepted; the API offers no compare-and-create to close them.
type Engine struct {
	boards Boards
	label  string
}

// New creates an engine syncing boards for the given target label
func New(boards Boards, label string) *Engine {
	return &Engine{boards: boards, label: label}
}

// Handle runs one delivery through the state machine and reports what
// happened. Steps run in order on the calling goroutine; later steps
// depend on earlier results.
func (e *Engine) Handle(ctx context.Context, ev *event.LabelEvent) (string, error) {
	log := logger.WithFields(
		logger.F("action", ev.Action),
		logger.F("repo", ev.Owner+"/"+ev.Repo),
		logger.F("number", ev.Number),
	)

	switch ev.Action {
	case event.ActionLabeled:
		return e.handleLabeled(ctx, ev, log)
	case event.ActionUnlabeled:
		return e.handleUnlabeled(ctx, ev, log)
	default:
		return OutcomeNoop, nil
	}
}

func (e *Engine) handleLabeled(ctx context.Context, ev *event.LabelEvent, log *logger.Logger) (string, error) {
	contentID, contentURL, err := e.resolveSubject(ctx, ev)
	if err != nil {
		return "", err
	}

	project, found, err := e.resolveProject(ctx, ev.Owner, ev.Repo)
	if err != nil {
		return "", err
	}
	if !found {
		project, err = e.createProject(ctx, ev.Owner, ev.Repo)
		if err != nil {
			return "", err
		}
		log.Info("created project board", logger.F("project", project.Name), logger.F("project_id", project.ID))
	}

	columns, err := e.boards.ListColumns(ctx, project.ID)
	if err != nil {
		return "", err
	}
	backlog, ok := findColumn(columns, backlogColumn)
	if !ok {
		return "", &MissingColumnError{ProjectID: project.ID, Column: backlogColumn}
	}

	urls, err := e.cardURLs(ctx, columns)
	if err != nil {
		return "", err
	}
	if _, exists := urls[contentURL]; exists {
		log.Info("card already on board")
		return OutcomeNoop, nil
	}

	if _, err := e.boards.CreateCard(ctx, backlog.ID, contentID, "Issue"); err != nil {
		return "", err
	}
	log.Info("added card to backlog", logger.F("url", contentURL))
	return OutcomeCardAdded, nil
}

func (e *Engine) handleUnlabeled(ctx context.Context, ev *event.LabelEvent, log *logger.Logger) (string, error) {
	// Never create a project just to remove from it
	project, found, err := e.resolveProject(ctx, ev.Owner, ev.Repo)
	if err != nil {
		return "", err
	}
	if !found {
		log.Info("no project board, nothing to remove")
		return OutcomeNoop, nil
	}

	_, contentURL, err := e.resolveSubject(ctx, ev)
	if err != nil {
		return "", err
	}

	columns, err := e.boards.ListColumns(ctx, project.ID)
	if err != nil {
		return "", err
	}

	// An issue has at most one card across the project, so the scan
	// stops at the first match.
	for _, column := range columns {
		cards, err := e.boards.ListCards(ctx, column.ID)
		if err != nil {
			return "", err
		}
		for _, card := range cards {
			if card.ContentURL != contentURL {
				continue
			}
			if err := e.boards.DeleteCard(ctx, card.ID); err != nil {
				return "", err
			}
			log.Info("removed card", logger.F("column", column.Name), logger.F("url", contentURL))
			return OutcomeCardRemoved, nil
		}
	}

	log.Info("no card for subject, nothing to remove")
	return OutcomeNoop, nil
}

// resolveSubject returns the content id and canonical issue URL for the
// delivery's subject. Issue deliveries carry both; pull requests need an
// issue lookup because the payload lacks the issues-API URL.
func (e *Engine) resolveSubject(ctx context.Context, ev *event.LabelEvent) (int64, string, error) {
	if ev.Kind == event.KindIssue && ev.IssueURL != "" {
		return ev.IssueID, ev.IssueURL, nil
	}
	issue, err := e.boards.GetIssue(ctx, ev.Owner, ev.Repo, ev.Number)
	if err != nil {
		return 0, "", fmt.Errorf("failed to resolve subject %s/%s#%d: %w", ev.Owner, ev.Repo, ev.Number, err)
	}
	return issue.ID, issue.URL, nil
}

func findColumn(columns []board.Column, name string) (board.Column, bool) {
	for _, c := range columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return board.Column{}, false
}
