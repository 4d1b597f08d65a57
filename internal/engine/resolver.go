package engine

import (
	"context"
	"strings"

	"github.com/triageflow/boardbot/internal/board"
)

// projectName returns the board name for the engine's label, "Bug Project"
// style. Matching elsewhere is case-insensitive, so only creation cares
// about the capitalization.
func (e *Engine) projectName() string {
	label := e.label
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return label + " Project"
}

// resolveProject looks up the repository's label project by naming
// convention. The second return distinguishes "no project exists" from a
// failed remote call: absence is an answer here, not an error.
func (e *Engine) resolveProject(ctx context.Context, owner, repo string) (board.Project, bool, error) {
	projects, err := e.boards.ListProjects(ctx, owner, repo)
	if err != nil {
		return board.Project{}, false, err
	}

	want := e.projectName()
	for _, p := range projects {
		if strings.EqualFold(p.Name, want) {
			return p, true, nil
		}
	}
	return board.Project{}, false, nil
}

// createProject creates the label project with the canonical column layout.
// Columns are created in display order; the engine itself only ever needs
// the backlog, found by name. Partially created boards are left in place on
// failure and completed by hand or by a later delivery hitting the missing
// column error.
func (e *Engine) createProject(ctx context.Context, owner, repo string) (board.Project, error) {
	project, err := e.boards.CreateProject(ctx, owner, repo, e.projectName(),
		"Issues and pull requests labeled "+e.label)
	if err != nil {
		return board.Project{}, err
	}

	for _, name := range defaultColumns {
		if _, err := e.boards.CreateColumn(ctx, project.ID, name); err != nil {
			return board.Project{}, err
		}
	}
	return project, nil
}
