package engine

import (
	"context"

	"github.com/triageflow/boardbot/internal/board"
)

// cardURLs collects the content URLs of every card in the given columns.
// The set is rebuilt for each delivery and discarded with it; the remote
// board is the only durable state. Costs one call per column, single page
// each, so boards past one page of cards are a known limitation.
func (e *Engine) cardURLs(ctx context.Context, columns []board.Column) (map[string]struct{}, error) {
	urls := make(map[string]struct{})
	for _, column := range columns {
		cards, err := e.boards.ListCards(ctx, column.ID)
		if err != nil {
			return nil, err
		}
		for _, card := range cards {
			if card.ContentURL != "" {
				urls[card.ContentURL] = struct{}{}
			}
		}
	}
	return urls, nil
}
