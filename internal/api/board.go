package api

import (
	"context"
	"net/url"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/types"
)

// JobBoard lists the public job board in the given order ("latest" or
// "popular"). An empty order lets the backend pick.
func (c *Client) JobBoard(ctx context.Context, order string) ([]types.JobBoardItem, error) {
	const path = "/api/jobs/board"
	var q url.Values
	if order != "" {
		q = url.Values{"sort": {order}}
	}
	var items []types.JobBoardItem
	if err := c.getJSON(ctx, path, q, schemas.Board, &items); err != nil {
		return nil, err
	}
	if err := types.ValidateAll(items); err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	return items, nil
}
