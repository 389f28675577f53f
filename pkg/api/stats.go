package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// StatsOverview returns the user's attempt totals and accuracy.
func (c *Client) StatsOverview(ctx context.Context, s Session) (*StatsOverview, error) {
	out := &StatsOverview{}
	if err := c.do(ctx, s, http.MethodGet, "/api/stats/overview", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Wrongbook lists wrongly answered questions matching f.
func (c *Client) Wrongbook(ctx context.Context, s Session, f WrongbookFilter) ([]WrongbookEntry, error) {
	path := "/api/stats/wrongbook"

	q := url.Values{}
	switch {
	case f.Ungrouped:
		q.Set("ungrouped", "true")
	case f.GroupID > 0:
		q.Set("groupId", strconv.FormatInt(f.GroupID, 10))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []WrongbookEntry
	if err := c.do(ctx, s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
