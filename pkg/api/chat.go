package api

import (
	"context"
	"io"
	"net/http"
)

// StreamChat sends a message and returns the line-delimited JSON response
// body. The caller must close it. The request is bounded only by ctx.
func (c *Client) StreamChat(ctx context.Context, s Session, r ChatRequest) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, s, http.MethodPost, "/api/unified/chat/stream", r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain, application/x-ndjson")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
