package api

import (
	"context"
	"net/http"
	"strconv"
)

const documentsPath = "/api/knowledge/documents"

// ListDocuments returns the user's knowledge-base documents.
func (c *Client) ListDocuments(ctx context.Context, s Session) ([]Document, error) {
	var out []Document
	if err := c.do(ctx, s, http.MethodGet, documentsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentSummary returns the server-generated summary of a document.
func (c *Client) DocumentSummary(ctx context.Context, s Session, id int64) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, s, http.MethodGet, documentsPath+"/"+strconv.FormatInt(id, 10)+"/summary", nil, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// DeleteDocument removes a document and its segments.
func (c *Client) DeleteDocument(ctx context.Context, s Session, id int64) error {
	return c.do(ctx, s, http.MethodDelete, documentsPath+"/"+strconv.FormatInt(id, 10), nil, nil)
}
