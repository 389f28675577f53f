package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

const conversationPath = "/api/unified/conversation"

// DefaultConversationTitle is used when a conversation is created without one.
const DefaultConversationTitle = "New conversation"

// ListConversations returns the user's conversations, most recent first
// as ordered by the server.
func (c *Client) ListConversations(ctx context.Context, s Session) ([]ConversationSummary, error) {
	var out []ConversationSummary
	if err := c.do(ctx, s, http.MethodGet, conversationPath+"/list/detail", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewConversation creates a conversation and returns its session id.
func (c *Client) NewConversation(ctx context.Context, s Session, title, model string) (string, error) {
	if title == "" {
		title = DefaultConversationTitle
	}
	body := struct {
		Title     string `json:"title"`
		ModelName string `json:"modelName,omitempty"`
	}{Title: title, ModelName: model}

	id, err := c.doText(ctx, s, http.MethodPost, conversationPath+"/new", body)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("server returned an empty session id")
	}
	return id, nil
}

// GetConversation returns the stored messages of a conversation.
func (c *Client) GetConversation(ctx context.Context, s Session, sessionID string) ([]Message, error) {
	var out []Message
	if err := c.do(ctx, s, http.MethodGet, conversationPath+"/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteConversation removes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, s Session, sessionID string) error {
	return c.do(ctx, s, http.MethodDelete, conversationPath+"/"+url.PathEscape(sessionID), nil, nil)
}
