package api

import (
	"context"
	"net/http"
	"strconv"
)

const groupsPath = "/api/wrongbook/groups"

type groupName struct {
	Name string `json:"name"`
}

// ListGroups returns the user's wrongbook groups.
func (c *Client) ListGroups(ctx context.Context, s Session) ([]Group, error) {
	var out []Group
	if err := c.do(ctx, s, http.MethodGet, groupsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGroup adds a wrongbook group.
func (c *Client) CreateGroup(ctx context.Context, s Session, name string) (*Group, error) {
	out := &Group{}
	if err := c.do(ctx, s, http.MethodPost, groupsPath, groupName{Name: name}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameGroup renames a wrongbook group.
func (c *Client) RenameGroup(ctx context.Context, s Session, id int64, name string) (*Group, error) {
	out := &Group{}
	if err := c.do(ctx, s, http.MethodPut, groupsPath+"/"+strconv.FormatInt(id, 10), groupName{Name: name}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteGroup removes a wrongbook group. Its questions become ungrouped.
func (c *Client) DeleteGroup(ctx context.Context, s Session, id int64) error {
	return c.do(ctx, s, http.MethodDelete, groupsPath+"/"+strconv.FormatInt(id, 10), nil, nil)
}

// AssignQuestionGroup moves a question into a group. A nil groupID moves
// it out of any group.
func (c *Client) AssignQuestionGroup(ctx context.Context, s Session, questionID int64, groupID *int64) error {
	body := struct {
		GroupID *int64 `json:"groupId"`
	}{GroupID: groupID}

	return c.do(ctx, s, http.MethodPut, "/api/wrongbook/questions/"+strconv.FormatInt(questionID, 10)+"/group", body, nil)
}
