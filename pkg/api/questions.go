package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const questionsPath = "/api/questions"

// GenerateQuestions asks the server to write practice questions for a document.
func (c *Client) GenerateQuestions(ctx context.Context, s Session, r QuestionGenerateRequest) ([]Question, error) {
	var out []Question
	if err := c.do(ctx, s, http.MethodPost, questionsPath+"/generate", r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentQuestions lists recently generated questions, optionally for one
// document (documentID > 0).
func (c *Client) RecentQuestions(ctx context.Context, s Session, documentID int64) ([]Question, error) {
	path := questionsPath + "/recent"
	if documentID > 0 {
		path += "?" + url.Values{"documentId": {strconv.FormatInt(documentID, 10)}}.Encode()
	}

	var out []Question
	if err := c.do(ctx, s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttemptQuestion submits an answer and returns the verdict.
func (c *Client) AttemptQuestion(ctx context.Context, s Session, id int64, chosen string) (*AttemptResult, error) {
	body := struct {
		Chosen string `json:"chosen"`
	}{Chosen: chosen}

	out := &AttemptResult{}
	if err := c.do(ctx, s, http.MethodPost, questionsPath+"/"+strconv.FormatInt(id, 10)+"/attempt", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeChoices canonicalizes a multiple-choice answer such as "c, a b"
// into "A,B,C".
func NormalizeChoices(raw string) string {
	parts := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return r < 'A' || r > 'Z'
	})
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// NormalizeAnswer prepares a user's answer for the given question type.
func NormalizeAnswer(kind, raw string) string {
	raw = strings.TrimSpace(raw)
	switch kind {
	case QuestionMultiple:
		return NormalizeChoices(raw)
	case QuestionShort:
		return raw
	default:
		return strings.ToUpper(raw)
	}
}
