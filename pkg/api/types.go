package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp decodes the backend's date-times, which are either RFC 3339
// or zone-less local date-times such as "2025-03-01T09:30:00.123".
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	SessionID string    `json:"sessionId"`
	Title     string    `json:"title"`
	ModelName string    `json:"modelName"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Message is one stored turn of a conversation.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatRequest is the body of POST /api/unified/chat/stream. Image is a
// data URL and is omitted when nothing is attached.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Model     string `json:"model"`
	Image     string `json:"image,omitempty"`
}

// Document is a knowledge-base document.
type Document struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	SegmentCount int       `json:"segmentCount"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// Question types accepted by GenerateQuestions.
const (
	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
	QuestionJudgment = "judgment"
	QuestionShort    = "short"
)

// QuestionGenerateRequest is the body of POST /api/questions/generate.
type QuestionGenerateRequest struct {
	DocumentID  int64    `json:"documentId"`
	ChapterHint string   `json:"chapterHint,omitempty"`
	Count       int      `json:"count,omitempty"`
	Model       string   `json:"model,omitempty"`
	Types       []string `json:"types,omitempty"`
}

// Option is one labelled choice of a question.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is a generated practice question.
type Question struct {
	ID          int64    `json:"id"`
	DocumentID  int64    `json:"documentId"`
	Topic       string   `json:"topic"`
	Type        string   `json:"type"`
	Stem        string   `json:"stem"`
	Options     []Option `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Kind returns the lower-cased question type, defaulting to single choice.
func (q Question) Kind() string {
	if q.Type == "" {
		return QuestionSingle
	}
	return strings.ToLower(q.Type)
}

// AttemptResult is the verdict for one answer.
type AttemptResult struct {
	Correct bool   `json:"correct"`
	Chosen  string `json:"chosen"`
}

// StatsOverview summarizes the user's answer history.
type StatsOverview struct {
	TotalAttempts   int64   `json:"totalAttempts"`
	CorrectAttempts int64   `json:"correctAttempts"`
	WrongAttempts   int64   `json:"wrongAttempts"`
	Accuracy        float64 `json:"accuracy"`
}

// Snippet is a knowledge-base passage cited for a wrong answer.
type Snippet struct {
	DocumentID   int64  `json:"documentId"`
	SegmentIndex int    `json:"segmentIndex"`
	Content      string `json:"content"`
}

// WrongbookEntry is one wrongly answered question.
type WrongbookEntry struct {
	Question  Question  `json:"question"`
	Chosen    string    `json:"chosen"`
	CreatedAt Timestamp `json:"createdAt"`
	Snippets  []Snippet `json:"snippets"`
	GroupID   *int64    `json:"groupId"`
}

// WrongbookFilter narrows the wrong-answer list. The zero value lists
// every entry.
type WrongbookFilter struct {
	GroupID   int64
	Ungrouped bool
}

// Group is a user-defined wrongbook folder.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
