package render

import (
	"context"

	"github.com/papercomputeco/tutor/pkg/chat"
)

var _ chat.Renderer = (*Events)(nil)

// EventKind identifies a renderer call.
type EventKind int

const (
	ThinkingStartedEvent EventKind = iota + 1
	ThinkingUpdatedEvent
	ThinkingFinishedEvent
	AnswerUpdatedEvent
)

func (k EventKind) String() string {
	switch k {
	case ThinkingStartedEvent:
		return "thinking-started"
	case ThinkingUpdatedEvent:
		return "thinking-updated"
	case ThinkingFinishedEvent:
		return "thinking-finished"
	case AnswerUpdatedEvent:
		return "answer-updated"
	default:
		return "unknown"
	}
}

// Event is one renderer call captured for another goroutine. Text is the
// full thinking text or answer markdown so far.
type Event struct {
	Kind EventKind
	Text string
}

// Events forwards renderer calls onto a channel, for UIs that draw from
// their own event loop. Sends give up once ctx is done.
type Events struct {
	ctx context.Context
	ch  chan<- Event
}

func NewEvents(ctx context.Context, ch chan<- Event) *Events {
	return &Events{ctx: ctx, ch: ch}
}

func (e *Events) ThinkingStarted()            { e.send(Event{Kind: ThinkingStartedEvent}) }
func (e *Events) ThinkingUpdated(text string) { e.send(Event{Kind: ThinkingUpdatedEvent, Text: text}) }
func (e *Events) ThinkingFinished()           { e.send(Event{Kind: ThinkingFinishedEvent}) }
func (e *Events) AnswerUpdated(markdown string) {
	e.send(Event{Kind: AnswerUpdatedEvent, Text: markdown})
}

func (e *Events) send(ev Event) {
	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
	}
}
