// Package chat drives one question-and-answer exchange: it sends the
// message, feeds stream frames through a Cycle and reports the outcome.
package chat

import (
	"strings"
	"sync"

	"github.com/papercomputeco/tutor/pkg/stream"
	"github.com/papercomputeco/tutor/pkg/throttle"
)

// Phase is the state of the thinking panel within a cycle.
type Phase int

const (
	// Idle means no thinking has been seen yet.
	Idle Phase = iota

	// Thinking means reasoning fragments are arriving and the panel is open.
	Thinking

	// Finalized means reasoning is over for this cycle. It is never left.
	Finalized
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Thinking:
		return "thinking"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Renderer draws a cycle. Methods are called with the cycle's lock held,
// from the goroutine calling Apply or End, or from the throttle's timer
// goroutine for deferred answer renders. They must not call back into the
// Cycle.
type Renderer interface {
	// ThinkingStarted opens the thinking panel, expanded.
	ThinkingStarted()

	// ThinkingUpdated replaces the panel body with the reasoning so far.
	ThinkingUpdated(text string)

	// ThinkingFinished collapses the panel and marks it finished.
	ThinkingFinished()

	// AnswerUpdated re-renders the answer with the full markdown so far.
	AnswerUpdated(markdown string)
}

// Cycle accumulates one streamed reply. It is created per send and
// discarded when the send returns.
type Cycle struct {
	mu sync.Mutex

	renderer Renderer
	throttle *throttle.Throttle

	thinking strings.Builder
	content  strings.Builder
	rendered string
	phase    Phase

	thinkingSeen bool
	contentSeen  bool
	doneSeen     bool
	errMsg       string
	errSeen      bool

	terminal bool
	ended    bool
}

// NewCycle returns a Cycle that renders through r, throttled per cfg.
func NewCycle(r Renderer, cfg throttle.Config) *Cycle {
	c := &Cycle{renderer: r}
	c.throttle = throttle.New(cfg, c.flush)
	return c
}

// Apply advances the cycle with one frame. Frames after a done or error
// frame, or after End, are ignored.
func (c *Cycle) Apply(f stream.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminal || c.ended {
		return
	}

	switch f.Kind {
	case stream.KindThinking:
		c.applyThinkingLocked(f.Text)

	case stream.KindContent:
		c.applyContentLocked(f.Text)

	case stream.KindDone:
		c.finalizeThinkingLocked()
		c.doneSeen = true
		c.terminal = true
		c.forceRenderLocked()

	case stream.KindError:
		c.finalizeThinkingLocked()
		c.errSeen = true
		c.errMsg = f.Text
		if c.errMsg == "" {
			c.errMsg = stream.DefaultErrorMessage
		}
		c.terminal = true
		c.forceRenderLocked()
	}
}

func (c *Cycle) applyThinkingLocked(text string) {
	if text == "" || c.phase == Finalized {
		return
	}

	if c.phase == Idle {
		c.phase = Thinking
		c.thinkingSeen = true
		c.renderer.ThinkingStarted()
	}

	c.thinking.WriteString(text)
	c.renderer.ThinkingUpdated(c.thinking.String())
}

func (c *Cycle) applyContentLocked(text string) {
	if text == "" {
		return
	}

	c.finalizeThinkingLocked()
	c.contentSeen = true
	c.content.WriteString(text)

	if c.throttle.Request(throttle.ModeFor(text)) {
		c.renderLocked()
	}
}

// End closes the cycle at end of transport. It cancels any pending
// render, draws the final answer and reports the outcome:
//   - *ProtocolError when the server sent an error frame
//   - ErrEmptyCompletion when done arrived with nothing before it
//   - ErrIncomplete when neither done nor error arrived
//   - nil otherwise
//
// End is idempotent.
func (c *Cycle) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ended {
		c.ended = true
		c.throttle.Stop()
		c.finalizeThinkingLocked()
		c.forceRenderLocked()
	}

	return c.outcomeLocked()
}

func (c *Cycle) outcomeLocked() error {
	switch {
	case c.errSeen:
		return &ProtocolError{Message: c.errMsg}
	case c.doneSeen && !c.thinkingSeen && !c.contentSeen:
		return ErrEmptyCompletion
	case !c.terminal:
		return ErrIncomplete
	default:
		return nil
	}
}

// flush is the throttle's deferred render.
func (c *Cycle) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return
	}
	c.renderLocked()
}

func (c *Cycle) finalizeThinkingLocked() {
	if c.phase != Thinking {
		return
	}
	c.phase = Finalized
	c.renderer.ThinkingFinished()
}

func (c *Cycle) forceRenderLocked() {
	if c.content.Len() == 0 {
		c.throttle.Stop()
		return
	}
	if c.throttle.Request(throttle.Force) {
		c.renderLocked()
	}
}

func (c *Cycle) renderLocked() {
	s := c.content.String()
	if s == c.rendered {
		return
	}
	c.rendered = s
	c.renderer.AnswerUpdated(s)
}

// Phase returns the current thinking phase.
func (c *Cycle) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Terminal reports whether a done or error frame has been applied.
func (c *Cycle) Terminal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Thinking returns the accumulated reasoning text.
func (c *Cycle) Thinking() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinking.String()
}

// Content returns the accumulated answer markdown.
func (c *Cycle) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content.String()
}
