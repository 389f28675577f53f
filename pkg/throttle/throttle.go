// Package throttle coalesces re-render requests for a streaming answer.
//
// A Throttle holds at most one pending trailing flush. Requests inside the
// current interval collapse into that flush instead of stacking timers, and
// a Force request cancels it and renders immediately.
package throttle

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Mode selects the minimum interval applied to a render request.
type Mode int

const (
	// Normal applies the longer interval, used for mid-sentence deltas.
	Normal Mode = iota

	// Boundary applies the shorter interval, used when a delta closes a
	// sentence, heading, list item, line or code fence.
	Boundary

	// Force renders now regardless of the interval.
	Force
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Boundary:
		return "boundary"
	case Force:
		return "force"
	default:
		return "unknown"
	}
}

const (
	DefaultInterval         = 240 * time.Millisecond
	DefaultBoundaryInterval = 140 * time.Millisecond
)

// Config configures a Throttle. Zero values fall back to the defaults and
// the real clock.
type Config struct {
	Interval         time.Duration
	BoundaryInterval time.Duration
	Clock            clock.WithDelayedExecution
}

// Throttle decides when the accumulated answer should be re-rendered.
//
// Request answers synchronously: true means the caller renders now.
// When a request is deferred, flush runs once on the clock's timer
// goroutine when the interval elapses. flush is never called with the
// throttle's lock held, so it may take the caller's own lock.
type Throttle struct {
	mu sync.Mutex

	clock    clock.WithDelayedExecution
	interval time.Duration
	boundary time.Duration
	flush    func()

	rendered bool
	last     time.Time

	timer clock.Timer
	gen   uint64
}

// New returns a Throttle that calls flush for deferred renders.
func New(cfg Config, flush func()) *Throttle {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BoundaryInterval <= 0 {
		cfg.BoundaryInterval = DefaultBoundaryInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	return &Throttle{
		clock:    cfg.Clock,
		interval: cfg.Interval,
		boundary: cfg.BoundaryInterval,
		flush:    flush,
	}
}

// Request asks for a render in the given mode and reports whether the
// caller should render immediately.
func (t *Throttle) Request(mode Mode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	if mode == Force || !t.rendered {
		t.renderedLocked(now)
		return true
	}

	wait := t.interval
	if mode == Boundary {
		wait = t.boundary
	}

	elapsed := now.Sub(t.last)
	if elapsed >= wait {
		t.renderedLocked(now)
		return true
	}

	if t.timer != nil {
		return false
	}

	t.gen++
	gen := t.gen
	due := t.last.Add(wait)
	t.timer = t.clock.AfterFunc(wait-elapsed, func() { t.fire(gen, due) })

	return false
}

// Pending reports whether a trailing flush is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop cancels any pending flush. Later requests are still honored.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// fire runs on the timer goroutine. It must not call into the clock: fake
// clocks invoke timer callbacks while holding their own lock.
func (t *Throttle) fire(gen uint64, due time.Time) {
	t.mu.Lock()
	if gen != t.gen || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.rendered = true
	t.last = due
	t.mu.Unlock()

	t.flush()
}

func (t *Throttle) renderedLocked(now time.Time) {
	t.cancelLocked()
	t.rendered = true
	t.last = now
}

func (t *Throttle) cancelLocked() {
	if t.timer == nil {
		return
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
}
