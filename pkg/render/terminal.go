package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/tutor/pkg/chat"
)

var _ chat.Renderer = (*Terminal)(nil)

// TerminalConfig configures a Terminal renderer.
type TerminalConfig struct {
	Out io.Writer

	// TTY enables in-place re-rendering. Without it the thinking and the
	// answer are written once by Finish.
	TTY bool

	// Width is the terminal width in columns. Cursor movement counts the
	// rows that longer lines wrap onto. Zero means lines never wrap.
	Width int

	Markdown *Markdown
}

// Terminal renders a cycle to a line-oriented terminal. On a TTY the
// thinking text streams dimmed under a header and collapses to the header
// when thinking finishes; each answer render moves the cursor back over
// the previous one and redraws it.
//
// A Terminal is reused across cycles; call Finish after each one.
type Terminal struct {
	mu sync.Mutex

	out   io.Writer
	tty   bool
	width int
	md    *Markdown

	thinking     string
	thinkingOpen bool
	answerRows   int
	answer       string
}

func NewTerminal(cfg TerminalConfig) *Terminal {
	md := cfg.Markdown
	if md == nil {
		md = NewMarkdown(ResolveStyle("", cfg.TTY), 80)
	}
	return &Terminal{out: cfg.Out, tty: cfg.TTY, width: cfg.Width, md: md}
}

func (t *Terminal) ThinkingStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tty {
		return
	}
	t.eraseAnswerLocked()
	fmt.Fprintln(t.out, Panel{}.Header())
	t.thinkingOpen = true
}

func (t *Terminal) ThinkingUpdated(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	shown := len(t.thinking)
	if len(text) <= shown {
		return
	}
	t.thinking = text

	if t.tty && t.thinkingOpen {
		fmt.Fprint(t.out, dim(text[shown:]))
	}
}

// ThinkingFinished moves back to the panel header and redraws it
// collapsed, then restores any answer drawn before thinking began.
func (t *Terminal) ThinkingFinished() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tty || !t.thinkingOpen {
		return
	}
	t.thinkingOpen = false

	up := 1 + t.rowsAbove(t.thinking)
	fmt.Fprint(t.out, ansi.CursorUp(up)+"\r"+ansi.EraseScreenBelow)
	fmt.Fprintln(t.out, Panel{Collapsed: true, Finished: true}.Header())
	t.drawAnswerLocked()
}

func (t *Terminal) AnswerUpdated(markdown string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.answer = markdown
	if !t.tty {
		return
	}
	t.eraseAnswerLocked()
	t.drawAnswerLocked()
}

// Finish closes the current cycle. Off a TTY it writes the thinking panel
// and the final answer. The renderer is then ready for the next cycle.
func (t *Terminal) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tty {
		if strings.TrimSpace(t.thinking) != "" {
			fmt.Fprintln(t.out, Panel{Text: t.thinking, Finished: true}.View(t.panelWidth()))
			fmt.Fprintln(t.out)
		}
		if t.answer != "" {
			out := t.md.Render(t.answer)
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			fmt.Fprint(t.out, out)
		}
	}

	t.thinking = ""
	t.thinkingOpen = false
	t.answerRows = 0
	t.answer = ""
}

func (t *Terminal) eraseAnswerLocked() {
	if t.answerRows == 0 {
		return
	}
	fmt.Fprint(t.out, ansi.CursorUp(t.answerRows)+"\r"+ansi.EraseScreenBelow)
	t.answerRows = 0
}

func (t *Terminal) drawAnswerLocked() {
	rendered := t.md.Render(t.answer)
	if rendered == "" {
		return
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	fmt.Fprint(t.out, rendered)
	t.answerRows = t.rowsAbove(rendered)
}

// rowsAbove is how many rows the cursor moves down while s is printed
// from the first column, counting rows added by wrapping at t.width.
func (t *Terminal) rowsAbove(s string) int {
	lines := strings.Split(s, "\n")
	rows := len(lines) - 1
	if t.width <= 0 {
		return rows
	}
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > 0 {
			rows += (w - 1) / t.width
		}
	}
	return rows
}

func (t *Terminal) panelWidth() int {
	switch {
	case t.width > 0:
		return t.width
	case t.md.Width() > 0:
		return t.md.Width()
	default:
		return 80
	}
}

// dim styles each line on its own so lipgloss does not pad short lines
// to the width of the longest.
func dim(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = ThinkingStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
