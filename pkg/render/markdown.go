// Package render draws chat cycles to the terminal: a plain-mode renderer
// that re-renders the answer in place, an event renderer that feeds the
// TUI, and the glamour markdown and thinking panel helpers both share.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/tutor/pkg/config"
)

// ResolveStyle maps a render.style setting to a glamour standard style.
// "auto" picks dark or light from the terminal background, or "notty"
// when the output is not a terminal.
func ResolveStyle(style string, tty bool) string {
	switch style {
	case config.StyleDark, config.StyleLight, config.StyleNoTTY:
		return style
	}

	if !tty {
		return config.StyleNoTTY
	}
	if termenv.HasDarkBackground() {
		return config.StyleDark
	}
	return config.StyleLight
}

// Markdown renders answer markdown with glamour. Renderers are built
// lazily per wrap width and reused.
type Markdown struct {
	mu        sync.Mutex
	style     string
	width     int
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown returns a Markdown using a resolved glamour style (see
// ResolveStyle) that wraps at width. A width of zero disables wrapping.
func NewMarkdown(style string, width int) *Markdown {
	return &Markdown{
		style:     style,
		width:     width,
		renderers: map[int]*glamour.TermRenderer{},
	}
}

// Width returns the wrap width used by Render.
func (m *Markdown) Width() int {
	return m.width
}

// Style returns the glamour style in use.
func (m *Markdown) Style() string {
	return m.style
}

// Render renders content at the configured width.
func (m *Markdown) Render(content string) string {
	return m.RenderWidth(content, m.width)
}

// RenderWidth renders content wrapped at width. Partial answers may end
// inside a code fence; the fence is closed for display only. If glamour
// fails the raw markdown is returned.
func (m *Markdown) RenderWidth(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if hasUnclosedFence(content) {
		content += "\n```"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.rendererLocked(width)
	if err != nil {
		return content
	}

	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func (m *Markdown) rendererLocked(width int) (*glamour.TermRenderer, error) {
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
