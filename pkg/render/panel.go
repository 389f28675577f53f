package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ThinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	PanelHeader   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	PanelDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	panelBorder   = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)
)

// Panel is the state of one thinking panel.
type Panel struct {
	Text      string
	Collapsed bool
	Finished  bool
}

// Header returns the one-line panel title.
func (p Panel) Header() string {
	indicator := "▼"
	if p.Collapsed {
		indicator = "▶"
	}

	title := PanelHeader.Render(indicator + " Thinking")
	if p.Finished {
		title += " " + PanelDone.Render("(done)")
	}
	return title
}

// View renders the panel at width. A collapsed panel is just its header.
func (p Panel) View(width int) string {
	header := p.Header()
	body := strings.TrimRight(p.Text, "\n")
	if p.Collapsed || body == "" {
		return header
	}

	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	wrapped := lipgloss.NewStyle().Width(inner).Render(body)
	return header + "\n" + panelBorder.Render(ThinkingStyle.Render(wrapped))
}
