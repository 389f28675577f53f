package chatcmder

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/chat"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/render"
	"github.com/papercomputeco/tutor/pkg/utils"
)

var (
	tuiTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	tuiMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tuiWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	tuiErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// thread is what the full-screen model needs from a conversation.
type thread interface {
	Send(ctx context.Context, message string, r chat.Renderer) error
	Attach(path string) error
	Attached() bool
	Reset()
	Title() string
}

type entryRole int

const (
	roleUser entryRole = iota
	roleAssistant
	roleNotice
)

type entry struct {
	role   entryRole
	text   string
	panel  *render.Panel
	answer string
}

type cycleEventMsg struct {
	event render.Event
}

type cycleDoneMsg struct {
	err error
}

type chatKeyMap struct {
	Send   key.Binding
	Toggle key.Binding
	New    key.Binding
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Toggle, k.New, k.Up, k.Down, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Toggle, k.New}, {k.Up, k.Down, k.Quit}}
}

func defaultChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "thinking")),
		New:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Up:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		Down:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

type chatModel struct {
	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     chatKeyMap

	thread thread
	md     *render.Markdown
	model  string
	title  string

	entries []entry

	running bool
	cancel  context.CancelFunc
	eventCh chan render.Event
	doneCh  chan error

	warn  string
	err   error
	fatal error
	ready bool
}

func runTUI(cmd *cobra.Command, env *cmdenv.Env, conv *conversation) error {
	model := newChatModel(conv, env.Markdown(cmd.OutOrStdout()), env.Config.Client.Model)

	program := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(chatModel); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

func newChatModel(t thread, md *render.Markdown, model string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a question, /image <path> to attach, /new to start over"
	ti.Prompt = cliui.UserPrompt.Render("you> ")
	ti.CharLimit = 0
	ti.Focus()

	return chatModel{
		input:  ti,
		help:   help.New(),
		keys:   defaultChatKeyMap(),
		thread: t,
		md:     md,
		model:  model,
		title:  t.Title(),
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case cycleEventMsg:
		m = m.applyEvent(msg.event)
		m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case cycleDoneMsg:
		return m.finishCycle(msg.err)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m chatModel) resize(msg tea.WindowSizeMsg) chatModel {
	// header, status and input lines plus one spare
	vpHeight := max(msg.Height-4, 1)

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(msg.Width-6, 1)
	m.help.Width = msg.Width
	m.refresh()
	return m
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		if m.running {
			return m, nil
		}
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keys.Toggle):
		if m.toggleLatestPanel() {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		if !m.running {
			m = m.startOver()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.running {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit(value string) (tea.Model, tea.Cmd) {
	m.warn = ""
	m.err = nil

	if name, arg, ok := parseCommand(strings.TrimSpace(value)); ok {
		m.input.SetValue("")
		switch name {
		case "/exit", "/quit":
			return m, tea.Quit
		case "/new":
			m = m.startOver()
		case "/image":
			if err := m.thread.Attach(arg); err != nil {
				m.err = err
			} else {
				m.entries = append(m.entries, entry{role: roleNotice, text: "attached " + arg})
				m.refresh()
			}
		}
		return m, nil
	}

	if strings.TrimSpace(value) == "" && !m.thread.Attached() {
		return m, nil
	}

	text := value
	if m.thread.Attached() {
		text = strings.TrimSpace(value + " [image]")
	}
	m.input.SetValue("")
	m.entries = append(m.entries,
		entry{role: roleUser, text: text},
		entry{role: roleAssistant},
	)
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan render.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m.input.Blur()

	return m, tea.Batch(
		startCycle(ctx, m.thread, value, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

func (m chatModel) startOver() chatModel {
	m.thread.Reset()
	m.title = m.thread.Title()
	m.entries = append(m.entries, entry{role: roleNotice, text: "new conversation"})
	m.refresh()
	return m
}

// applyEvent updates the assistant entry of the running cycle.
func (m chatModel) applyEvent(ev render.Event) chatModel {
	if len(m.entries) == 0 || m.entries[len(m.entries)-1].role != roleAssistant {
		return m
	}
	e := &m.entries[len(m.entries)-1]

	switch ev.Kind {
	case render.ThinkingStartedEvent:
		e.panel = &render.Panel{}
	case render.ThinkingUpdatedEvent:
		if e.panel == nil {
			e.panel = &render.Panel{}
		}
		e.panel.Text = ev.Text
	case render.ThinkingFinishedEvent:
		if e.panel != nil {
			e.panel.Finished = true
			e.panel.Collapsed = true
		}
	case render.AnswerUpdatedEvent:
		e.answer = ev.Text
	}
	return m
}

func (m chatModel) finishCycle(err error) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	m.title = m.thread.Title()

	switch {
	case errors.Is(err, context.Canceled):
		m.warn = "reply cancelled"
	default:
		switch classify(err) {
		case severityWarn:
			m.warn = err.Error()
		case severityFail:
			m.err = err
		case severityFatal:
			m.fatal = err
			return m, tea.Quit
		}
	}

	m.refresh()
	return m, m.input.Focus()
}

// toggleLatestPanel flips the most recent thinking panel.
func (m chatModel) toggleLatestPanel() bool {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if p := m.entries[i].panel; p != nil {
			p.Collapsed = !p.Collapsed
			return true
		}
	}
	return false
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m chatModel) renderTranscript() string {
	width := max(m.viewport.Width, 20)
	blocks := make([]string, 0, len(m.entries))

	for i, e := range m.entries {
		switch e.role {
		case roleUser:
			blocks = append(blocks, cliui.UserPrompt.Render("you> ")+e.text)
		case roleNotice:
			blocks = append(blocks, tuiMutedStyle.Render("  ● "+e.text))
		case roleAssistant:
			var parts []string
			if e.panel != nil {
				parts = append(parts, e.panel.View(width))
			}
			if e.answer != "" {
				parts = append(parts, strings.Trim(m.md.RenderWidth(e.answer, width), "\n"))
			}
			if len(parts) == 0 && m.running && i == len(m.entries)-1 {
				parts = append(parts, tuiMutedStyle.Render("…"))
			}
			blocks = append(blocks, strings.Join(parts, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m chatModel) header() string {
	return tuiTitleStyle.Render(utils.FormatTitle(m.title, utils.TopicTitleLen)) +
		" " + tuiMutedStyle.Render("· "+m.model)
}

func (m chatModel) statusLine() string {
	switch {
	case m.err != nil:
		return tuiErrorStyle.Render("Error: " + m.err.Error())
	case m.warn != "":
		return tuiWarnStyle.Render(m.warn)
	case m.running:
		return tuiMutedStyle.Render("Generating... esc to stop")
	default:
		return tuiMutedStyle.Render(m.help.View(m.keys))
	}
}

// startCycle runs one send on its own goroutine and reports the outcome
// after the event channel is closed.
func startCycle(ctx context.Context, t thread, message string, eventCh chan<- render.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := t.Send(ctx, message, render.NewEvents(ctx, eventCh))
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event. Once the channel is closed it
// returns the cycle outcome.
func listenForEvent(ch <-chan render.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return cycleDoneMsg{err: <-doneCh}
		}
		return cycleEventMsg{event: ev}
	}
}
