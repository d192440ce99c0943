package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yc/internal/config"
	"yc/internal/domain"
	"yc/internal/resultview"
)

// SearchPort is the TUI-facing subset of the dispatcher.
type SearchPort interface {
	Search(text string) error
	Poll() bool
	Busy() bool
	View() *resultview.View
}

// Action is what the user asked to do with the chosen command.
type Action int

const (
	ActionNone Action = iota
	ActionExecute
	ActionCopy
)

const DefaultPollInterval = 10 * time.Millisecond

type pollMsg struct{}

type Options struct {
	UI           config.UIConfig
	PollInterval time.Duration
	// Debug shows the score of the selected command under its preview.
	Debug bool
}

type styles struct {
	highlight    lipgloss.Style
	marker       lipgloss.Style
	previewTitle lipgloss.Style
	previewBox   lipgloss.Style
	status       lipgloss.Style
}

// Model is the Bubble Tea model for the launcher.
type Model struct {
	port         SearchPort
	input        textinput.Model
	keys         keyMap
	styles       styles
	ui           config.UIConfig
	pollInterval time.Duration
	debug        bool

	query   string
	polling bool
	status  string
	width   int

	chosen domain.Command
	action Action
}

// New creates a new TUI model instance.
func New(port SearchPort, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.CharLimit = 0
	ti.Focus()

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	box := lipgloss.NewStyle()
	if opts.UI.PreviewFrame {
		box = box.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	}
	m := Model{
		port:  port,
		input: ti,
		keys:  defaultKeyMap(),
		styles: styles{
			highlight:    lipgloss.NewStyle().Foreground(lipgloss.Color(opts.UI.HighlightColor)).Bold(true),
			marker:       lipgloss.NewStyle().Foreground(lipgloss.Color(opts.UI.MarkerColor)),
			previewTitle: lipgloss.NewStyle().Foreground(lipgloss.Color(opts.UI.PreviewTitleColor)).Bold(true),
			previewBox:   box,
			status:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		},
		ui:           opts.UI,
		pollInterval: interval,
		debug:        opts.Debug,
	}
	m.refreshPrompt()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Outcome is the command the user picked and what to do with it. It is only
// meaningful after the program has exited.
func (m Model) Outcome() (domain.Command, Action) { return m.chosen, m.action }

// Update handles key, window and poll events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case pollMsg:
		m.port.Poll()
		m.refreshPrompt()
		if m.port.Busy() {
			return m, m.tick()
		}
		m.polling = false
		return m, nil
	case tea.KeyMsg:
		view := m.port.View()
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Run):
			return m.finish(ActionExecute)
		case key.Matches(msg, m.keys.Copy):
			return m.finish(ActionCopy)
		case key.Matches(msg, m.keys.Next):
			view.SelectNext(1)
		case key.Matches(msg, m.keys.Prev):
			view.SelectPrevious(1)
		case key.Matches(msg, m.keys.JumpNext):
			view.SelectNext(jump)
		case key.Matches(msg, m.keys.JumpPrev):
			view.SelectPrevious(jump)
		case key.Matches(msg, m.keys.PageDown):
			view.SelectNext(m.listHeight())
		case key.Matches(msg, m.keys.PageUp):
			view.SelectPrevious(m.listHeight())
		default:
			return m.updateInput(msg)
		}
		m.refreshPrompt()
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == m.query {
		return m, cmd
	}
	m.query = m.input.Value()
	poll := m.search()
	return m, tea.Batch(cmd, poll)
}

// search hands the query to the dispatcher and starts the poll loop if it is
// not already running.
func (m *Model) search() tea.Cmd {
	if err := m.port.Search(m.query); err != nil {
		m.status = "Error: " + err.Error()
	} else {
		m.status = ""
	}
	m.refreshPrompt()
	if m.polling || !m.port.Busy() {
		return nil
	}
	m.polling = true
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) finish(a Action) (tea.Model, tea.Cmd) {
	sel, ok := m.port.View().Selection()
	if !ok {
		return m, nil
	}
	m.chosen, m.action = sel, a
	return m, tea.Quit
}

func (m *Model) refreshPrompt() {
	v := m.port.View()
	idx := 0
	if v.Len() > 0 {
		idx = v.Selected() + 1
	}
	m.input.Prompt = fmt.Sprintf("%d/%d %s", idx, v.Len(), m.ui.Prompt)
}

func (m Model) wide() bool {
	return m.width > m.ui.MaxNarrowWidth
}

func (m Model) listHeight() int {
	if m.wide() {
		return m.ui.WideHeight
	}
	return m.ui.NarrowHeight
}

// View renders the query line, the result list and the preview of the
// selection. Narrow terminals stack the preview under the list.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = m.ui.MaxNarrowWidth
	}
	var body string
	if m.wide() {
		listWidth := width / 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderList(listWidth, m.ui.WideHeight),
			" ",
			m.renderPreview(width-listWidth-1, m.ui.WideHeight),
		)
	} else {
		body = m.renderList(width, m.ui.NarrowHeight) + "\n" + m.renderPreview(width, m.ui.PreviewNarrowHeight)
	}
	out := m.input.View() + "\n" + body
	if m.status != "" {
		out += "\n" + m.styles.status.Render(m.status)
	}
	return out
}

func (m Model) renderList(width, height int) string {
	v := m.port.View()
	start, end := v.Window(height)
	cmds := v.Commands()
	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		line := m.styles.marker.Render(m.marker(cmds[i])) + firstLine(cmds[i].String())
		style := lipgloss.NewStyle()
		if i == v.Selected() {
			style = m.styles.highlight
		}
		lines = append(lines, style.MaxWidth(width).Render(line))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) marker(c domain.Command) string {
	if mk, ok := c.(domain.Marker); ok {
		return mk.Marker()
	}
	return m.ui.DefaultMarker
}

func (m Model) renderPreview(width, height int) string {
	sel, ok := m.port.View().Selection()
	if !ok {
		return ""
	}
	fw, fh := m.styles.previewBox.GetFrameSize()
	inner := max(10, width-fw)
	height = max(1, height-fh)

	var lines []string
	for _, f := range sel.Preview() {
		lines = append(lines, m.styles.previewTitle.Render(f.Key))
		if f.Value == "" {
			continue
		}
		wrapped := lipgloss.NewStyle().Width(inner - 2).Render(f.Value)
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, "  "+l)
		}
	}
	limit := height
	if m.debug {
		limit--
	}
	if len(lines) > limit {
		lines = lines[:max(0, limit)]
	}
	if m.debug {
		lines = append(lines, fmt.Sprintf("score: %d", sel.Score()))
	}
	return m.styles.previewBox.Render(strings.Join(lines, "\n"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
