package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mydecisions/deskhost/internal/daemon/events"
)

const (
	commandTimeout = 5 * time.Second
	maxEntries     = 200
)

// entry is one line of the event log.
type entry struct {
	at    time.Time
	event events.Event
}

// Model is the root Bubbletea model for the monitor.
type Model struct {
	client Client
	addr   string

	connected bool
	expanded  *bool
	route     string
	entries   []entry

	showHelp bool
	err      error
	width    int
	height   int
}

// NewModel creates the initial monitor model.
func NewModel(client Client, addr string) Model {
	return Model{
		client:    client,
		addr:      addr,
		connected: true,
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.record(msg)
		return m, nil

	case StreamEndedMsg:
		m.connected = false
		if msg.Err != nil && !errors.Is(msg.Err, io.EOF) {
			m.err = fmt.Errorf("event stream closed: %w", msg.Err)
		}
		return m, nil

	case CommandDoneMsg:
		if msg.Err != nil {
			m.err = fmt.Errorf("%s: %w", msg.Command, msg.Err)
			return m, clearErrorAfter(4 * time.Second)
		}
		return m, nil

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.showHelp:
		// Any other key closes help.
		m.showHelp = false
		return m, nil
	case key.Matches(msg, keys.Clear):
		m.entries = nil
		return m, nil
	case !m.connected:
		return m, nil
	case key.Matches(msg, keys.Toggle):
		return m, m.command("toggle overlay", func(ctx context.Context) error {
			_, err := m.client.ToggleOverlay(ctx)
			return err
		})
	case key.Matches(msg, keys.Dashboard):
		return m, m.command("show dashboard", m.client.ShowDashboard)
	}

	for _, c := range cornerKeys {
		if key.Matches(msg, c.binding) {
			corner := c.corner
			return m, m.command("move overlay", func(ctx context.Context) error {
				return m.client.SetOverlayPosition(ctx, corner)
			})
		}
	}
	return m, nil
}

func (m *Model) record(msg EventMsg) {
	switch ev := msg.Event.(type) {
	case events.OverlayToggled:
		expanded := ev.Expanded
		m.expanded = &expanded
	case events.Navigate:
		m.route = ev.Route
	}
	m.entries = append(m.entries, entry{at: msg.At, event: msg.Event})
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}

// command runs fn against the host off the update loop.
func (m Model) command(name string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return CommandDoneMsg{Command: name, Err: fn(ctx)}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ClearErrorMsg{} })
}

// View renders the monitor.
func (m Model) View() string {
	if m.showHelp {
		return renderHelp(m.width, m.height)
	}

	header := renderHeader(m.addr, m.expanded, m.route, m.width)
	status := renderStatusBar(&m, m.width)

	// Header, status bar and the panel border take four rows.
	rows := max(1, m.height-4)
	body := panelStyle.
		Width(max(1, m.width-2)).
		Height(rows).
		Render(m.renderLog(rows))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderLog(rows int) string {
	if len(m.entries) == 0 {
		return timeStyle.Render("Waiting for events...")
	}
	start := max(0, len(m.entries)-rows)
	lines := make([]string, 0, len(m.entries)-start)
	for _, e := range m.entries[start:] {
		lines = append(lines, formatEntry(e))
	}
	return strings.Join(lines, "\n")
}

func formatEntry(e entry) string {
	detail := ""
	switch ev := e.event.(type) {
	case events.OverlayToggled:
		if ev.Expanded {
			detail = expandedStyle.Render("expanded")
		} else {
			detail = collapseStyle.Render("collapsed")
		}
	case events.Navigate:
		detail = routeStyle.Render(ev.Route)
	}
	return fmt.Sprintf("%s  %s  %s",
		timeStyle.Render(e.at.Format("15:04:05")),
		channelStyle.Render(fmt.Sprintf("%-14s", e.event.Channel())),
		detail,
	)
}
