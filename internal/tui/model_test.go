package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/daemon/events"
)

type fakeClient struct {
	toggles   int
	shown     int
	corners   []string
	toggleErr error
}

func (f *fakeClient) ToggleOverlay(context.Context) (bool, error) {
	f.toggles++
	return f.toggles%2 == 0, f.toggleErr
}

func (f *fakeClient) ShowDashboard(context.Context) error {
	f.shown++
	return nil
}

func (f *fakeClient) SetOverlayPosition(_ context.Context, corner string) error {
	f.corners = append(f.corners, corner)
	return nil
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and runs any command it returns, feeding the result back.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if out := cmd(); out != nil {
		if _, ok := out.(tea.QuitMsg); ok {
			return m
		}
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func TestKeysDriveCommands(t *testing.T) {
	client := &fakeClient{}
	m := NewModel(client, "127.0.0.1:7420")

	m = send(t, m, press("t"))
	m = send(t, m, press("d"))
	m = send(t, m, press("1"))
	m = send(t, m, press("4"))

	assert.Equal(t, 1, client.toggles)
	assert.Equal(t, 1, client.shown)
	assert.Equal(t, []string{"top-left", "bottom-right"}, client.corners)
	assert.NoError(t, m.err)
}

func TestCommandErrorIsShown(t *testing.T) {
	client := &fakeClient{toggleErr: errors.New("host is shutting down")}
	m := send(t, NewModel(client, ""), press("t"))

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "toggle overlay")
	assert.Contains(t, m.View(), "host is shutting down")

	next, _ := m.Update(ClearErrorMsg{})
	assert.NoError(t, next.(Model).err)
}

func TestEventsUpdateState(t *testing.T) {
	m := NewModel(&fakeClient{}, "")
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	m = send(t, m, EventMsg{Event: events.OverlayToggled{Expanded: false}, At: at})
	m = send(t, m, EventMsg{Event: events.Navigate{Route: "/settings"}, At: at})

	require.NotNil(t, m.expanded)
	assert.False(t, *m.expanded)
	assert.Equal(t, "/settings", m.route)
	require.Len(t, m.entries, 2)

	view := m.View()
	assert.Contains(t, view, "Collapsed")
	assert.Contains(t, view, "overlay-toggle")
	assert.Contains(t, view, "/settings")
	assert.Contains(t, view, "15:04:05")

	m = send(t, m, press("c"))
	assert.Empty(t, m.entries)
}

func TestEventLogIsBounded(t *testing.T) {
	m := NewModel(&fakeClient{}, "")
	for i := 0; i < maxEntries+10; i++ {
		m = send(t, m, EventMsg{Event: events.OverlayToggled{Expanded: i%2 == 0}, At: time.Now()})
	}
	assert.Len(t, m.entries, maxEntries)
}

func TestStreamEndDisconnects(t *testing.T) {
	client := &fakeClient{}
	m := send(t, NewModel(client, ""), StreamEndedMsg{Err: io.EOF})

	assert.False(t, m.connected)
	assert.NoError(t, m.err)
	assert.Contains(t, m.View(), "Disconnected")

	// Commands are not sent to a host that went away.
	m = send(t, m, press("t"))
	assert.Zero(t, client.toggles)
}

func TestHelpToggles(t *testing.T) {
	m := send(t, NewModel(&fakeClient{}, ""), press("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Toggle the overlay")

	m = send(t, m, press("x"))
	assert.False(t, m.showHelp)
}

func TestQuit(t *testing.T) {
	_, cmd := NewModel(&fakeClient{}, "").Update(press("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
