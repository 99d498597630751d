package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(m *Model, width int) string {
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + keyHints()

	right := ""
	if m.connected {
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("Connected") + " "
	} else {
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Disconnected") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func keyHints() string {
	var parts []string
	for _, b := range []struct{ key, desc string }{
		{keys.Toggle.Help().Key, keys.Toggle.Help().Desc},
		{keys.Dashboard.Help().Key, keys.Dashboard.Help().Desc},
		{keys.TopLeft.Help().Key, keys.TopLeft.Help().Desc},
		{keys.Help.Help().Key, keys.Help.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	} {
		parts = append(parts, lipgloss.NewStyle().Bold(true).Render(b.key)+" "+b.desc)
	}
	return strings.Join(parts, "  ")
}

func renderErrorBar(msg string, width int) string {
	style := statusBarStyle.
		Foreground(colorRed).
		Bold(true)
	return style.Width(width).Render(" Error: " + msg)
}
