package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpKey struct {
	key  string
	desc string
}

var helpKeys = []helpKey{
	{"t / Space", "Toggle the overlay"},
	{"d", "Show the dashboard"},
	{"1", "Move overlay top-left"},
	{"2", "Move overlay top-right"},
	{"3", "Move overlay bottom-left"},
	{"4", "Move overlay bottom-right"},
	{"c", "Clear the event log"},
	{"?", "Toggle help"},
	{"q / Ctrl+c", "Quit"},
}

func renderHelp(width, height int) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Width(12)
	descStyle := lipgloss.NewStyle().Foreground(colorDim)

	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, k := range helpKeys {
		b.WriteString(keyStyle.Render(k.key))
		b.WriteString(descStyle.Render(k.desc))
		b.WriteString("\n")
	}

	box := overlayStyle.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
