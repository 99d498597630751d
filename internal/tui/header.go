package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderHeader(addr string, expanded *bool, route string, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("MyDecisions")
	left := fmt.Sprintf(" %s %s  %s", dot, name, timeStyle.Render(addr))

	right := renderOverlayBadge(expanded)
	if route != "" {
		right = routeStyle.Render(route) + "  " + right
	}
	right += " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderOverlayBadge(expanded *bool) string {
	switch {
	case expanded == nil:
		return timeStyle.Render("● Overlay ?")
	case *expanded:
		return expandedStyle.Render("● Expanded")
	default:
		return collapseStyle.Render("● Collapsed")
	}
}
