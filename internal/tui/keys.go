package tui

import "github.com/charmbracelet/bubbles/key"

// Keys are the monitor's bindings.
type Keys struct {
	Quit        key.Binding
	Help        key.Binding
	Toggle      key.Binding
	Dashboard   key.Binding
	TopLeft     key.Binding
	TopRight    key.Binding
	BottomLeft  key.Binding
	BottomRight key.Binding
	Clear       key.Binding
}

var keys = Keys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("t", " "),
		key.WithHelp("t", "toggle overlay"),
	),
	Dashboard: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "show dashboard"),
	),
	TopLeft: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1-4", "move overlay"),
	),
	TopRight: key.NewBinding(
		key.WithKeys("2"),
	),
	BottomLeft: key.NewBinding(
		key.WithKeys("3"),
	),
	BottomRight: key.NewBinding(
		key.WithKeys("4"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear log"),
	),
}

// cornerKeys maps the position bindings to corner wire names.
var cornerKeys = []struct {
	binding key.Binding
	corner  string
}{
	{keys.TopLeft, "top-left"},
	{keys.TopRight, "top-right"},
	{keys.BottomLeft, "bottom-left"},
	{keys.BottomRight, "bottom-right"},
}
