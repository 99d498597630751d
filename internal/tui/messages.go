package tui

import (
	"time"

	"github.com/mydecisions/deskhost/internal/daemon/events"
)

// EventMsg carries an event received from the host.
type EventMsg struct {
	Event events.Event
	At    time.Time
}

// StreamEndedMsg signals the event stream closed, usually because the host
// quit.
type StreamEndedMsg struct {
	Err error
}

// CommandDoneMsg reports the outcome of a command sent to the host.
type CommandDoneMsg struct {
	Command string
	Err     error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}
