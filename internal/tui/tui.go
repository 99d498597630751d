// Package tui implements the live host monitor behind `mydecisions watch`.
package tui

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mydecisions/deskhost/internal/daemon/events"
)

// Client is the part of the command channel client the monitor drives.
type Client interface {
	ToggleOverlay(ctx context.Context) (bool, error)
	ShowDashboard(ctx context.Context) error
	SetOverlayPosition(ctx context.Context, corner string) error
}

// EventStream yields host events until it fails.
type EventStream interface {
	Recv() (events.Event, error)
}

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run shows the monitor for the host at addr until the user quits.
func Run(client Client, stream EventStream, addr string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ref := &programRef{}
	p := tea.NewProgram(NewModel(client, addr), tea.WithAltScreen())
	ref.Set(p)
	defer ref.Clear()

	go pump(stream, ref)

	_, err := p.Run()
	return err
}

// pump forwards stream events to the program.
func pump(stream EventStream, ref *programRef) {
	for {
		ev, err := stream.Recv()
		if err != nil {
			ref.Send(StreamEndedMsg{Err: err})
			return
		}
		ref.Send(EventMsg{Event: ev, At: time.Now()})
	}
}
