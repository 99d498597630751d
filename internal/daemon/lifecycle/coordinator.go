// Package lifecycle sequences host startup and the two-phase shutdown.
package lifecycle

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/mydecisions/deskhost/internal/platform"
)

// State is the process lifecycle state.
type State int32

const (
	Starting State = iota
	Running
	Quitting
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Quitting:
		return "quitting"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Windows is the part of the window registry the coordinator drives.
type Windows interface {
	EnsureOverlay() (platform.Window, error)
	EnsureDashboard() (platform.Window, error)
	Dashboard() platform.Window
	Live() int
	CloseAll() error
	OnAllClosed(fn func())
}

// Options configures a Coordinator.
type Options struct {
	Windows Windows
	// ShowDashboard shows the dashboard once its content is ready.
	ShowDashboard bool
	// QuitOnAllClosed quits when the last window closes. Defaults to true
	// everywhere except macOS, where apps stay alive in the dock.
	QuitOnAllClosed *bool
	Logger          *slog.Logger
}

// Coordinator owns the Starting → Running → Quitting → Terminated machine.
// All methods except State and IsQuitting must run on the host event loop.
type Coordinator struct {
	windows         Windows
	showDashboard   bool
	quitOnAllClosed bool
	logger          *slog.Logger

	state       atomic.Int32
	isQuitting  atomic.Bool
	onTerminate []func()
}

// New creates a coordinator in the Starting state.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quitOnAllClosed := runtime.GOOS != "darwin"
	if opts.QuitOnAllClosed != nil {
		quitOnAllClosed = *opts.QuitOnAllClosed
	}

	c := &Coordinator{
		windows:         opts.Windows,
		showDashboard:   opts.ShowDashboard,
		quitOnAllClosed: quitOnAllClosed,
		logger:          logger,
	}
	c.windows.OnAllClosed(c.allWindowsClosed)
	return c
}

// State returns the current lifecycle state. Safe from any goroutine.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// IsQuitting reports whether shutdown has begun. Safe from any goroutine.
func (c *Coordinator) IsQuitting() bool {
	return c.isQuitting.Load()
}

// OnTerminate registers fn to run once all windows are closed during quit.
// Hooks run in registration order.
func (c *Coordinator) OnTerminate(fn func()) {
	c.onTerminate = append(c.onTerminate, fn)
}

// Start creates the dashboard (hidden until ready) and the overlay, then
// enters Running. Window creation errors are fatal and leave the state at
// Starting.
func (c *Coordinator) Start() error {
	if c.State() != Starting {
		return fmt.Errorf("cannot start from state %s", c.State())
	}
	if err := c.createWindows(); err != nil {
		return err
	}
	c.state.Store(int32(Running))
	c.logger.Info("host running")
	return nil
}

func (c *Coordinator) createWindows() error {
	dashboard, err := c.windows.EnsureDashboard()
	if err != nil {
		return err
	}
	if c.showDashboard {
		dashboard.OnReady(func() {
			if err := dashboard.Show(); err != nil {
				c.logger.Warn("failed to show dashboard", "error", err)
			}
		})
	}

	if _, err := c.windows.EnsureOverlay(); err != nil {
		return err
	}
	return nil
}

// Activate handles the desktop asking the app to come forward. With no
// windows left, both are recreated.
func (c *Coordinator) Activate() error {
	if c.State() != Running || c.windows.Live() > 0 {
		return nil
	}
	c.logger.Info("activated with no windows, recreating")
	return c.createWindows()
}

// SecondInstance surfaces the existing dashboard after another launch was
// forwarded here. A launch while no window is left is an activation and
// recreates both; otherwise no window is created.
func (c *Coordinator) SecondInstance() {
	if c.State() != Running {
		return
	}
	if c.windows.Live() == 0 {
		if err := c.Activate(); err != nil {
			c.logger.Error("failed to recreate windows", "error", err)
			return
		}
	}
	w := c.windows.Dashboard()
	if w == nil {
		c.logger.Debug("second instance ignored, no dashboard")
		return
	}
	if w.Minimized() {
		if err := w.Restore(); err != nil {
			c.logger.Warn("failed to restore dashboard", "error", err)
		}
	}
	if err := w.Focus(); err != nil {
		c.logger.Warn("failed to focus dashboard", "error", err)
	}
}

// RequestQuit runs the shutdown: mark quitting, close every window so their
// closed observers run, enter Terminated, then run the terminate hooks. Later
// calls are ignored.
func (c *Coordinator) RequestQuit() {
	if !c.state.CompareAndSwap(int32(Running), int32(Quitting)) &&
		!c.state.CompareAndSwap(int32(Starting), int32(Quitting)) {
		return
	}
	c.isQuitting.Store(true)
	c.logger.Info("quitting")

	if err := c.windows.CloseAll(); err != nil {
		c.logger.Warn("failed to close all windows", "error", err)
	}

	c.state.Store(int32(Terminated))
	for _, fn := range c.onTerminate {
		fn()
	}
	c.logger.Info("host terminated")
}

func (c *Coordinator) allWindowsClosed() {
	if c.IsQuitting() || c.State() != Running {
		return
	}
	if !c.quitOnAllClosed {
		c.logger.Debug("all windows closed, staying alive")
		return
	}
	c.logger.Info("all windows closed")
	c.RequestQuit()
}
