// Package tray implements the system tray icon and menu for the host.
package tray

import (
	"fmt"
	"log/slog"

	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/platform"
)

// DefaultTooltip is shown when hovering the tray icon.
const DefaultTooltip = "MyDecisions - AI Decision Intelligence"

// SettingsRoute is the dashboard route opened by the Settings entry.
const SettingsRoute = "/settings"

// Windows provides the dashboard for the tray actions.
type Windows interface {
	EnsureDashboard() (platform.Window, error)
}

// Overlay toggles the overlay window.
type Overlay interface {
	Toggle() (bool, error)
}

// Item is one entry of the tray menu.
type Item struct {
	Title     string
	Tooltip   string
	Separator bool
	Action    func()
}

// Controller implements the tray actions. Its methods must run on the host
// event loop.
type Controller struct {
	windows Windows
	overlay Overlay
	emitter events.Emitter
	quit    func()
	logger  *slog.Logger
}

// NewController creates a controller. quit is called by the Quit entry and is
// expected to start the coordinated shutdown.
func NewController(windows Windows, overlay Overlay, emitter events.Emitter, quit func(), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		windows: windows,
		overlay: overlay,
		emitter: emitter,
		quit:    quit,
		logger:  logger,
	}
}

// ShowDashboard creates the dashboard if needed, then shows and focuses it.
func (c *Controller) ShowDashboard() error {
	w, err := c.windows.EnsureDashboard()
	if err != nil {
		return err
	}
	if w.Minimized() {
		if err := w.Restore(); err != nil {
			return fmt.Errorf("failed to restore dashboard: %w", err)
		}
	}
	if err := w.Show(); err != nil {
		return fmt.Errorf("failed to show dashboard: %w", err)
	}
	return w.Focus()
}

// ToggleOverlay toggles the overlay.
func (c *Controller) ToggleOverlay() error {
	_, err := c.overlay.Toggle()
	return err
}

// OpenSettings points the dashboard at the settings view and shows it.
func (c *Controller) OpenSettings() error {
	w, err := c.windows.EnsureDashboard()
	if err != nil {
		return err
	}
	c.emitter.Emit(events.Navigate{Route: SettingsRoute})
	return w.Show()
}

// Quit requests application exit.
func (c *Controller) Quit() {
	c.logger.Info("quit requested from tray")
	if c.quit != nil {
		c.quit()
	}
}

// Click handles a left click on the tray icon.
func (c *Controller) Click() {
	c.run("toggle overlay", c.ToggleOverlay)
}

// Items returns the tray menu, top to bottom.
func (c *Controller) Items() []Item {
	return []Item{
		{Title: "Show Dashboard", Tooltip: "Open the MyDecisions dashboard", Action: func() { c.run("show dashboard", c.ShowDashboard) }},
		{Title: "Toggle Overlay", Tooltip: "Collapse or expand the overlay", Action: c.Click},
		{Separator: true},
		{Title: "Settings", Tooltip: "Open dashboard settings", Action: func() { c.run("open settings", c.OpenSettings) }},
		{Separator: true},
		{Title: "Quit", Tooltip: "Quit MyDecisions", Action: c.Quit},
	}
}

func (c *Controller) run(name string, fn func() error) {
	if err := fn(); err != nil {
		c.logger.Error("tray action failed", "action", name, "error", err)
	}
}
