// Package overlay implements the collapsed/expanded state machine of the
// overlay window.
package overlay

import (
	"fmt"
	"log/slog"

	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/geometry"
	"github.com/mydecisions/deskhost/internal/platform"
)

// Windows is the part of the window registry the machine needs.
type Windows interface {
	Overlay() platform.Window
	EnsureOverlay() (platform.Window, error)
	Screen() platform.Screen
	OverlayCorner() geometry.Corner
	SetOverlayCorner(geometry.Corner)
}

// Machine tracks the overlay mode. The corner it is anchored to lives in the
// registry so that every path creating the overlay places it the same way. It
// is driven from the host event loop only.
type Machine struct {
	windows Windows
	emitter events.Emitter
	logger  *slog.Logger

	window platform.Window
	mode   geometry.Mode
}

// New creates a machine in expanded mode.
func New(windows Windows, emitter events.Emitter, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		windows: windows,
		emitter: emitter,
		logger:  logger,
		mode:    geometry.Expanded,
	}
}

// Mode returns the current overlay mode.
func (m *Machine) Mode() geometry.Mode {
	m.current()
	return m.mode
}

// Corner returns the corner the overlay is anchored to.
func (m *Machine) Corner() geometry.Corner {
	return m.windows.OverlayCorner()
}

// current returns the live overlay window. A window the machine has not seen
// before was just created, which always happens in expanded mode.
func (m *Machine) current() platform.Window {
	w := m.windows.Overlay()
	if w != nil && w != m.window {
		m.window = w
		m.mode = geometry.Expanded
	}
	return w
}

// Toggle switches between collapsed and expanded, resizes the overlay for the
// new mode, and emits OverlayToggled once the new bounds are applied. If there
// is no overlay window, one is created in expanded mode instead and nothing is
// emitted. It returns whether the overlay is now expanded.
func (m *Machine) Toggle() (bool, error) {
	w := m.current()
	if w == nil {
		return true, m.recreate()
	}

	region, err := m.windows.Screen().WorkArea()
	if err != nil {
		return m.mode == geometry.Expanded, fmt.Errorf("failed to read work area: %w", err)
	}

	next := m.mode.Toggle()
	bounds := geometry.Target(region, next, m.windows.OverlayCorner())
	if err := w.SetBounds(bounds); err != nil {
		return m.mode == geometry.Expanded, fmt.Errorf("failed to resize overlay: %w", err)
	}
	if err := w.SetResizable(false); err != nil {
		m.logger.Warn("failed to lock overlay size", "error", err)
	}
	m.mode = next

	expanded := next == geometry.Expanded
	m.logger.Debug("overlay toggled", "mode", next.String(), "bounds", bounds.String())
	m.emitter.Emit(events.OverlayToggled{Expanded: expanded})
	return expanded, nil
}

func (m *Machine) recreate() error {
	w, err := m.windows.EnsureOverlay()
	if err != nil {
		return err
	}
	m.window = w
	m.mode = geometry.Expanded
	return nil
}

// SetPosition moves the overlay to a corner without changing its mode or its
// current size. It does nothing when there is no overlay window.
func (m *Machine) SetPosition(corner geometry.Corner) error {
	w := m.current()
	if w == nil {
		return nil
	}

	region, err := m.windows.Screen().WorkArea()
	if err != nil {
		return fmt.Errorf("failed to read work area: %w", err)
	}

	bounds := geometry.Anchor(region, w.Bounds().Size(), corner)
	if err := w.SetBounds(bounds); err != nil {
		return fmt.Errorf("failed to move overlay: %w", err)
	}
	m.windows.SetOverlayCorner(corner)
	m.logger.Debug("overlay moved", "corner", corner.String(), "bounds", bounds.String())
	return nil
}
