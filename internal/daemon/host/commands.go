package host

import (
	"context"

	"github.com/mydecisions/deskhost/internal/daemon/server"
	"github.com/mydecisions/deskhost/internal/daemon/tray"
	"github.com/mydecisions/deskhost/internal/geometry"
	"github.com/mydecisions/deskhost/internal/telemetry"
)

var _ server.Commands = (*Host)(nil)

// ToggleOverlay toggles the overlay on the loop.
func (h *Host) ToggleOverlay(ctx context.Context) (bool, error) {
	var expanded bool
	err := h.do(ctx, func() error {
		var err error
		expanded, err = h.trackedOverlay("command").Toggle()
		return err
	})
	return expanded, err
}

// ShowDashboard creates, restores, shows and focuses the dashboard on the loop.
func (h *Host) ShowDashboard(ctx context.Context) error {
	return h.do(ctx, h.controller.ShowDashboard)
}

// SetOverlayPosition moves the overlay to corner on the loop.
func (h *Host) SetOverlayPosition(ctx context.Context, corner geometry.Corner) error {
	return h.do(ctx, func() error {
		return h.overlay.SetPosition(corner)
	})
}

// do runs fn on the loop unless the host is quitting.
func (h *Host) do(ctx context.Context, fn func() error) error {
	if h.coordinator.IsQuitting() {
		return server.ErrShuttingDown
	}
	return h.loop.Do(ctx, func() error {
		if h.coordinator.IsQuitting() {
			return server.ErrShuttingDown
		}
		return fn()
	})
}

// trackedOverlay records toggles from source in telemetry.
func (h *Host) trackedOverlay(source string) tray.Overlay {
	return &trackedOverlay{host: h, source: source}
}

type trackedOverlay struct {
	host   *Host
	source string
}

func (o *trackedOverlay) Toggle() (bool, error) {
	expanded, err := o.host.overlay.Toggle()
	if err == nil {
		o.host.telemetry.Capture(telemetry.EventOverlayToggled, map[string]any{
			"expanded": expanded,
			"source":   o.source,
		})
	}
	return expanded, err
}
