// Package telemetry sends opt-in host lifecycle analytics.
package telemetry

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/posthog/posthog-go"

	"github.com/mydecisions/deskhost/internal/buildinfo"
	"github.com/mydecisions/deskhost/internal/models"
)

// Event names.
const (
	EventHostStarted    = "host_started"
	EventOverlayToggled = "overlay_toggled"
	EventHostStopped    = "host_stopped"
)

// sink is the part of posthog.Client used here.
type sink interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Client captures events for one installation. A nil or disabled Client
// drops everything.
type Client struct {
	sink       sink
	distinctID string
	logger     *slog.Logger
}

// New creates a client. It returns a disabled client unless telemetry is
// enabled and an API key is configured.
func New(cfg models.TelemetryConfig, installID string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Client{logger: logger}, nil
	}

	ph, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{Endpoint: cfg.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}
	return &Client{sink: ph, distinctID: installID, logger: logger}, nil
}

// Enabled reports whether events are sent.
func (c *Client) Enabled() bool {
	return c != nil && c.sink != nil
}

// Capture enqueues an event. Failures are logged and otherwise ignored.
func (c *Client) Capture(event string, props map[string]any) {
	if !c.Enabled() {
		return
	}

	p := posthog.NewProperties().
		Set("version", buildinfo.Version).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH)
	for k, v := range props {
		p.Set(k, v)
	}

	err := c.sink.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: p,
	})
	if err != nil {
		c.logger.Warn("failed to enqueue analytics event", "event", event, "error", err)
	}
}

// Close flushes pending events.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.sink.Close()
}
