package telemetry

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/models"
)

type fakeSink struct {
	messages []posthog.Message
	err      error
	closed   bool
}

func (f *fakeSink) Enqueue(m posthog.Message) error {
	f.messages = append(f.messages, m)
	return f.err
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func TestDisabledUnlessConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.TelemetryConfig
	}{
		{"off", models.TelemetryConfig{APIKey: "phc_x"}},
		{"no key", models.TelemetryConfig{Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, "install", nil)
			require.NoError(t, err)
			assert.False(t, c.Enabled())
			assert.NotPanics(t, func() { c.Capture(EventHostStarted, nil) })
			assert.NoError(t, c.Close())
		})
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	assert.NotPanics(t, func() { c.Capture(EventHostStopped, nil) })
	assert.NoError(t, c.Close())
}

func TestCapture(t *testing.T) {
	sink := &fakeSink{}
	c := &Client{sink: sink, distinctID: "install-1"}

	c.Capture(EventOverlayToggled, map[string]any{"expanded": false, "source": "tray"})

	require.Len(t, sink.messages, 1)
	capture, ok := sink.messages[0].(posthog.Capture)
	require.True(t, ok)
	assert.Equal(t, "install-1", capture.DistinctId)
	assert.Equal(t, EventOverlayToggled, capture.Event)
	assert.Equal(t, false, capture.Properties["expanded"])
	assert.Equal(t, "tray", capture.Properties["source"])
	assert.Contains(t, capture.Properties, "os")

	require.NoError(t, c.Close())
	assert.True(t, sink.closed)
}

func TestCaptureErrorIsSwallowed(t *testing.T) {
	sink := &fakeSink{err: errors.New("queue full")}
	c := &Client{sink: sink, logger: slog.Default()}

	assert.NotPanics(t, func() { c.Capture(EventHostStarted, nil) })
	assert.Len(t, sink.messages, 1)
}
