package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/models"
)

func TestValidateCornerArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"top-left", []string{"top-left"}, false},
		{"bottom-right", []string{"bottom-right"}, false},
		{"unknown", []string{"middle"}, true},
		{"missing", nil, true},
		{"extra", []string{"top-left", "top-right"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCornerArg(overlayPositionCmd, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCornerNames(t *testing.T) {
	assert.Equal(t, []string{"top-left", "top-right", "bottom-left", "bottom-right"}, cornerNames())
}

func TestConnectHostWithoutHost(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, err := connectHost()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host not running")
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, &HostStatusInfo{
		Addr:      "127.0.0.1:7420",
		PID:       4242,
		StartedAt: time.Now().Add(-2 * time.Hour),
		DevMode:   true,
	})

	out := buf.String()
	assert.Contains(t, out, "127.0.0.1:7420")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "2 hours ago")
}

func TestWriteSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSettings(&buf, models.NewSettings()))

	out := buf.String()
	assert.Contains(t, out, "show_on_startup: true")
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "dev_overlay_url:")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, errors.New("host not running"))

	out := buf.String()
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "host not running")
}

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	WriteVersion(&buf, "mydecisionsd")

	out := buf.String()
	assert.Contains(t, out, "mydecisionsd")
	assert.Contains(t, out, "OS/Arch")
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"overlay", "toggle"},
		{"overlay", "position"},
		{"dashboard"},
		{"status"},
		{"start"},
		{"stop"},
		{"watch"},
		{"settings", "init"},
		{"version"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
