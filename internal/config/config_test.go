package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/models"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadSettingsDefaults(t *testing.T) {
	withHome(t)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, models.NewSettings(), s)
	assert.True(t, s.Dashboard.ShowOnStartup)
	assert.Equal(t, "127.0.0.1", s.Server.Host)
}

func TestLoadSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	home := withHome(t)
	path := filepath.Join(home, GlobalDirName, SettingsFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("dev_mode: true\nserver:\n  port: 7420\n"), 0o644))

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.True(t, s.DevMode)
	assert.Equal(t, 7420, s.Server.Port)
	assert.Equal(t, "127.0.0.1", s.Server.Host)
	assert.True(t, s.Dashboard.ShowOnStartup)
	assert.Equal(t, "blur", s.Overlay.Backdrop)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"public host", "server:\n  host: 0.0.0.0\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad backend", "instance:\n  backend: registry\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"not yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), SettingsFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadSettingsFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	withHome(t)

	s := models.NewSettings()
	s.Telemetry.Enabled = true
	s.Tray.IconPath = "/usr/share/icons/mydecisions.png"
	require.NoError(t, SaveSettings(s))

	loaded, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestInstanceInfoLifecycle(t *testing.T) {
	withHome(t)

	info, err := LoadInstanceInfo()
	require.NoError(t, err)
	assert.Nil(t, info)

	pid := os.Getpid()
	require.NoError(t, SaveInstanceInfo(models.NewInstanceInfo("127.0.0.1", 7420, pid, "abc")))

	running, loaded, err := IsHostRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, "127.0.0.1:7420", loaded.Addr())

	// Another process's file is not ours to remove.
	require.NoError(t, RemoveInstanceInfo(pid+1))
	info, err = LoadInstanceInfo()
	require.NoError(t, err)
	require.NotNil(t, info)

	require.NoError(t, RemoveInstanceInfo(pid))
	info, err = LoadInstanceInfo()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestTelemetryStateIsStable(t *testing.T) {
	withHome(t)

	first, err := LoadOrCreateTelemetryState()
	require.NoError(t, err)
	require.NotEmpty(t, first.InstallID)

	second, err := LoadOrCreateTelemetryState()
	require.NoError(t, err)
	assert.Equal(t, first.InstallID, second.InstallID)
}

func TestOpenLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "host.log")
	var stderr bytes.Buffer

	level, err := NewLevel("warn")
	require.NoError(t, err)
	logger, closer, err := OpenLogger(level, path, &stderr)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "corner", "top-left")
	level.Set(slog.LevelDebug)
	logger.Debug("after reload")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "corner=top-left")
	assert.Contains(t, string(data), "after reload")
	assert.Equal(t, string(data), stderr.String())
}

func TestOpenLoggerStderrOnly(t *testing.T) {
	var stderr bytes.Buffer
	logger, closer, err := OpenLogger(slog.LevelDebug, "-", &stderr)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hello")
	assert.True(t, strings.Contains(stderr.String(), "msg=hello"))
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)

	_, err = NewLevel("verbose")
	assert.Error(t, err)
}
