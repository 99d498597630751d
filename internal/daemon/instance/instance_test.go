package instance

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileGuardSingleOwner(t *testing.T) {
	dir := t.TempDir()

	primary := NewFileGuard(dir, nil)
	var activations atomic.Int32
	primary.OnSecondInstance(func() { activations.Add(1) })

	ok, err := primary.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = primary.Release() })

	second := NewFileGuard(dir, nil)
	ok, err = second.Acquire()
	require.NoError(t, err)
	assert.False(t, ok)

	require.Eventually(t, func() bool { return activations.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	entries, err := os.ReadDir(filepath.Join(dir, activateDirName))
	require.NoError(t, err)
	assert.Empty(t, entries, "activation requests are consumed")
}

func TestFileGuardReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()

	first := NewFileGuard(dir, nil)
	ok, err := first.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	next := NewFileGuard(dir, nil)
	ok, err = next.Acquire()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, next.Release())
}

func TestFileGuardAcquireIsIdempotent(t *testing.T) {
	g := NewFileGuard(t.TempDir(), nil)

	ok, err := g.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = g.Acquire()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, g.Release())
}

func TestFileGuardDropsStaleRequests(t *testing.T) {
	dir := t.TempDir()
	activate := filepath.Join(dir, activateDirName)
	require.NoError(t, os.MkdirAll(activate, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(activate, "old.yaml"), []byte("id: old\n"), 0o600))

	g := NewFileGuard(dir, nil)
	var activations atomic.Int32
	g.OnSecondInstance(func() { activations.Add(1) })

	ok, err := g.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = g.Release() })

	entries, err := os.ReadDir(activate)
	require.NoError(t, err)
	assert.Empty(t, entries)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), activations.Load())
}

func TestNewSelectsBackend(t *testing.T) {
	g, err := New("", t.TempDir(), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileGuard{}, g)

	g, err = New(BackendDBus, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &DBusGuard{}, g)

	_, err = New("carrier-pigeon", "", nil)
	assert.Error(t, err)
}

func TestDBusGuard(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no session bus")
	}
	name := "io.mydecisions.HostTest" + time.Now().Format("150405")

	primary := NewDBusGuard(name, nil)
	var activations atomic.Int32
	primary.OnSecondInstance(func() { activations.Add(1) })

	ok, err := primary.Acquire()
	if err != nil {
		t.Skipf("session bus unavailable: %v", err)
	}
	require.True(t, ok)
	t.Cleanup(func() { _ = primary.Release() })

	second := NewDBusGuard(name, nil)
	ok, err = second.Acquire()
	require.NoError(t, err)
	assert.False(t, ok)

	require.Eventually(t, func() bool { return activations.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}
