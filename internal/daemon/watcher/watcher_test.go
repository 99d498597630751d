package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, dir string, names ...string) *Watcher {
	t.Helper()
	w, err := New(dir, names, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w
}

func next(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestReportsWatchedFile(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "settings.yaml")

	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	assert.Equal(t, path, next(t, w).Path)
}

func TestReportsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "settings.yaml")

	tmp := filepath.Join(dir, ".settings.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("version: 1\n"), 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "settings.yaml")))

	assert.Equal(t, filepath.Join(dir, "settings.yaml"), next(t, w).Path)
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "settings.yaml")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "instance.yaml"), []byte("pid: 1\n"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(3 * DefaultDebounce):
	}
}

func TestDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "settings.yaml")

	path := filepath.Join(dir, "settings.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	}

	next(t, w)
	select {
	case <-w.Events():
		t.Fatal("burst produced more than one event")
	case <-time.After(3 * DefaultDebounce):
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	w.Stop()
	assert.NotPanics(t, w.Stop)
}
