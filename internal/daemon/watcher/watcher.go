// Package watcher reports changes to files the host reads at runtime.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a debounced change to a watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher watches named files in one directory. The directory is watched
// rather than the files so that replace-by-rename saves are seen.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dir        string
	names      map[string]bool
	delay      time.Duration
	logger     *slog.Logger
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for the given file names inside dir.
func New(dir string, names []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		dir:        dir,
		names:      make(map[string]bool, len(names)),
		delay:      DefaultDebounce,
		logger:     logger,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
	}
	for _, n := range names {
		w.names[n] = true
	}
	return w, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	w.logger.Debug("watching files", "dir", w.dir)
	return nil
}

// Stop stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic writes (write tmp, rename to target) show up as Create or Rename
	// on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if !w.names[filepath.Base(event.Name)] {
		return
	}

	w.debounceEvent(event.Name, func() {
		select {
		case w.eventsChan <- Event{Path: event.Name, Op: event.Op}:
		case <-w.done:
		}
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
