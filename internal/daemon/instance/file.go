package instance

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	lockFileName    = "host.lock"
	activateDirName = "activate"
)

// ActivationRequest is dropped by a second launch for the primary to pick up.
type ActivationRequest struct {
	ID          string    `yaml:"id"`
	PID         int       `yaml:"pid"`
	RequestedAt time.Time `yaml:"requested_at"`
	Args        []string  `yaml:"args,omitempty"`
}

// FileGuard holds an exclusive lock on a file in the runtime directory.
// Second launches write an activation request into the activate/ directory,
// which the primary watches.
type FileGuard struct {
	dir    string
	logger *slog.Logger

	handlers handlers

	mu      sync.Mutex
	lock    *os.File
	watcher *fsnotify.Watcher
	done    chan struct{}
}

var _ Guard = (*FileGuard)(nil)

// NewFileGuard creates a guard rooted at dir.
func NewFileGuard(dir string, logger *slog.Logger) *FileGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileGuard{dir: dir, logger: logger}
}

func (g *FileGuard) activateDir() string {
	return filepath.Join(g.dir, activateDirName)
}

// OnSecondInstance registers fn to run when another launch is forwarded here.
func (g *FileGuard) OnSecondInstance(fn func()) {
	g.handlers.add(fn)
}

// Acquire takes the lock, or forwards this launch to the holder.
func (g *FileGuard) Acquire() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lock != nil {
		return true, nil
	}
	if err := os.MkdirAll(g.activateDir(), 0o755); err != nil {
		return false, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	f, err := tryLock(filepath.Join(g.dir, lockFileName))
	if errors.Is(err, errLocked) {
		g.logger.Info("another instance is running, forwarding activation")
		if err := g.requestActivation(); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock instance file: %w", err)
	}

	g.lock = f
	g.clearRequests()
	if err := g.startWatching(); err != nil {
		_ = unlock(f)
		g.lock = nil
		return false, err
	}
	g.logger.Debug("instance lock acquired", "dir", g.dir)
	return true, nil
}

func (g *FileGuard) requestActivation() error {
	req := ActivationRequest{
		ID:          uuid.NewString(),
		PID:         os.Getpid(),
		RequestedAt: time.Now().UTC(),
		Args:        os.Args[1:],
	}
	data, err := yaml.Marshal(&req)
	if err != nil {
		return fmt.Errorf("failed to encode activation request: %w", err)
	}

	// Write then rename so the watcher never sees a partial file.
	final := filepath.Join(g.activateDir(), req.ID+".yaml")
	tmp := filepath.Join(g.activateDir(), "."+req.ID+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write activation request: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to publish activation request: %w", err)
	}
	return nil
}

// clearRequests drops requests left behind by a previous session.
func (g *FileGuard) clearRequests() {
	entries, err := os.ReadDir(g.activateDir())
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = os.Remove(filepath.Join(g.activateDir(), e.Name()))
	}
}

func (g *FileGuard) startWatching() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create activation watcher: %w", err)
	}
	if err := watcher.Add(g.activateDir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", g.activateDir(), err)
	}
	g.watcher = watcher
	g.done = make(chan struct{})
	go g.watch(watcher, g.done)
	return nil
}

func (g *FileGuard) watch(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}
			g.handleRequest(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			g.logger.Warn("activation watcher error", "error", err)

		case <-done:
			return
		}
	}
}

func (g *FileGuard) handleRequest(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Already consumed by an earlier event for the same file.
		return
	}
	_ = os.Remove(path)

	var req ActivationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		g.logger.Warn("ignoring malformed activation request", "file", filepath.Base(path), "error", err)
		return
	}
	g.logger.Info("second instance launched", "pid", req.PID, "request", req.ID)
	g.handlers.fire()
}

// Release stops watching and drops the lock.
func (g *FileGuard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lock == nil {
		return nil
	}

	var errs []error
	if g.watcher != nil {
		close(g.done)
		errs = append(errs, g.watcher.Close())
		g.watcher = nil
	}
	errs = append(errs, unlock(g.lock))
	g.lock = nil
	return errors.Join(errs...)
}
