// Package instance keeps a single host process running per user session and
// forwards later launches to it.
package instance

import (
	"fmt"
	"log/slog"
	"sync"
)

// Backend names accepted by New.
const (
	BackendFile = "file"
	BackendDBus = "dbus"
)

// Guard is a process-wide single-instance lock.
//
// Acquire is called once at startup. When it reports false another instance
// holds the lock and has already been told about this launch; the caller must
// exit without creating any windows. When it reports true the lock is held
// until Release, and handlers registered with OnSecondInstance run for every
// later launch. Handlers run on a background goroutine.
type Guard interface {
	Acquire() (bool, error)
	OnSecondInstance(fn func())
	Release() error
}

// New returns a guard for the named backend. dir is the runtime directory used
// by the file backend.
func New(backend, dir string, logger *slog.Logger) (Guard, error) {
	switch backend {
	case "", BackendFile:
		return NewFileGuard(dir, logger), nil
	case BackendDBus:
		return NewDBusGuard(DefaultBusName, logger), nil
	default:
		return nil, fmt.Errorf("unknown instance backend %q", backend)
	}
}

// handlers is the second-instance callback list shared by the backends.
type handlers struct {
	mu  sync.Mutex
	fns []func()
}

func (h *handlers) add(fn func()) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *handlers) fire() {
	h.mu.Lock()
	fns := append([]func(){}, h.fns...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
