// Package loop runs host handlers one at a time on a single goroutine.
//
// Every mutation of window state goes through the loop: command-channel calls
// wait for their handler with Do, tray clicks and window-manager notifications
// are queued with Post. Handlers therefore never interleave and are applied in
// the order they were received.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStopped is returned when submitting work after the loop has stopped.
var ErrStopped = errors.New("event loop stopped")

// ErrPanicked is returned by Do when the handler panicked.
var ErrPanicked = errors.New("handler panicked")

// Loop is a serial task queue.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	logger *slog.Logger

	stopOnce sync.Once
}

// New creates a loop with the given queue capacity.
func New(capacity int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Loop{
		tasks:  make(chan func(), capacity),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("handler panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Stop ends Run. Queued tasks that have not started are dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn without waiting for it. It reports false if the loop has
// stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. Do must not be called from
// a task already running on the loop.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("handler panicked", "panic", fmt.Sprint(r))
				result <- fmt.Errorf("%w: %v", ErrPanicked, r)
			}
		}()
		result <- fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		// The task may have been the one that stopped the loop.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
