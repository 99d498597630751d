package platform

import "sync"

// readiness holds OnReady callbacks until the window content has shown up.
type readiness struct {
	mu      sync.Mutex
	ready   bool
	dropped bool
	pending []func()
}

// add runs fn now if the content is ready, otherwise keeps it for markReady.
func (r *readiness) add(fn func()) {
	r.mu.Lock()
	if r.dropped {
		r.mu.Unlock()
		return
	}
	if !r.ready {
		r.pending = append(r.pending, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

// markReady flips the state once and returns the callbacks to run. It
// reports false if the content was already ready.
func (r *readiness) markReady() ([]func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil, false
	}
	r.ready = true
	fns := r.pending
	r.pending = nil
	return fns, true
}

// drop forgets pending callbacks of a closed window and ignores later ones.
func (r *readiness) drop() {
	r.mu.Lock()
	r.ready = true
	r.dropped = true
	r.pending = nil
	r.mu.Unlock()
}
