package platform

import "log/slog"

// X11Options configures the X11 backend.
type X11Options struct {
	// Dispatch runs fn on the host event loop. Window-manager initiated events
	// (user closing a window) are delivered through it.
	Dispatch func(fn func())
	Renderer *Renderer
	Logger   *slog.Logger
}

func (o *X11Options) setDefaults() {
	if o.Dispatch == nil {
		o.Dispatch = func(fn func()) { fn() }
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}
