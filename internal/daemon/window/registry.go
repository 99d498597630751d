// Package window owns the lifetimes of the overlay and dashboard windows.
package window

import (
	"fmt"
	"log/slog"

	"github.com/mydecisions/deskhost/internal/geometry"
	"github.com/mydecisions/deskhost/internal/platform"
)

// Window titles.
const (
	OverlayTitle   = "MyDecisions Overlay"
	DashboardTitle = "MyDecisions"
)

// Options configures a Registry.
type Options struct {
	Backend platform.Backend
	URLs    ContentURLs
	// Backdrop is the material requested for the overlay. Empty disables it.
	Backdrop string
	Logger   *slog.Logger
}

// Registry holds at most one live handle per window kind. It is not safe for
// concurrent use; the host calls it from its event loop only.
type Registry struct {
	backend  platform.Backend
	urls     ContentURLs
	backdrop string
	logger   *slog.Logger

	overlay       platform.Window
	dashboard     platform.Window
	overlayCorner geometry.Corner

	onAllClosed []func()
}

// New creates an empty registry.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		backend:       opts.Backend,
		urls:          opts.URLs,
		backdrop:      opts.Backdrop,
		logger:        logger,
		overlayCorner: geometry.BottomRight,
	}
}

// Screen returns the display geometry provider windows are placed on.
func (r *Registry) Screen() platform.Screen {
	return r.backend
}

// OnAllClosed registers fn to run whenever the last live window goes away.
func (r *Registry) OnAllClosed(fn func()) {
	r.onAllClosed = append(r.onAllClosed, fn)
}

// Overlay returns the live overlay window, or nil.
func (r *Registry) Overlay() platform.Window {
	return r.overlay
}

// Dashboard returns the live dashboard window, or nil.
func (r *Registry) Dashboard() platform.Window {
	return r.dashboard
}

// Live returns the number of live windows.
func (r *Registry) Live() int {
	n := 0
	if r.overlay != nil {
		n++
	}
	if r.dashboard != nil {
		n++
	}
	return n
}

// OverlayCorner returns the corner new overlay windows are placed at.
func (r *Registry) OverlayCorner() geometry.Corner {
	return r.overlayCorner
}

// SetOverlayCorner changes the corner new overlay windows are placed at. It
// does not move a live overlay.
func (r *Registry) SetOverlayCorner(c geometry.Corner) {
	r.overlayCorner = c
}

// EnsureOverlay returns the overlay window, creating it in expanded mode at the
// overlay corner (bottom-right unless changed) if there is none.
func (r *Registry) EnsureOverlay() (platform.Window, error) {
	if r.overlay != nil {
		return r.overlay, nil
	}

	region, err := r.backend.WorkArea()
	if err != nil {
		return nil, fmt.Errorf("failed to read work area: %w", err)
	}

	w, err := r.backend.NewWindow(platform.WindowOptions{
		Kind:        platform.KindOverlay,
		Title:       OverlayTitle,
		Bounds:      geometry.Target(region, geometry.Expanded, r.overlayCorner),
		URL:         r.urls.Overlay,
		Frameless:   true,
		Transparent: true,
		AlwaysOnTop: true,
		SkipTaskbar: true,
		Resizable:   false,
		Shadow:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	platform.ApplyBackdrop(w, r.backdrop, r.logger)

	r.overlay = w
	r.watch(w)
	r.logger.Info("overlay window created", "id", w.ID(), "bounds", w.Bounds().String())
	return w, nil
}

// EnsureDashboard returns the dashboard window, creating it hidden and centered
// if there is none. Callers decide when to show it.
func (r *Registry) EnsureDashboard() (platform.Window, error) {
	if r.dashboard != nil {
		return r.dashboard, nil
	}

	region, err := r.backend.WorkArea()
	if err != nil {
		return nil, fmt.Errorf("failed to read work area: %w", err)
	}

	w, err := r.backend.NewWindow(platform.WindowOptions{
		Kind:      platform.KindDashboard,
		Title:     DashboardTitle,
		Bounds:    geometry.Center(region, geometry.Dashboard),
		URL:       r.urls.Dashboard,
		Resizable: true,
		Hidden:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard window: %w", err)
	}

	r.dashboard = w
	r.watch(w)
	r.logger.Info("dashboard window created", "id", w.ID())
	return w, nil
}

// watch clears the stored handle once w is destroyed. A handle that has
// already been replaced is left alone.
func (r *Registry) watch(w platform.Window) {
	w.OnClosed(func() {
		switch {
		case w.Kind() == platform.KindOverlay && r.overlay == w:
			r.overlay = nil
		case w.Kind() == platform.KindDashboard && r.dashboard == w:
			r.dashboard = nil
		default:
			return
		}
		r.logger.Debug("window closed", "kind", w.Kind().String(), "id", w.ID())

		if r.Live() == 0 {
			for _, fn := range r.onAllClosed {
				fn()
			}
		}
	})
}

// CloseAll closes both windows. Handles are cleared by the time it returns,
// even for a window that failed to close.
func (r *Registry) CloseAll() error {
	var firstErr error
	for _, w := range []platform.Window{r.overlay, r.dashboard} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil {
			r.logger.Warn("failed to close window", "kind", w.Kind().String(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			r.forget(w)
		}
	}
	return firstErr
}

// forget drops a handle whose close failed so nothing keeps using it.
func (r *Registry) forget(w platform.Window) {
	if r.overlay == w {
		r.overlay = nil
	}
	if r.dashboard == w {
		r.dashboard = nil
	}
}
