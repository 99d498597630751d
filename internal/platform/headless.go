package platform

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mydecisions/deskhost/internal/geometry"
)

// Headless is an in-memory backend. It keeps window state without drawing
// anything and is used for --headless runs and in tests.
type Headless struct {
	logger *slog.Logger

	mu      sync.Mutex
	region  geometry.Region
	nextID  uint32
	created int
	windows map[uint32]*HeadlessWindow
}

var _ Backend = (*Headless)(nil)

// NewHeadless creates a headless backend reporting the given work area.
func NewHeadless(region geometry.Region, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{
		logger:  logger,
		region:  region,
		windows: make(map[uint32]*HeadlessWindow),
	}
}

// WorkArea returns the current simulated work area.
func (h *Headless) WorkArea() (geometry.Region, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.region, nil
}

// SetWorkArea changes the simulated display, e.g. a resolution change.
func (h *Headless) SetWorkArea(region geometry.Region) {
	h.mu.Lock()
	h.region = region
	h.mu.Unlock()
}

// NewWindow records a new window.
func (h *Headless) NewWindow(opts WindowOptions) (Window, error) {
	h.mu.Lock()
	h.nextID++
	h.created++
	w := &HeadlessWindow{
		backend:   h,
		id:        h.nextID,
		opts:      opts,
		bounds:    opts.Bounds,
		visible:   !opts.Hidden,
		resizable: opts.Resizable,
	}
	h.windows[w.id] = w
	h.mu.Unlock()

	h.logger.Debug("window created", "kind", opts.Kind.String(), "id", w.id, "bounds", opts.Bounds.String(), "url", opts.URL)
	return w, nil
}

// Created returns how many windows were ever created.
func (h *Headless) Created() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created
}

// Windows returns the live windows ordered by id.
func (h *Headless) Windows() []*HeadlessWindow {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*HeadlessWindow, 0, len(h.windows))
	for _, w := range h.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Close destroys every live window.
func (h *Headless) Close() error {
	for _, w := range h.Windows() {
		_ = w.Close()
	}
	return nil
}

func (h *Headless) forget(id uint32) {
	h.mu.Lock()
	delete(h.windows, id)
	h.mu.Unlock()
}

// HeadlessWindow is a window of the headless backend.
type HeadlessWindow struct {
	backend *Headless
	id      uint32
	opts    WindowOptions

	mu        sync.Mutex
	bounds    geometry.Rect
	visible   bool
	minimized bool
	focused   bool
	resizable bool
	closed    bool
	backdrop  string
	onClosed  []func()
}

var (
	_ Window         = (*HeadlessWindow)(nil)
	_ BackdropSetter = (*HeadlessWindow)(nil)
)

func (w *HeadlessWindow) ID() uint32 { return w.id }
func (w *HeadlessWindow) Kind() Kind { return w.opts.Kind }

// Options returns the options the window was created with.
func (w *HeadlessWindow) Options() WindowOptions { return w.opts }

func (w *HeadlessWindow) Bounds() geometry.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *HeadlessWindow) SetBounds(r geometry.Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.bounds = r
	return nil
}

func (w *HeadlessWindow) SetResizable(resizable bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.resizable = resizable
	return nil
}

// Resizable reports whether the user may resize the window.
func (w *HeadlessWindow) Resizable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resizable
}

func (w *HeadlessWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.visible = true
	return nil
}

func (w *HeadlessWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.visible = false
	return nil
}

func (w *HeadlessWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.focused = true
	return nil
}

// Focused reports whether Focus has been requested.
func (w *HeadlessWindow) Focused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *HeadlessWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Minimize simulates the user minimizing the window.
func (w *HeadlessWindow) Minimize() {
	w.mu.Lock()
	w.minimized = true
	w.focused = false
	w.mu.Unlock()
}

func (w *HeadlessWindow) Minimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized
}

func (w *HeadlessWindow) Restore() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.minimized = false
	w.visible = true
	return nil
}

func (w *HeadlessWindow) SetBackdrop(material string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.backdrop = material
	return nil
}

// Backdrop returns the applied backdrop material.
func (w *HeadlessWindow) Backdrop() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.backdrop
}

// Closed reports whether the window has been destroyed.
func (w *HeadlessWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *HeadlessWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.visible = false
	observers := w.onClosed
	w.onClosed = nil
	w.mu.Unlock()

	w.backend.forget(w.id)
	for _, fn := range observers {
		fn()
	}
	return nil
}

func (w *HeadlessWindow) OnClosed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClosed = append(w.onClosed, fn)
}

// OnReady runs fn immediately; headless content is always ready.
func (w *HeadlessWindow) OnReady(fn func()) {
	fn()
}
