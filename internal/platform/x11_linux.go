//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/mydecisions/deskhost/internal/geometry"
)

const blurBehindAtom = "_KDE_NET_WM_BLUR_BEHIND_REGION"

// readyTimeout bounds how long a window waits for its renderer to map content
// before it is considered ready anyway.
const readyTimeout = 10 * time.Second

// contentPoll is how often a window checks for its embedded client.
const contentPoll = 100 * time.Millisecond

// X11 creates host windows on an X11 display and embeds renderer processes
// into them.
type X11 struct {
	xu     *xgbutil.XUtil
	opts   X11Options
	logger *slog.Logger

	mu      sync.Mutex
	windows map[xproto.Window]*x11Window
}

var _ Backend = (*X11)(nil)

// NewX11 connects to the display named by $DISPLAY.
func NewX11(opts X11Options) (*X11, error) {
	opts.setDefaults()

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	return &X11{
		xu:      xu,
		opts:    opts,
		logger:  opts.Logger,
		windows: make(map[xproto.Window]*x11Window),
	}, nil
}

// EventLoop processes X events until Close is called (blocking).
func (b *X11) EventLoop() {
	xevent.Main(b.xu)
}

// Close destroys remaining windows and disconnects.
func (b *X11) Close() error {
	b.mu.Lock()
	live := make([]*x11Window, 0, len(b.windows))
	for _, w := range b.windows {
		live = append(live, w)
	}
	b.mu.Unlock()

	for _, w := range live {
		_ = w.Close()
	}
	xevent.Quit(b.xu)
	b.xu.Conn().Close()
	return nil
}

// WorkArea returns the _NET_WORKAREA of the current desktop, falling back to
// the root window geometry when the window manager does not publish one.
func (b *X11) WorkArea() (geometry.Region, error) {
	areas, err := ewmh.WorkareaGet(b.xu)
	if err == nil && len(areas) > 0 {
		idx := 0
		if desk, err := ewmh.CurrentDesktopGet(b.xu); err == nil && int(desk) < len(areas) {
			idx = int(desk)
		}
		return geometry.Region{Width: int(areas[idx].Width), Height: int(areas[idx].Height)}, nil
	}

	root, err := xwindow.RawGeometry(b.xu, xproto.Drawable(b.xu.RootWin()))
	if err != nil {
		return geometry.Region{}, fmt.Errorf("failed to read root geometry: %w", err)
	}
	return geometry.Region{Width: root.Width(), Height: root.Height()}, nil
}

// NewWindow creates, decorates and (unless hidden) maps a window, then starts
// its renderer.
func (b *X11) NewWindow(opts WindowOptions) (Window, error) {
	win, err := xwindow.Generate(b.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	r := opts.Bounds
	// ARGB transparency needs a 32-bit visual; the embedded renderer paints
	// its own background instead.
	if err := win.CreateChecked(b.xu.RootWin(), r.X, r.Y, r.Width, r.Height,
		xproto.CwBackPixel|xproto.CwEventMask, 0, xproto.EventMaskStructureNotify); err != nil {
		return nil, fmt.Errorf("failed to create %s window: %w", opts.Kind, err)
	}

	w := &x11Window{
		backend:   b,
		win:       win,
		opts:      opts,
		bounds:    r,
		resizable: opts.Resizable,
	}
	if err := w.decorate(); err != nil {
		win.Destroy()
		return nil, err
	}

	b.mu.Lock()
	b.windows[win.Id] = w
	b.mu.Unlock()

	xevent.ClientMessageFun(w.onClientMessage).Connect(b.xu, win.Id)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		b.opts.Dispatch(w.destroyed)
	}).Connect(b.xu, win.Id)

	if !opts.Hidden {
		win.Map()
		w.visible = true
	}

	proc, err := b.opts.Renderer.Start(opts.URL, uint32(win.Id), opts.Title)
	if err != nil {
		b.logger.Warn("window content unavailable", "kind", opts.Kind.String(), "error", err)
	}
	w.mu.Lock()
	w.renderer = proc
	w.mu.Unlock()
	if proc == nil {
		// Nothing will be embedded; show the empty window.
		w.contentReady("no renderer")
	} else {
		go w.waitForContent()
	}

	b.logger.Debug("window created", "kind", opts.Kind.String(), "xid", uint32(win.Id), "bounds", r.String())
	return w, nil
}

func (b *X11) forget(id xproto.Window) {
	b.mu.Lock()
	delete(b.windows, id)
	b.mu.Unlock()
}

// sendRootMessage sends an EWMH client message to the root window. Built by
// hand because the ewmh request helpers panic on this xgbutil version.
func (b *X11) sendRootMessage(atomName string, win xproto.Window, data ...uint32) error {
	atom, err := xprop.Atm(b.xu, atomName)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}
	for len(data) < 5 {
		data = append(data, 0)
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		b.xu.Conn(),
		false,
		b.xu.RootWin(),
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

type x11Window struct {
	backend *X11
	win     *xwindow.Window
	opts    WindowOptions

	mu        sync.Mutex
	bounds    geometry.Rect
	resizable bool
	visible   bool
	closed    bool
	renderer  *os.Process
	onClosed  []func()

	ready readiness
}

var (
	_ Window         = (*x11Window)(nil)
	_ BackdropSetter = (*x11Window)(nil)
)

func (w *x11Window) decorate() error {
	xu := w.backend.xu
	id := w.win.Id

	if err := ewmh.WmNameSet(xu, id, w.opts.Title); err != nil {
		return fmt.Errorf("failed to set window title: %w", err)
	}
	_ = icccm.WmNameSet(xu, id, w.opts.Title)
	_ = icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: "mydecisions", Class: "MyDecisions"})

	if w.opts.Frameless {
		if err := motif.WmHintsSet(xu, id, &motif.Hints{
			Flags:      motif.HintDecorations,
			Decoration: motif.DecorationNone,
		}); err != nil {
			return fmt.Errorf("failed to remove decorations: %w", err)
		}
		_ = ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})
	}

	var states []string
	if w.opts.AlwaysOnTop {
		states = append(states, "_NET_WM_STATE_ABOVE")
	}
	if w.opts.SkipTaskbar {
		states = append(states, "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER")
	}
	if len(states) > 0 {
		if err := ewmh.WmStateSet(xu, id, states); err != nil {
			return fmt.Errorf("failed to set window state: %w", err)
		}
	}

	if err := w.setSizeHints(w.bounds, w.resizable); err != nil {
		return err
	}
	return icccm.WmProtocolsSet(xu, id, []string{"WM_DELETE_WINDOW"})
}

func (w *x11Window) setSizeHints(r geometry.Rect, resizable bool) error {
	nh := &icccm.NormalHints{
		Flags:  icccm.SizeHintPPosition | icccm.SizeHintPSize,
		X:      r.X,
		Y:      r.Y,
		Width:  uint(r.Width),
		Height: uint(r.Height),
	}
	if !resizable {
		nh.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		nh.MinWidth, nh.MaxWidth = uint(r.Width), uint(r.Width)
		nh.MinHeight, nh.MaxHeight = uint(r.Height), uint(r.Height)
	}
	if err := icccm.WmNormalHintsSet(w.backend.xu, w.win.Id, nh); err != nil {
		return fmt.Errorf("failed to set size hints: %w", err)
	}
	return nil
}

func (w *x11Window) ID() uint32 { return uint32(w.win.Id) }
func (w *x11Window) Kind() Kind { return w.opts.Kind }

func (w *x11Window) Bounds() geometry.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *x11Window) SetBounds(r geometry.Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	// Fixed-size windows carry min == max hints, which the WM enforces.
	if !w.resizable {
		if err := w.setSizeHints(r, false); err != nil {
			return err
		}
	}
	if err := ewmh.MoveresizeWindow(w.backend.xu, w.win.Id, r.X, r.Y, r.Width, r.Height); err != nil {
		w.win.MoveResize(r.X, r.Y, r.Width, r.Height)
	}
	w.bounds = r
	return nil
}

func (w *x11Window) SetResizable(resizable bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.setSizeHints(w.bounds, resizable); err != nil {
		return err
	}
	w.resizable = resizable
	return nil
}

func (w *x11Window) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.win.Map()
	w.visible = true
	return nil
}

func (w *x11Window) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.win.Unmap()
	w.visible = false
	return nil
}

func (w *x11Window) Focus() error {
	if w.isClosed() {
		return ErrClosed
	}
	const sourcePager = 2
	return w.backend.sendRootMessage("_NET_ACTIVE_WINDOW", w.win.Id, sourcePager)
}

func (w *x11Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *x11Window) Minimized() bool {
	state, err := icccm.WmStateGet(w.backend.xu, w.win.Id)
	if err != nil {
		return false
	}
	return state.State == icccm.StateIconic
}

func (w *x11Window) Restore() error {
	if err := w.Show(); err != nil {
		return err
	}
	return w.Focus()
}

// SetBackdrop asks a compositor that supports blur-behind to blur the whole
// window.
func (w *x11Window) SetBackdrop(material string) error {
	if material != "blur" {
		return fmt.Errorf("backdrop %q: %w", material, ErrUnsupported)
	}
	supported, err := ewmh.SupportedGet(w.backend.xu)
	if err != nil {
		return fmt.Errorf("failed to read supported hints: %w", err)
	}
	for _, atom := range supported {
		if atom == blurBehindAtom {
			return xprop.ChangeProp32(w.backend.xu, w.win.Id, blurBehindAtom, "CARDINAL")
		}
	}
	return fmt.Errorf("compositor has no %s: %w", blurBehindAtom, ErrUnsupported)
}

func (w *x11Window) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *x11Window) Close() error {
	return w.teardown(true)
}

// destroyed handles a DestroyNotify for a window we did not destroy ourselves.
func (w *x11Window) destroyed() {
	_ = w.teardown(false)
}

func (w *x11Window) teardown(destroy bool) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.visible = false
	observers := w.onClosed
	w.onClosed = nil
	proc := w.renderer
	w.mu.Unlock()
	w.ready.drop()

	xevent.Detach(w.backend.xu, w.win.Id)
	if destroy {
		w.win.Destroy()
	}
	if proc != nil {
		_ = proc.Kill()
	}
	w.backend.forget(w.win.Id)

	for _, fn := range observers {
		fn()
	}
	return nil
}

func (w *x11Window) onClientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	protocols, err := xprop.Atm(xu, "WM_PROTOCOLS")
	if err != nil || ev.Type != protocols || len(ev.Data.Data32) == 0 {
		return
	}
	del, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
	if err != nil || xproto.Atom(ev.Data.Data32[0]) != del {
		return
	}
	w.backend.opts.Dispatch(func() { _ = w.Close() })
}

func (w *x11Window) OnClosed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClosed = append(w.onClosed, fn)
}

// OnReady runs fn once the renderer has mapped its content into the window,
// or right away if that already happened. Callbacks registered before that run
// through the backend's Dispatch.
func (w *x11Window) OnReady(fn func()) {
	w.ready.add(fn)
}

// waitForContent polls until the renderer has mapped a child into the window.
// The embedding protocol gives the parent no reliable notification of its own.
func (w *x11Window) waitForContent() {
	deadline := time.Now().Add(readyTimeout)
	ticker := time.NewTicker(contentPoll)
	defer ticker.Stop()

	for range ticker.C {
		if w.isClosed() {
			return
		}
		if w.hasMappedChild() {
			w.contentReady("mapped")
			return
		}
		if time.Now().After(deadline) {
			w.contentReady("timeout")
			return
		}
	}
}

func (w *x11Window) hasMappedChild() bool {
	conn := w.backend.xu.Conn()
	tree, err := xproto.QueryTree(conn, w.win.Id).Reply()
	if err != nil {
		return false
	}
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(conn, child).Reply()
		if err == nil && attrs.MapState != xproto.MapStateUnmapped {
			return true
		}
	}
	return false
}

func (w *x11Window) contentReady(reason string) {
	if w.isClosed() {
		return
	}
	fns, changed := w.ready.markReady()
	if !changed {
		return
	}
	w.backend.logger.Debug("window content ready", "kind", w.opts.Kind.String(), "reason", reason)
	for _, fn := range fns {
		w.backend.opts.Dispatch(fn)
	}
}
