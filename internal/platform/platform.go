// Package platform abstracts the native window system behind a small port so
// that window orchestration can run against X11 or an in-memory backend.
package platform

import (
	"errors"

	"github.com/mydecisions/deskhost/internal/geometry"
)

// ErrUnsupported is returned by optional operations the backend cannot perform.
var ErrUnsupported = errors.New("operation not supported by this backend")

// ErrClosed is returned when operating on a window that has been closed.
var ErrClosed = errors.New("window closed")

// Kind identifies which of the host's windows a handle belongs to.
type Kind int

const (
	KindOverlay Kind = iota
	KindDashboard
)

func (k Kind) String() string {
	if k == KindDashboard {
		return "dashboard"
	}
	return "overlay"
}

// Screen reports the usable area of the primary display. Implementations must
// query the display on every call; displays can change between calls.
type Screen interface {
	WorkArea() (geometry.Region, error)
}

// WindowOptions describes a native window to create.
type WindowOptions struct {
	Kind        Kind
	Title       string
	Bounds      geometry.Rect
	URL         string
	Frameless   bool
	Transparent bool
	AlwaysOnTop bool
	SkipTaskbar bool
	Resizable   bool
	Shadow      bool
	Hidden      bool
}

// Window is a handle to a native top-level window.
type Window interface {
	ID() uint32
	Kind() Kind
	Bounds() geometry.Rect
	SetBounds(r geometry.Rect) error
	SetResizable(resizable bool) error
	Show() error
	Hide() error
	Focus() error
	Visible() bool
	Minimized() bool
	Restore() error
	// Close destroys the window. Closed observers run before Close returns.
	Close() error
	// OnClosed registers an observer for the window being destroyed, whether
	// through Close or by the user.
	OnClosed(fn func())
	// OnReady runs fn once the window content is ready to show. If the content
	// is already ready, fn runs immediately. Callbacks still pending when the
	// window closes are dropped.
	OnReady(fn func())
}

// Backend creates native windows and answers screen queries.
type Backend interface {
	Screen
	NewWindow(opts WindowOptions) (Window, error)
	Close() error
}
