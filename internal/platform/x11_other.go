//go:build !linux

package platform

import (
	"fmt"

	"github.com/mydecisions/deskhost/internal/geometry"
)

// X11 is unavailable on this platform; use the headless backend instead.
type X11 struct{}

var _ Backend = (*X11)(nil)

// NewX11 always fails outside linux.
func NewX11(opts X11Options) (*X11, error) {
	return nil, fmt.Errorf("X11 backend: %w", ErrUnsupported)
}

func (b *X11) WorkArea() (geometry.Region, error) { return geometry.Region{}, ErrUnsupported }

func (b *X11) NewWindow(opts WindowOptions) (Window, error) { return nil, ErrUnsupported }

func (b *X11) EventLoop() {}

func (b *X11) Close() error { return nil }
