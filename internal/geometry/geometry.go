// Package geometry computes window sizes and screen-clamped positions for the
// overlay and dashboard windows.
package geometry

import "fmt"

// Fixed window sizes, in logical pixels.
var (
	OverlayCollapsed = Size{Width: 72, Height: 32}
	OverlayExpanded  = Size{Width: 420, Height: 600}
	Dashboard        = Size{Width: 1440, Height: 900}
)

const (
	// LowMargin is the minimum distance kept from the top/left screen edge.
	LowMargin = 20
	// AnchorOffset is the distance from the far (right/bottom) screen edge.
	AnchorOffset = 40
)

// Size is a window width and height.
type Size struct {
	Width  int
	Height int
}

// Rect is an on-screen window rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Region is the usable area of the primary display (taskbar and docks excluded).
type Region struct {
	Width  int
	Height int
}

// Mode is the overlay display mode.
type Mode int

const (
	Expanded Mode = iota
	Collapsed
)

func (m Mode) String() string {
	if m == Collapsed {
		return "collapsed"
	}
	return "expanded"
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Collapsed {
		return Expanded
	}
	return Collapsed
}

// Size returns the fixed overlay size for the mode.
func (m Mode) Size() Size {
	if m == Collapsed {
		return OverlayCollapsed
	}
	return OverlayExpanded
}

// Corner selects which screen edges the overlay is anchored to.
type Corner int

const (
	BottomRight Corner = iota
	BottomLeft
	TopRight
	TopLeft
)

var cornerNames = map[Corner]string{
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
}

func (c Corner) String() string {
	if name, ok := cornerNames[c]; ok {
		return name
	}
	return fmt.Sprintf("corner(%d)", int(c))
}

// ParseCorner parses the wire name of a corner ("top-left", ...).
func ParseCorner(s string) (Corner, error) {
	for c, name := range cornerNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown corner %q", s)
}

// Corners returns all corners in wire-name order.
func Corners() []Corner {
	return []Corner{TopLeft, TopRight, BottomLeft, BottomRight}
}

// far returns the clamped coordinate of a window anchored to the far edge.
func far(screen, window int) int {
	return max(LowMargin, screen-window-AnchorOffset)
}

// Anchor places a window of the given size at a corner of the region. Each axis
// is clamped independently, so a window larger than the screen ends up flush
// against the low margin instead of going negative.
func Anchor(region Region, size Size, corner Corner) Rect {
	r := Rect{X: LowMargin, Y: LowMargin, Width: size.Width, Height: size.Height}
	if corner == TopRight || corner == BottomRight {
		r.X = far(region.Width, size.Width)
	}
	if corner == BottomLeft || corner == BottomRight {
		r.Y = far(region.Height, size.Height)
	}
	return r
}

// Target returns the overlay bounds for a mode anchored at a corner.
func Target(region Region, mode Mode, corner Corner) Rect {
	return Anchor(region, mode.Size(), corner)
}

// Center places a window of the given size in the middle of the region, never
// above or left of the region's origin.
func Center(region Region, size Size) Rect {
	return Rect{
		X:      max(0, (region.Width-size.Width)/2),
		Y:      max(0, (region.Height-size.Height)/2),
		Width:  size.Width,
		Height: size.Height,
	}
}
