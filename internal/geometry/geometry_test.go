package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchor(t *testing.T) {
	fullHD := Region{Width: 1920, Height: 1080}

	tests := []struct {
		name   string
		region Region
		size   Size
		corner Corner
		want   Rect
	}{
		{
			name:   "expanded bottom-right on 1080p",
			region: fullHD,
			size:   OverlayExpanded,
			corner: BottomRight,
			want:   Rect{X: 1460, Y: 440, Width: 420, Height: 600},
		},
		{
			name:   "collapsed bottom-right on 1080p",
			region: fullHD,
			size:   OverlayCollapsed,
			corner: BottomRight,
			want:   Rect{X: 1808, Y: 1008, Width: 72, Height: 32},
		},
		{
			name:   "collapsed top-left",
			region: fullHD,
			size:   OverlayCollapsed,
			corner: TopLeft,
			want:   Rect{X: 20, Y: 20, Width: 72, Height: 32},
		},
		{
			name:   "expanded top-right",
			region: fullHD,
			size:   OverlayExpanded,
			corner: TopRight,
			want:   Rect{X: 1460, Y: 20, Width: 420, Height: 600},
		},
		{
			name:   "expanded bottom-left",
			region: fullHD,
			size:   OverlayExpanded,
			corner: BottomLeft,
			want:   Rect{X: 20, Y: 440, Width: 420, Height: 600},
		},
		{
			name:   "screen smaller than window clamps to margin",
			region: Region{Width: 300, Height: 400},
			size:   OverlayExpanded,
			corner: BottomRight,
			want:   Rect{X: 20, Y: 20, Width: 420, Height: 600},
		},
		{
			name:   "zero region clamps to margin",
			region: Region{},
			size:   OverlayCollapsed,
			corner: BottomRight,
			want:   Rect{X: 20, Y: 20, Width: 72, Height: 32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Anchor(tt.region, tt.size, tt.corner))
		})
	}
}

func TestAnchorStaysOnScreen(t *testing.T) {
	for _, mode := range []Mode{Expanded, Collapsed} {
		size := mode.Size()
		for w := size.Width + LowMargin + AnchorOffset; w <= 3840; w += 97 {
			for h := size.Height + LowMargin + AnchorOffset; h <= 2160; h += 89 {
				region := Region{Width: w, Height: h}
				for _, c := range Corners() {
					r := Target(region, mode, c)
					if r.X < 0 || r.X > w-size.Width || r.Y < 0 || r.Y > h-size.Height {
						t.Fatalf("%s at %s on %dx%d is off screen: %s", mode, c, w, h, r)
					}
				}
			}
		}
	}
}

func TestModeToggle(t *testing.T) {
	assert.Equal(t, Collapsed, Expanded.Toggle())
	assert.Equal(t, Expanded, Collapsed.Toggle())
	assert.Equal(t, OverlayExpanded, Expanded.Size())
	assert.Equal(t, OverlayCollapsed, Collapsed.Size())
}

func TestParseCorner(t *testing.T) {
	for _, c := range Corners() {
		got, err := ParseCorner(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCorner("center")
	assert.Error(t, err)
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		want   Rect
	}{
		{"1080p", Region{Width: 1920, Height: 1080}, Rect{X: 240, Y: 90, Width: 1440, Height: 900}},
		{"smaller than window", Region{Width: 1280, Height: 720}, Rect{X: 0, Y: 0, Width: 1440, Height: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Center(tt.region, Dashboard))
		})
	}
}
