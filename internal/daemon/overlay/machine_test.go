package overlay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/daemon/window"
	"github.com/mydecisions/deskhost/internal/geometry"
	"github.com/mydecisions/deskhost/internal/platform"
)

var fullHD = geometry.Region{Width: 1920, Height: 1080}

type fixture struct {
	backend  *platform.Headless
	registry *window.Registry
	recorder *events.Recorder
	machine  *Machine
}

func newFixture(t *testing.T, region geometry.Region) *fixture {
	t.Helper()
	backend := platform.NewHeadless(region, nil)
	registry := window.New(window.Options{Backend: backend})
	recorder := &events.Recorder{}
	return &fixture{
		backend:  backend,
		registry: registry,
		recorder: recorder,
		machine:  New(registry, recorder, nil),
	}
}

func (f *fixture) overlay(t *testing.T) platform.Window {
	t.Helper()
	w, err := f.registry.EnsureOverlay()
	require.NoError(t, err)
	return w
}

func TestToggleScenario(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)

	assert.Equal(t, geometry.Expanded, f.machine.Mode())
	assert.Equal(t, geometry.Rect{X: 1460, Y: 440, Width: 420, Height: 600}, w.Bounds())

	expanded, err := f.machine.Toggle()
	require.NoError(t, err)
	assert.False(t, expanded)
	assert.Equal(t, geometry.Collapsed, f.machine.Mode())
	assert.Equal(t, geometry.Rect{X: 1808, Y: 1008, Width: 72, Height: 32}, w.Bounds())
	assert.False(t, w.(*platform.HeadlessWindow).Resizable())

	require.NoError(t, f.machine.SetPosition(geometry.TopLeft))
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 72, Height: 32}, w.Bounds())
	assert.Equal(t, geometry.Collapsed, f.machine.Mode())

	assert.Equal(t, []events.Event{events.OverlayToggled{Expanded: false}}, f.recorder.Events())
}

func TestToggleTwiceRestoresBounds(t *testing.T) {
	for _, start := range []geometry.Mode{geometry.Expanded, geometry.Collapsed} {
		for _, corner := range geometry.Corners() {
			t.Run(start.String()+"/"+corner.String(), func(t *testing.T) {
				f := newFixture(t, fullHD)
				w := f.overlay(t)
				require.NoError(t, f.machine.SetPosition(corner))
				if start == geometry.Collapsed {
					_, err := f.machine.Toggle()
					require.NoError(t, err)
				}

				before := w.Bounds()
				_, err := f.machine.Toggle()
				require.NoError(t, err)
				_, err = f.machine.Toggle()
				require.NoError(t, err)

				assert.Equal(t, start, f.machine.Mode())
				assert.Equal(t, before, w.Bounds())
			})
		}
	}
}

func TestEventObservesAppliedBounds(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)

	var observed []geometry.Size
	f.recorder.Hook = func(ev events.Event) {
		toggled, ok := ev.(events.OverlayToggled)
		require.True(t, ok)
		want := geometry.Collapsed.Size()
		if toggled.Expanded {
			want = geometry.Expanded.Size()
		}
		assert.Equal(t, want, w.Bounds().Size())
		observed = append(observed, w.Bounds().Size())
	}

	for i := 0; i < 4; i++ {
		_, err := f.machine.Toggle()
		require.NoError(t, err)
	}
	assert.Len(t, observed, 4)
}

func TestToggleWithoutOverlayCreatesIt(t *testing.T) {
	f := newFixture(t, fullHD)

	expanded, err := f.machine.Toggle()
	require.NoError(t, err)
	assert.True(t, expanded)
	assert.Equal(t, 1, f.backend.Created())
	require.NotNil(t, f.registry.Overlay())
	assert.Equal(t, geometry.OverlayExpanded, f.registry.Overlay().Bounds().Size())
	assert.Empty(t, f.recorder.Events())
}

func TestRecreatedOverlayStartsExpandedAtRememberedCorner(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)

	require.NoError(t, f.machine.SetPosition(geometry.TopRight))
	_, err := f.machine.Toggle()
	require.NoError(t, err)
	require.Equal(t, geometry.Collapsed, f.machine.Mode())

	require.NoError(t, w.Close())

	expanded, err := f.machine.Toggle()
	require.NoError(t, err)
	assert.True(t, expanded)
	assert.Equal(t, geometry.Expanded, f.machine.Mode())
	assert.Equal(t, geometry.Rect{X: 1460, Y: 20, Width: 420, Height: 600}, f.registry.Overlay().Bounds())
}

func TestOverlayCreatedOutsideMachineUsesRememberedCorner(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)
	require.NoError(t, f.machine.SetPosition(geometry.TopLeft))
	require.NoError(t, w.Close())

	// e.g. the lifecycle recreating windows on activation
	recreated := f.overlay(t)
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 420, Height: 600}, recreated.Bounds())
	assert.Equal(t, geometry.TopLeft, f.machine.Corner())
}

func TestWindowRecreatedElsewhereResetsMode(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)
	_, err := f.machine.Toggle()
	require.NoError(t, err)

	require.NoError(t, w.Close())
	f.overlay(t)

	assert.Equal(t, geometry.Expanded, f.machine.Mode())
}

func TestSetPositionWithoutOverlayIsNoop(t *testing.T) {
	f := newFixture(t, fullHD)

	require.NoError(t, f.machine.SetPosition(geometry.TopLeft))
	assert.Equal(t, 0, f.backend.Created())
	assert.Equal(t, geometry.BottomRight, f.machine.Corner())
}

func TestSetPositionUsesCurrentSize(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)

	// The window manager may have enforced a different size.
	require.NoError(t, w.SetBounds(geometry.Rect{X: 0, Y: 0, Width: 300, Height: 200}))
	require.NoError(t, f.machine.SetPosition(geometry.BottomLeft))

	assert.Equal(t, geometry.Rect{X: 20, Y: 840, Width: 300, Height: 200}, w.Bounds())
}

func TestWorkAreaIsReadOnEveryCall(t *testing.T) {
	f := newFixture(t, fullHD)
	w := f.overlay(t)

	f.backend.SetWorkArea(geometry.Region{Width: 1280, Height: 720})
	_, err := f.machine.Toggle()
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 1168, Y: 648, Width: 72, Height: 32}, w.Bounds())
}

func TestSmallScreenClampsToMargin(t *testing.T) {
	f := newFixture(t, geometry.Region{Width: 300, Height: 400})
	w := f.overlay(t)

	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 420, Height: 600}, w.Bounds())
	require.NoError(t, f.machine.SetPosition(geometry.BottomRight))
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 420, Height: 600}, w.Bounds())
}

type frozenWindow struct {
	*platform.HeadlessWindow
}

func (frozenWindow) SetBounds(geometry.Rect) error { return errors.New("compositor refused") }

type fakeWindows struct {
	screen  platform.Screen
	overlay platform.Window
	corner  geometry.Corner
}

func (f *fakeWindows) Overlay() platform.Window                { return f.overlay }
func (f *fakeWindows) EnsureOverlay() (platform.Window, error) { return f.overlay, nil }
func (f *fakeWindows) Screen() platform.Screen                 { return f.screen }
func (f *fakeWindows) OverlayCorner() geometry.Corner          { return f.corner }
func (f *fakeWindows) SetOverlayCorner(c geometry.Corner)      { f.corner = c }

func TestFailedResizeKeepsModeAndEmitsNothing(t *testing.T) {
	backend := platform.NewHeadless(fullHD, nil)
	w, err := backend.NewWindow(platform.WindowOptions{Kind: platform.KindOverlay})
	require.NoError(t, err)

	recorder := &events.Recorder{}
	m := New(&fakeWindows{screen: backend, overlay: frozenWindow{w.(*platform.HeadlessWindow)}}, recorder, nil)

	expanded, err := m.Toggle()
	assert.Error(t, err)
	assert.True(t, expanded)
	assert.Equal(t, geometry.Expanded, m.Mode())
	assert.Empty(t, recorder.Events())
}
