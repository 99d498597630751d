package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydecisions/deskhost/internal/platform"
)

func TestHubRoutesByTarget(t *testing.T) {
	h := NewHub(4, nil)
	overlay := h.Subscribe(ForWindow(platform.KindOverlay))
	dashboard := h.Subscribe(ForWindow(platform.KindDashboard))
	all := h.Subscribe(Everything())

	h.Emit(OverlayToggled{Expanded: false})
	h.Emit(Navigate{Route: "/settings"})

	require.Len(t, overlay.C, 1)
	assert.Equal(t, OverlayToggled{Expanded: false}, <-overlay.C)

	require.Len(t, dashboard.C, 1)
	assert.Equal(t, Navigate{Route: "/settings"}, <-dashboard.C)

	require.Len(t, all.C, 2)
	assert.Equal(t, ChannelOverlayToggle, (<-all.C).Channel())
	assert.Equal(t, ChannelNavigate, (<-all.C).Channel())
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(1, nil)
	sub := h.Subscribe(Everything())

	h.Emit(OverlayToggled{Expanded: true})
	h.Emit(OverlayToggled{Expanded: false})

	require.Len(t, sub.C, 1)
	assert.Equal(t, OverlayToggled{Expanded: true}, <-sub.C)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(1, nil)
	sub := h.Subscribe(Everything())
	assert.Equal(t, 1, h.Subscribers())

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Subscribers())

	_, ok := <-sub.C
	assert.False(t, ok)

	assert.NotPanics(t, func() { h.Emit(Navigate{Route: "/"}) })
}

func TestHubClose(t *testing.T) {
	h := NewHub(1, nil)
	a := h.Subscribe(Everything())
	b := h.Subscribe(ForWindow(platform.KindOverlay))

	h.Close()

	_, okA := <-a.C
	_, okB := <-b.C
	assert.False(t, okA)
	assert.False(t, okB)
	assert.Equal(t, 0, h.Subscribers())
}

func TestRecorder(t *testing.T) {
	var seen []string
	r := &Recorder{Hook: func(ev Event) { seen = append(seen, ev.Channel()) }}

	r.Emit(Navigate{Route: "/settings"})
	r.Emit(OverlayToggled{})

	assert.Equal(t, []Event{Navigate{Route: "/settings"}, OverlayToggled{}}, r.Events())
	assert.Equal(t, []string{ChannelNavigate, ChannelOverlayToggle}, seen)
}
