// Package events defines the notifications the host pushes to window content
// and fans them out to subscribers.
package events

import (
	"log/slog"
	"sync"

	"github.com/mydecisions/deskhost/internal/platform"
)

// Channel names as seen by window content.
const (
	ChannelOverlayToggle = "overlay-toggle"
	ChannelNavigate      = "navigate"
)

// Event is one of OverlayToggled or Navigate. The set is closed.
type Event interface {
	Channel() string
	// Target is the window whose content the event is addressed to.
	Target() platform.Kind
	isEvent()
}

// OverlayToggled reports the overlay mode after a toggle has been applied.
type OverlayToggled struct {
	Expanded bool
}

func (OverlayToggled) Channel() string       { return ChannelOverlayToggle }
func (OverlayToggled) Target() platform.Kind { return platform.KindOverlay }
func (OverlayToggled) isEvent()              {}

// Navigate asks the dashboard content to switch to Route.
type Navigate struct {
	Route string
}

func (Navigate) Channel() string       { return ChannelNavigate }
func (Navigate) Target() platform.Kind { return platform.KindDashboard }
func (Navigate) isEvent()              {}

// Emitter is the outbound event port used by the state machine and the tray.
type Emitter interface {
	Emit(ev Event)
}

// Filter selects which events a subscriber receives.
type Filter struct {
	// All matches every event regardless of target.
	All  bool
	Kind platform.Kind
}

// ForWindow returns a filter for the content of one window.
func ForWindow(kind platform.Kind) Filter {
	return Filter{Kind: kind}
}

// Everything returns a filter that matches all events.
func Everything() Filter {
	return Filter{All: true}
}

func (f Filter) match(ev Event) bool {
	return f.All || ev.Target() == f.Kind
}

// Subscription is a live event stream.
type Subscription struct {
	C <-chan Event

	id     uint64
	ch     chan Event
	filter Filter
}

// Hub delivers events to subscribers. Delivery is fire-and-forget: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	logger *slog.Logger
}

var _ Emitter = (*Hub)(nil)

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, id: h.nextID, ch: ch, filter: filter}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Emit delivers ev to every matching subscriber without blocking.
func (h *Hub) Emit(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.filter.match(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping event for slow subscriber", "channel", ev.Channel(), "subscriber", sub.id)
		}
	}
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// Recorder is an Emitter that keeps every event, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Hook, if set, runs synchronously for each event.
	Hook func(Event)
}

// Emit implements Emitter.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	hook := r.Hook
	r.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

// Events returns a copy of what has been emitted so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
