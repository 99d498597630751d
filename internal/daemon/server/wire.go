package server

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/platform"
)

// Wire field names of an event.
const (
	fieldChannel  = "channel"
	fieldExpanded = "expanded"
	fieldRoute    = "route"
)

// Window names accepted by the Events stream.
const (
	WindowOverlay   = "overlay"
	WindowDashboard = "dashboard"
)

// ParseWindow maps a subscriber window name onto an event filter. An empty
// name subscribes to everything.
func ParseWindow(name string) (events.Filter, error) {
	switch name {
	case "":
		return events.Everything(), nil
	case WindowOverlay:
		return events.ForWindow(platform.KindOverlay), nil
	case WindowDashboard:
		return events.ForWindow(platform.KindDashboard), nil
	default:
		return events.Filter{}, fmt.Errorf("unknown window %q", name)
	}
}

// EncodeEvent converts an event to its wire form.
func EncodeEvent(ev events.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldChannel: structpb.NewStringValue(ev.Channel()),
	}
	switch e := ev.(type) {
	case events.OverlayToggled:
		fields[fieldExpanded] = structpb.NewBoolValue(e.Expanded)
	case events.Navigate:
		fields[fieldRoute] = structpb.NewStringValue(e.Route)
	}
	return &structpb.Struct{Fields: fields}
}

// DecodeEvent converts a wire event back into an events.Event.
func DecodeEvent(s *structpb.Struct) (events.Event, error) {
	fields := s.GetFields()
	switch channel := fields[fieldChannel].GetStringValue(); channel {
	case events.ChannelOverlayToggle:
		v, ok := fields[fieldExpanded]
		if !ok {
			return nil, fmt.Errorf("%s event without %s", channel, fieldExpanded)
		}
		return events.OverlayToggled{Expanded: v.GetBoolValue()}, nil
	case events.ChannelNavigate:
		v, ok := fields[fieldRoute]
		if !ok {
			return nil, fmt.Errorf("%s event without %s", channel, fieldRoute)
		}
		return events.Navigate{Route: v.GetStringValue()}, nil
	default:
		return nil, fmt.Errorf("unknown event channel %q", channel)
	}
}
