package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mydecisions/deskhost/internal/daemon/events"
)

// Client calls the command channel.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial connects to the command channel at addr.
func Dial(addr string) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to host: %w", err)
	}
	return NewClient(conn), conn, nil
}

// ToggleOverlay toggles the overlay and returns whether it is now expanded.
func (c *Client) ToggleOverlay(ctx context.Context) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, MethodToggleOverlay, &emptypb.Empty{}, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// ShowDashboard brings the dashboard forward.
func (c *Client) ShowDashboard(ctx context.Context) error {
	return c.cc.Invoke(ctx, MethodShowDashboard, &emptypb.Empty{}, new(emptypb.Empty))
}

// SetOverlayPosition moves the overlay to a corner given by its wire name.
func (c *Client) SetOverlayPosition(ctx context.Context, corner string) error {
	return c.cc.Invoke(ctx, MethodSetOverlayPosition, wrapperspb.String(corner), new(emptypb.Empty))
}

// EventStream receives events from the host.
type EventStream struct {
	stream grpc.ClientStream
}

// Events subscribes to the events addressed to window ("overlay", "dashboard",
// or "" for all). It returns once the subscription is live.
func (c *Client) Events(ctx context.Context, window string) (*EventStream, error) {
	stream, err := c.cc.NewStream(ctx, &CommandService_ServiceDesc.Streams[0], MethodEvents)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(wrapperspb.String(window)); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	if _, err := stream.Header(); err != nil {
		return nil, err
	}
	return &EventStream{stream: stream}, nil
}

// Recv blocks for the next event.
func (s *EventStream) Recv() (events.Event, error) {
	m := new(structpb.Struct)
	if err := s.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return DecodeEvent(m)
}
