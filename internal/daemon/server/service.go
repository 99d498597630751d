package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/daemon/loop"
	"github.com/mydecisions/deskhost/internal/geometry"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mydecisions.host.v1.CommandService"

// Full method names.
const (
	MethodToggleOverlay      = "/" + ServiceName + "/ToggleOverlay"
	MethodShowDashboard      = "/" + ServiceName + "/ShowDashboard"
	MethodSetOverlayPosition = "/" + ServiceName + "/SetOverlayPosition"
	MethodEvents             = "/" + ServiceName + "/Events"
)

// ErrShuttingDown is returned by Commands once the host has begun quitting.
var ErrShuttingDown = errors.New("host is shutting down")

// Commands runs the host operations exposed to window content. Each call
// returns after the operation has been applied.
type Commands interface {
	ToggleOverlay(ctx context.Context) (bool, error)
	ShowDashboard(ctx context.Context) error
	SetOverlayPosition(ctx context.Context, corner geometry.Corner) error
}

// EventSource hands out event subscriptions.
type EventSource interface {
	Subscribe(filter events.Filter) *events.Subscription
	Unsubscribe(sub *events.Subscription)
}

// ============================================================================
// gRPC Service Definition (hand-written; messages are protobuf well-known types)
// ============================================================================

// CommandServiceServer is the server interface for CommandService.
type CommandServiceServer interface {
	ToggleOverlay(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	ShowDashboard(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SetOverlayPosition(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Events(*wrapperspb.StringValue, CommandService_EventsServer) error
}

// CommandService_EventsServer is the server side of the Events stream.
type CommandService_EventsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type commandServiceEventsServer struct {
	grpc.ServerStream
}

func (x *commandServiceEventsServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// CommandService_ServiceDesc is the grpc.ServiceDesc for CommandService.
var CommandService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ToggleOverlay", Handler: _CommandService_ToggleOverlay_Handler},
		{MethodName: "ShowDashboard", Handler: _CommandService_ShowDashboard_Handler},
		{MethodName: "SetOverlayPosition", Handler: _CommandService_SetOverlayPosition_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Events", Handler: _CommandService_Events_Handler, ServerStreams: true},
	},
	Metadata: "mydecisions/host/v1/command.proto",
}

// RegisterCommandServiceServer registers the CommandServiceServer with the gRPC server.
func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&CommandService_ServiceDesc, srv)
}

func _CommandService_ToggleOverlay_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).ToggleOverlay(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodToggleOverlay}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).ToggleOverlay(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommandService_ShowDashboard_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).ShowDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodShowDashboard}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).ShowDashboard(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommandService_SetOverlayPosition_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).SetOverlayPosition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSetOverlayPosition}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).SetOverlayPosition(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommandService_Events_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CommandServiceServer).Events(m, &commandServiceEventsServer{stream})
}

// ============================================================================
// Service Implementation
// ============================================================================

type commandService struct {
	commands Commands
	events   EventSource
	done     <-chan struct{}
	logger   *slog.Logger
}

func (s *commandService) ToggleOverlay(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	expanded, err := s.commands.ToggleOverlay(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(expanded), nil
}

func (s *commandService) ShowDashboard(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.commands.ShowDashboard(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *commandService) SetOverlayPosition(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	corner, err := geometry.ParseCorner(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.commands.SetOverlayPosition(ctx, corner); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *commandService) Events(req *wrapperspb.StringValue, stream CommandService_EventsServer) error {
	filter, err := ParseWindow(req.GetValue())
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	sub := s.events.Subscribe(filter)
	defer s.events.Unsubscribe(sub)

	// Headers tell the client the subscription is live.
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}
	s.logger.Debug("event subscriber attached", "window", req.GetValue())

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-s.done:
			return status.Error(codes.Unavailable, ErrShuttingDown.Error())
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := stream.Send(EncodeEvent(ev)); err != nil {
				return err
			}
		}
	}
}

// toStatus maps command errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrShuttingDown), errors.Is(err, loop.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, err.Error())
	}
}
