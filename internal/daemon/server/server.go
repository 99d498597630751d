// Package server implements the command channel between window content and
// the host: a gRPC service, reachable from the sandboxed renderer through a
// gRPC-Web bridge on the same loopback port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Options configures the listener.
type Options struct {
	Host string
	Port int // 0 = dynamic
	// AllowedOrigins are browser origins allowed besides loopback and file
	// pages.
	AllowedOrigins []string
	// Listener overrides Host and Port.
	Listener net.Listener
	Logger   *slog.Logger
}

// Server is the host's command channel server.
type Server struct {
	grpcServer *grpc.Server
	webServer  *grpcweb.WrappedGrpcServer
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new server listening on the configured address.
// Pass port 0 for dynamic allocation.
func New(commands Commands, source EventSource, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}

	listener := opts.Listener
	if listener == nil {
		var err error
		addr := net.JoinHostPort(host, strconv.Itoa(opts.Port))
		listener, err = (&net.ListenConfig{}).Listen(context.TODO(), "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to listen: %w", err)
		}
	}

	srv := &Server{
		listener: listener,
		logger:   logger,
		done:     make(chan struct{}),
	}

	srv.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(srv.logUnary))
	RegisterCommandServiceServer(srv.grpcServer, &commandService{
		commands: commands,
		events:   source,
		done:     srv.done,
		logger:   logger,
	})

	allowed := append([]string(nil), opts.AllowedOrigins...)
	srv.webServer = grpcweb.WrapServer(srv.grpcServer,
		grpcweb.WithOriginFunc(func(origin string) bool { return AllowOrigin(origin, allowed) }),
	)
	srv.httpServer = &http.Server{
		Handler:           h2c.NewHandler(srv, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Port returns the port the server is listening on, or 0 for non-TCP listeners.
func (s *Server) Port() int {
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// ServeHTTP routes gRPC-Web (including CORS preflight) to the bridge and
// native gRPC over HTTP/2 to the gRPC server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case s.webServer.IsGrpcWebRequest(r) || s.webServer.IsAcceptableGrpcCorsRequest(r):
		s.webServer.ServeHTTP(w, r)
	case r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc"):
		s.grpcServer.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	s.logger.Info("command channel listening", "addr", s.Addr())
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeGRPC serves native gRPC only on lis. This blocks until Stop is called.
func (s *Server) ServeGRPC(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop ends event streams and shuts the server down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("command channel shutdown timed out", "error", err)
		}
		s.grpcServer.Stop()
		_ = s.listener.Close()
	})
}

func (s *Server) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("command handled",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

// AllowOrigin reports whether a browser origin may use the bridge. Packaged
// content is loaded from file:// and sends "null"; dev servers run on
// loopback.
func AllowOrigin(origin string, extra []string) bool {
	if origin == "" || origin == "null" || strings.HasPrefix(origin, "file://") {
		return true
	}
	if slices.Contains(extra, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return u.Scheme == "http" || u.Scheme == "https"
	}
	return false
}
