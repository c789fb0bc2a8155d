package control

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

// Server runs the History service on the IPC socket and, optionally, on a
// TCP listener shared by gRPC and HTTP.
type Server struct {
	svc   *Service
	token string

	mu        sync.Mutex
	grpcSrvs  []*grpc.Server
	httpSrvs  []*http.Server
	listeners []net.Listener
}

// NewServer returns a Server for svc. token guards the TCP listener only.
func NewServer(svc *Service, token string) *Server {
	return &Server{svc: svc, token: token}
}

func (s *Server) track(ln net.Listener, gs *grpc.Server, hs *http.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, ln)
	if gs != nil {
		s.grpcSrvs = append(s.grpcSrvs, gs)
	}
	if hs != nil {
		s.httpSrvs = append(s.httpSrvs, hs)
	}
}

// ServeIPC serves gRPC on ln without authentication. It blocks until ln is
// closed.
func (s *Server) ServeIPC(ln net.Listener) error {
	gs := NewGRPCServer(s.svc, "")
	s.track(ln, gs, nil)
	slog.Info("IPC socket listening", "addr", ln.Addr())

	if err := gs.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve ipc: %w", err)
	}
	return nil
}

// ServeTCP multiplexes gRPC (content-type application/grpc*) and HTTP/JSON
// on ln. It blocks until ln is closed.
func (s *Server) ServeTCP(ln net.Listener) error {
	handler, err := NewHTTPHandler(s.svc, s.token)
	if err != nil {
		return fmt.Errorf("http routes: %w", err)
	}
	gs := NewGRPCServer(s.svc, s.token)
	hs := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	s.track(ln, gs, hs)

	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	go func() {
		if err := gs.Serve(grpcL); err != nil && !errors.Is(err, cmux.ErrListenerClosed) && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Error("grpc serve failed", "err", err)
		}
	}()
	go func() {
		if err := hs.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			slog.Error("http serve failed", "err", err)
		}
	}()

	slog.Info("control listener ready", "addr", ln.Addr(), "auth", s.token != "")
	if err := m.Serve(); err != nil && !isClosed(err) {
		return fmt.Errorf("serve tcp: %w", err)
	}
	return nil
}

// Stop closes every listener and stops the servers.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	for _, hs := range s.httpSrvs {
		_ = hs.Close()
	}
	for _, gs := range s.grpcSrvs {
		gs.Stop()
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, cmux.ErrListenerClosed)
}
