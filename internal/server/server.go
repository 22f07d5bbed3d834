// Package server exposes openssl invocations over HTTP.
//
// Requests and responses are JSON or CBOR. A finished openssl run is
// reported with status 200 whether or not it succeeded; the body carries
// the classification. Non-2xx statuses are reserved for requests that
// could not be run to completion.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/openssl"
)

// DefaultAddr is the address used when Addr is empty.
const DefaultAddr = "127.0.0.1:8420"

// unixPrefix marks an Addr that names a Unix socket path.
const unixPrefix = "unix:"

// Invoker starts openssl. *openssl.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, action openssl.Action, call openssl.Call) (*openssl.Process, error)
	Patterns() *openssl.Patterns
	Binary() string
}

// Server serves the HTTP API.
type Server struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:8420"), or
	// "unix:" followed by a socket path.
	Addr string

	// Client runs openssl.
	Client Invoker

	// MaxConnections caps concurrently accepted connections. Zero means
	// no cap.
	MaxConnections int

	// MaxBodyBytes caps request bodies. Zero means no cap.
	MaxBodyBytes int64

	// Token, if set, must accompany every /v1 request.
	Token string

	// Version is reported by /health.
	Version string

	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
}

// New creates a server for client listening on DefaultAddr.
func New(client Invoker) *Server {
	return &Server{
		Addr:   DefaultAddr,
		Client: client,
	}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(bodyLimit(s.MaxBodyBytes))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if s.Token != "" {
			r.Use(requireToken(s.Token))
		}
		r.Get("/actions", s.handleActions)
		r.Post("/exec", s.handleExec)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, responseCodec(r, nil), http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, responseCodec(r, nil), http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	})

	return r
}

// Start begins accepting connections.
// Returns an error if the server is already running or fails to listen.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}
	if s.Client == nil {
		return errors.New("server has no openssl client")
	}

	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := listen(addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if s.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.MaxConnections)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s.listener = listener
	s.cancel = cancel
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          log.New(clog.Writer(clog.LevelWarn), "api: ", 0),
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	s.running = true

	go func() {
		_ = s.server.Serve(listener)
	}()

	return nil
}

// Stop gracefully shuts down the server. Running openssl calls are
// terminated when ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	err := s.server.Shutdown(ctx)
	// Requests still running after the grace period lose their context,
	// which kills their openssl process.
	s.cancel()
	return err
}

// listen opens a TCP listener, or a Unix socket when addr has the "unix:"
// prefix. The socket's directory is created if needed, a stale socket is
// replaced, and the socket is made accessible to the owner only.
func listen(addr string) (net.Listener, error) {
	path, ok := strings.CutPrefix(addr, unixPrefix)
	if !ok {
		return net.Listen("tcp", addr)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, err
	}
	return listener, nil
}

// ListenAddr returns the actual address the server is listening on.
// This is useful when the server was started with port 0.
// Returns empty string if the server was never started.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	addr := s.listener.Addr()
	if addr.Network() == "unix" {
		return unixPrefix + addr.String()
	}
	return addr.String()
}
