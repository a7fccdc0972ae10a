// Package server implements the greeting HTTP server
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hello-eks/internal/config"
	"hello-eks/internal/logging"
	"hello-eks/internal/telemetry"
	"hello-eks/internal/version"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	version version.Info
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
}

// New creates a new server instance with its route table
func New(cfg *config.Config, versionInfo version.Info) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	s := &Server{
		config:  cfg,
		version: versionInfo,
	}

	mux := http.NewServeMux()

	// The only route. Other paths get the mux's 404 and other methods on /
	// get its 405.
	mux.HandleFunc("GET /{$}", s.handleRoot)

	s.handler = s.RequestIDMiddleware(otelhttp.NewHandler(mux, telemetry.DefaultServiceName,
		otelhttp.WithSpanNameFormatter(spanName),
	))

	return s, nil
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address. Failure is reported as *BindError.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = config.DefaultPort
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Serve accepts connections on ln until the server is shut down
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ln.Close()
	}
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}

// Start binds the listener, logs the port and serves until the process is
// terminated. It returns *BindError when the port cannot be acquired.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}

	port := s.config.ListenAddr
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = fmt.Sprint(tcpAddr.Port)
	}
	logging.Info("Server is running on port %s", port)
	logging.Debug("Build %s (%s)", s.version.Version, s.version.Commit)

	return s.Serve(ln)
}

// Shutdown closes the listener and any open connections
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			logging.Warning("Failed to close HTTP server: %v", err)
		}
	}
}

func spanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}
