package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/k8poc/backend/internal/logger"
)

// HTTPServer runs an http.Server on its own goroutine and shuts it down gracefully.
type HTTPServer struct {
	name            string
	srv             *http.Server
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPServer creates an HTTPServer listening on port. name only labels log lines.
func NewHTTPServer(name string, port int, handler http.Handler, readTimeout, writeTimeout, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		name: name,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Start binds the listener, so a busy port fails startup, and serves in the background.
func (s *HTTPServer) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("%s server: failed to listen on %s: %w", s.name, s.srv.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logger.Infof("%s server listening on %s", s.name, ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("%s server stopped unexpectedly: %v", s.name, err)
		}
	}()
	return nil
}

// Stop drains in-flight requests, bounded by the shutdown timeout and ctx.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	logger.Infof("Shutting down %s server...", s.name)
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s server: graceful shutdown failed: %w", s.name, err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}
