package http

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Server wraps http.Server with sane timeouts for an API that streams
// multi-megabyte model files.
type Server struct {
	srv *http.Server
}

// NewServer creates a server for the given handler listening on addr.
func NewServer(handler http.Handler, addr string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Address returns the address the server listens on.
func (s *Server) Address() string {
	return s.srv.Addr
}

// Start runs the server and blocks until it stops. A shutdown initiated
// via Stop is not reported as an error.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully, honoring the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
