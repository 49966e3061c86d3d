// Package httpapi wires the HTTP and WebSocket surface described by the
// external interface: health, config, chat, and documentation-generation
// endpoints, served over h2c so the desktop client can use HTTP/2 without
// TLS on localhost.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server wraps an h2c-capable *http.Server.
type Server struct {
	httpServer *http.Server
}

// New builds a Server listening on addr (e.g. ":8080") serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: h2c.NewHandler(handler, &http2.Server{}),
		},
	}
}

// Start blocks serving until the server is shut down.
func (s *Server) Start() error {
	log.Printf("starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
