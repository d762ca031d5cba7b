package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/app"
	"github.com/ternarybob/medwire/internal/common"
)

// Server wraps the HTTP server and its routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
	logger arbor.ILogger
}

// New creates a server for the given application
func New(a *app.App) *Server {
	s := &Server{
		app:    a,
		router: http.NewServeMux(),
		logger: common.GetLogger(),
	}
	s.registerRoutes()

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the middleware-wrapped handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
