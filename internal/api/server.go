package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vistalabs/vista/pkg/config"
	"github.com/vistalabs/vista/pkg/logger"
)

// Server is the operations HTTP server. It exposes health and read-only
// inspection endpoints plus the validated settings write.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates the ops server around a configured router.
func NewServer(cfg *config.Config, router http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
