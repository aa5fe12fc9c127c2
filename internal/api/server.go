package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/config"
)

// Server wraps the API http.Server
type Server struct {
	server *http.Server
	log    *logrus.Entry
}

// NewServer creates an API server listening on cfg.Address
func NewServer(cfg config.ServerConfig, handler http.Handler, log *logrus.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		},
		log: log.WithField("component", "api"),
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.WithField("address", s.server.Addr).Info("API server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
