// Package api exposes the run orchestrator over a JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/logger"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/metrics"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/stream"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// MetricsPath mounts the Prometheus handler; empty disables it
	MetricsPath string
	Logger      *logrus.Logger
}

// NewRouter builds the API router. hub may be nil, which leaves the stream
// route unregistered.
func NewRouter(runs RunService, hub *stream.Hub, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	log := opts.Logger.WithField("component", "api")
	h := NewHandler(runs, hub, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, metrics.Handler())
	}

	r.Route("/api/v1/runs", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))

			r.Post("/", h.CreateRun)
			r.Get("/", h.ListRuns)
			r.Get("/{id}", h.GetRun)
			r.Post("/{id}/remove-weakest", h.RemoveWeakest)
			r.Delete("/{id}/legs/{legID}", h.RemoveLeg)
		})

		if hub != nil {
			r.Get("/{id}/stream", h.StreamRun)
		}
	})

	return r
}
