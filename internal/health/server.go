// Package health serves liveness and readiness for slipcheck serve.
// Liveness only says the process is up; readiness runs the registered checks.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/logger"
)

// Readiness states
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

const defaultCheckTimeout = 3 * time.Second

// LiveResponse is the /live body
type LiveResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Commit  string `json:"commit,omitempty"`
	Uptime  string `json:"uptime"`
}

// ReadyResponse is the /ready body
type ReadyResponse struct {
	Status   string                 `json:"status"`
	Service  string                 `json:"service"`
	Checks   map[string]CheckResult `json:"checks"`
	Duration string                 `json:"duration"`
}

// Server answers /live and /ready on its own port so they keep answering
// while the API is saturated or draining.
type Server struct {
	serviceName  string
	version      string
	commit       string
	addr         string
	checks       []Check
	checkTimeout time.Duration
	startedAt    time.Time
	log          *logrus.Entry

	mu     sync.RWMutex
	ready  bool
	server *http.Server
}

// Config holds the configuration for the health server
type Config struct {
	ServiceName  string
	Version      string
	Commit       string
	Addr         string
	Checks       []Check
	CheckTimeout time.Duration
	Logger       *logrus.Logger
}

// NewServer creates a health server. It reports not_ready until SetReady(true).
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	return &Server{
		serviceName:  cfg.ServiceName,
		version:      cfg.Version,
		commit:       cfg.Commit,
		addr:         cfg.Addr,
		checks:       cfg.Checks,
		checkTimeout: cfg.CheckTimeout,
		startedAt:    time.Now(),
		log:          cfg.Logger.WithField("component", "health"),
	}
}

// SetReady flips the manual readiness gate, used while starting and draining
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns the manual readiness gate
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the /live and /ready routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	return mux
}

// Start binds the listener and serves in the background until ctx is done.
// Bind errors are returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.log.WithField("address", ln.Addr().String()).Info("Health server listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Health server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	return nil
}

// Shutdown stops the server; calling it before Start is a no-op
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LiveResponse{
		Status:  StatusOK,
		Service: s.serviceName,
		Version: s.version,
		Commit:  s.commit,
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results := s.runChecks(r.Context())

	status := StatusOK
	if !s.IsReady() {
		status = StatusNotReady
		results["service"] = CheckResult{Status: StatusNotReady, Critical: true}
	}
	for _, c := range results {
		if c.Status == StatusOK {
			continue
		}
		if c.Critical {
			status = StatusNotReady
		} else if status == StatusOK {
			status = StatusDegraded
		}
	}

	code := http.StatusOK
	if status == StatusNotReady {
		code = http.StatusServiceUnavailable
		s.log.WithField("checks", results).Warn("Readiness check failed")
	}

	writeJSON(w, code, ReadyResponse{
		Status:   status,
		Service:  s.serviceName,
		Checks:   results,
		Duration: time.Since(start).String(),
	})
}

// runChecks runs every check concurrently, each under its own timeout
func (s *Server) runChecks(ctx context.Context) map[string]CheckResult {
	results := make(map[string]CheckResult, len(s.checks)+1)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.checks {
		c := c
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, s.checkTimeout)
			defer cancel()
			res := c.run(checkCtx)
			mu.Lock()
			results[c.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
