// Package web provides the HTTP API and dashboard for template validation.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/metrics"
	"github.com/JonMunkholm/mrovalidate/internal/store"
	"github.com/JonMunkholm/mrovalidate/internal/web/middleware"
)

// History is the run-history store used by the server.
// Satisfied by *store.Store.
type History interface {
	SaveRun(ctx context.Context, r *core.Report) error
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	Violations(ctx context.Context, runID uuid.UUID) ([]core.Violation, error)
}

// Deps are the collaborators of a Server. History and Metrics are optional.
type Deps struct {
	Validator  *core.Validator
	Sources    core.Sources
	History    History
	Metrics    *metrics.Recorder
	Config     config.ServerConfig
	RunTimeout time.Duration
}

// Server is the HTTP server for template validation.
type Server struct {
	deps   Deps
	router *chi.Mux
	server *http.Server

	runMu sync.Mutex // held while a validation runs

	mu   sync.RWMutex
	last *core.Report
}

// NewServer creates a new Server instance.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.deps.Config.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.deps.Config.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.deps.Config.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	if s.deps.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)

		r.Post("/validate", s.handleValidate)
		r.Get("/report", s.handleReport)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}/violations", s.handleRunViolations)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	cfg := s.deps.Config
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", cfg.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// LastReport returns the report of the most recent successful run.
func (s *Server) LastReport() *core.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// SetLastReport records r as the most recent run. Used when validation runs
// outside the server, e.g. from a watcher.
func (s *Server) SetLastReport(r *core.Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// Inline styles only; the dashboard carries no scripts
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
