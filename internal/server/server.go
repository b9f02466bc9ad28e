// Package server provides the HTTP REST API for candidate analysis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theduardomaciel/projeto-ia/internal/config"
	"github.com/theduardomaciel/projeto-ia/internal/db"
	"github.com/theduardomaciel/projeto-ia/internal/observability"
	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Analyzer runs one analysis
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*types.AnalysisResult, error)
}

// Store persists analysis results. *db.DB implements it.
type Store interface {
	SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*db.StoredAnalysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]db.AnalysisSummary, error)
}

// Config holds server configuration
type Config struct {
	Port             int
	CORSAllowOrigins string
	RateLimitPerMin  int
	MaxUploadMB      int64
	ShutdownTimeout  time.Duration
}

// ConfigFromEnv takes the server settings from the process configuration
func ConfigFromEnv(env config.Env) Config {
	return Config{
		Port:             env.Port,
		CORSAllowOrigins: env.CORSAllowOrigins,
		RateLimitPerMin:  env.RateLimitPerMin,
		MaxUploadMB:      env.MaxUploadMB,
		ShutdownTimeout:  env.ShutdownTimeout,
	}
}

// Deps are the collaborators the handlers call into
type Deps struct {
	Analyzer    Analyzer
	Skills      *config.SkillsConfig
	Store       Store // optional
	LLMProvider string
	Logger      *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	analyzer   Analyzer
	skills     *config.SkillsConfig
	store      Store
	provider   string
	logger     *slog.Logger
	router     http.Handler
	httpServer *http.Server
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("server requires an analyzer")
	}
	if deps.Skills == nil {
		return nil, errors.New("server requires the skills dictionary")
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 30
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		analyzer: deps.Analyzer,
		skills:   deps.Skills,
		store:    deps.Store,
		provider: deps.LLMProvider,
		logger:   logger,
	}
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for LLM-backed analyses
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with every middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogging)
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: ParseOrigins(s.cfg.CORSAllowOrigins),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)
		api.Get("/skills", s.handleSkills)

		api.Group(func(limited chi.Router) {
			limited.Use(httprate.LimitByIP(s.cfg.RateLimitPerMin, time.Minute))
			limited.Post("/analyze", s.handleAnalyze)
			limited.Post("/analyze/stream", s.handleAnalyzeStream)
		})

		api.Get("/analyses", s.handleListAnalyses)
		api.Get("/analyses/{id}", s.handleGetAnalysis)
	})
	return r
}

// ParseOrigins splits a comma-separated origin list. An empty list allows
// every origin.
func ParseOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Start listens for requests until ctx is cancelled or the process receives
// SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "llm_provider", s.provider, "persistence", s.store != nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response with the status mapped from err
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
