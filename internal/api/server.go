package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/valuator/internal/api/handler/api"
	"github.com/newthinker/valuator/internal/api/job"
	"github.com/newthinker/valuator/internal/api/middleware"
	"github.com/newthinker/valuator/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the valuation API
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MaxJobs     int
	JobTTL      time.Duration
	Workers     int
	MetricsPath string // Empty disables the exposition endpoint
}

// Dependencies holds what the handlers serve.
type Dependencies struct {
	Analyst handler.Analyst
	Metrics *metrics.Registry // Optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Analyst == nil {
		return nil, fmt.Errorf("analyst is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	h = metrics.LoggingMiddleware(logger)(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // Analyses wait on the provider
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	jobs := job.NewStore(cfg.MaxJobs, cfg.JobTTL)
	analysisHandler := handler.NewAnalysisHandler(deps.Analyst, s.logger)
	batchHandler := handler.NewBatchHandler(jobs, deps.Analyst, cfg.Workers, s.logger)
	if deps.Metrics != nil {
		batchHandler.OnActiveChange(deps.Metrics.SetJobsActive)
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("GET /api/v1/analysis/{symbol}", auth(http.HandlerFunc(analysisHandler.Get)))
	s.mux.Handle("POST /api/v1/batch", auth(http.HandlerFunc(batchHandler.Create)))
	s.mux.Handle("GET /api/v1/jobs/{id}", auth(http.HandlerFunc(batchHandler.GetStatus)))

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
