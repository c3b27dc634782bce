// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/premia/internal/api/handler"
	"github.com/newthinker/premia/internal/api/job"
	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/metrics"
	"github.com/newthinker/premia/internal/screen"
)

// Server represents the HTTP server for premia
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	jobs       *job.Store
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, screener *screen.Screener, registry *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	jobTTL := time.Duration(cfg.Server.JobTTLHours) * time.Hour
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
		jobs:   job.NewStore(cfg.Server.MaxJobs, jobTTL),
	}

	s.setupRoutes(cfg, screener, registry)

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg *config.Config, screener *screen.Screener, registry *metrics.Registry) {
	scanHandler := handler.NewScanHandler(s.jobs, screener, cfg.Screen)
	if registry != nil {
		scanHandler.SetMetrics(registry)
	}
	expirationsHandler := handler.NewExpirationsHandler()

	s.mux.HandleFunc("/api/scan", scanHandler.Route)
	s.mux.HandleFunc("/api/scan/", scanHandler.Route)
	s.mux.HandleFunc("/api/chart/", scanHandler.GetChart)
	s.mux.HandleFunc("/api/expirations", expirationsHandler.List)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if registry != nil && cfg.Metrics.Enabled {
		s.mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(
			registry.Registry, promhttp.HandlerOpts{}))
	}

	if registry != nil {
		s.httpServer.Handler = metrics.HTTPMiddleware(registry)(s.mux)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
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
