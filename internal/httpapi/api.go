package httpapi

import (
	"net/http"

	"github.com/R3E-Network/impact_service/internal/metrics"
	"github.com/R3E-Network/impact_service/internal/middleware"
)

// =============================================================================
// API Routes
// =============================================================================

func (s *Service) registerRoutes(cfg Config) {
	router := s.router
	router.Use(middleware.LoggingMiddleware(s.log), middleware.MetricsMiddleware())

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if cfg.EnableMetrics {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware)
	}
	api.HandleFunc("/environmental-stats", s.handleEnvironmentalStats).Methods(http.MethodGet, http.MethodHead)
}
