// Package httpapi serves the environmental-stats API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/impact_service/internal/impact"
	"github.com/R3E-Network/impact_service/internal/logging"
	"github.com/R3E-Network/impact_service/internal/metrics"
	"github.com/R3E-Network/impact_service/internal/middleware"
	"github.com/R3E-Network/impact_service/internal/pan"
)

const (
	ServiceID = "impact"
	Version   = "1.0.0"

	// RootBanner is the body of GET /.
	RootBanner = "Server is running. Try /api/environmental-stats for data."
)

// StatsSource authenticates against PAN and fetches commission rows.
// *pan.Client implements it.
type StatsSource interface {
	Login(ctx context.Context) (string, error)
	GetStats(ctx context.Context, sessionID string) ([]pan.Row, error)
}

// Service implements the HTTP API.
type Service struct {
	source  StatsSource
	log     *logging.Logger
	router  *mux.Router
	handler http.Handler
}

// Config holds Service dependencies.
type Config struct {
	Source         StatsSource
	Logger         *logging.Logger
	RateLimiter    *middleware.RateLimiter // optional; applies to /api routes
	AllowedOrigins []string                // CORS; empty disables CORS headers
	EnableMetrics  bool                    // expose GET /metrics
}

// New creates the service and registers its routes.
func New(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("httpapi: stats source required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewDefault(ServiceID)
	}

	s := &Service{
		source: cfg.Source,
		log:    log,
		router: mux.NewRouter(),
	}
	s.registerRoutes(cfg)

	s.handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		s.handler = middleware.NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)
	}
	return s, nil
}

// Router returns the route table.
func (s *Service) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped in the outer (CORS) middleware.
func (s *Service) Handler() http.Handler {
	return s.handler
}

// EnvironmentalStats logs into PAN, fetches the report and derives the
// impact figures. Each step consumes the previous step's result; the first
// failure is returned unchanged.
func (s *Service) EnvironmentalStats(ctx context.Context) (impact.Stats, error) {
	sessionID, err := s.source.Login(ctx)
	if err != nil {
		return impact.Stats{}, err
	}

	rows, err := s.source.GetStats(ctx, sessionID)
	if err != nil {
		return impact.Stats{}, err
	}

	stats := impact.Calculate(rows)
	metrics.RecordReport(len(rows), stats.TreesPlanted)
	return stats, nil
}
