package httpapi

import (
	"net/http"

	"github.com/R3E-Network/impact_service/internal/httputil"
)

// =============================================================================
// HTTP Handlers
// =============================================================================

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	httputil.WriteText(w, http.StatusOK, RootBanner)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceID,
		"version": Version,
	})
}

func (s *Service) handleEnvironmentalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.EnvironmentalStats(r.Context())
	if err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("Error in /api/environmental-stats")
		httputil.InternalError(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
