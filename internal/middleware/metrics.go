// Package middleware holds the gorilla/mux middleware wrapped around the
// service routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/impact_service/internal/logging"
	"github.com/R3E-Network/impact_service/internal/metrics"
)

// TraceIDHeader carries the request trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// MetricsMiddleware tracks in-flight requests and records each completed
// request against its route template.
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.IncInFlight()
			defer metrics.DecInFlight()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			metrics.RecordHTTPRequest(r.Method, routeTemplate(r), rec.status, time.Since(start))
		})
	}
}

// LoggingMiddleware tags the request with a trace ID, echoes it in
// X-Trace-ID and writes one access-log line when the handler returns.
// An incoming X-Trace-ID is reused.
func LoggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			w.Header().Set(TraceIDHeader, traceID)
			r = r.WithContext(logging.WithTraceID(r.Context(), traceID))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			logger.LogRequest(r.Context(), logging.RequestLog{
				Method:   r.Method,
				Path:     r.URL.Path,
				Route:    routeTemplate(r),
				Status:   rec.status,
				Bytes:    rec.bytes,
				Duration: time.Since(start),
			})
		})
	}
}

// routeTemplate returns the path template of the matched mux route, or ""
// when the request did not go through a route.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return tpl
}

// statusRecorder keeps the first status a handler writes and counts the
// body bytes that follow.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}
