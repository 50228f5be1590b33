// Package logging provides structured logging with trace ID propagation.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// Logger wraps logrus with a fixed service field and trace-aware helpers.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a logger for the given service.
// level is any logrus level name; format is "json" (default) or "text".
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "text") {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	return &Logger{Logger: l, service: service}
}

// NewDefault creates an info-level JSON logger.
func NewDefault(service string) *Logger {
	return New(service, "info", "json")
}

// NewDiscard creates a logger that drops everything. Used by tests.
func NewDiscard(service string) *Logger {
	l := New(service, "panic", "json")
	l.SetOutput(io.Discard)
	return l
}

// Service returns the service name attached to every entry.
func (l *Logger) Service() string {
	return l.service
}

// WithContext returns an entry carrying the service name and, when present,
// the trace ID stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)
	if ctx == nil {
		return entry
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return entry.WithContext(ctx)
}

// RequestLog describes one completed HTTP request.
type RequestLog struct {
	Method   string
	Path     string
	Route    string // mux path template; empty when no route matched
	Status   int
	Bytes    int
	Duration time.Duration
}

// LogRequest writes one access-log line. 5xx logs at error level and 4xx at
// warning.
func (l *Logger) LogRequest(ctx context.Context, req RequestLog) {
	fields := logrus.Fields{
		"method":      req.Method,
		"path":        req.Path,
		"status":      req.Status,
		"bytes":       req.Bytes,
		"duration_ms": req.Duration.Milliseconds(),
	}
	if req.Route != "" {
		fields["route"] = req.Route
	}
	entry := l.WithContext(ctx).WithFields(fields)

	switch {
	case req.Status >= 500:
		entry.Error("HTTP request")
	case req.Status >= 400:
		entry.Warn("HTTP request")
	default:
		entry.Info("HTTP request")
	}
}

// LogSecurityEvent records events such as throttled clients.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, details map[string]interface{}) {
	l.WithContext(ctx).
		WithFields(logrus.Fields(details)).
		WithField("event", event).
		Warn("Security event")
}

// NewTraceID generates a new random trace ID.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
