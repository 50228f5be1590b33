package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Level(t *testing.T) {
	logger := New("impact", "debug", "json")
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}

	logger = New("impact", "not-a-level", "json")
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("invalid level should fall back to info, got %v", logger.GetLevel())
	}
}

func TestNew_Format(t *testing.T) {
	if _, ok := New("impact", "info", "text").Formatter.(*logrus.TextFormatter); !ok {
		t.Error("text format should use TextFormatter")
	}
	if _, ok := New("impact", "info", "").Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("default format should use JSONFormatter")
	}
}

func TestWithContext_TraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("impact", "info", "json")
	logger.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.WithContext(ctx).Info("hello")

	entry := decodeLine(t, &buf)
	if entry["trace_id"] != "trace-123" {
		t.Errorf("trace_id = %v, want trace-123", entry["trace_id"])
	}
	if entry["service"] != "impact" {
		t.Errorf("service = %v, want impact", entry["service"])
	}
}

func TestWithContext_NoTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("impact", "info", "json")
	logger.SetOutput(&buf)

	logger.WithContext(context.Background()).Info("hello")

	entry := decodeLine(t, &buf)
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id should be absent when context has none")
	}
}

func TestLogRequest_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusTooManyRequests, "warning"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := New("impact", "info", "json")
		logger.SetOutput(&buf)

		logger.LogRequest(context.Background(), RequestLog{
			Method:   http.MethodGet,
			Path:     "/api/environmental-stats",
			Status:   tt.status,
			Bytes:    42,
			Duration: 15 * time.Millisecond,
		})

		entry := decodeLine(t, &buf)
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, entry["level"], tt.level)
		}
		if entry["status"] != float64(tt.status) {
			t.Errorf("status field = %v, want %d", entry["status"], tt.status)
		}
		if entry["duration_ms"] != float64(15) {
			t.Errorf("duration_ms = %v, want 15", entry["duration_ms"])
		}
		if entry["bytes"] != float64(42) {
			t.Errorf("bytes = %v, want 42", entry["bytes"])
		}
		if _, ok := entry["route"]; ok {
			t.Error("route should be absent when no route matched")
		}
	}
}

func TestLogRequest_Route(t *testing.T) {
	var buf bytes.Buffer
	logger := New("impact", "info", "json")
	logger.SetOutput(&buf)

	logger.LogRequest(context.Background(), RequestLog{
		Method: http.MethodGet,
		Path:   "/api/environmental-stats",
		Route:  "/api/environmental-stats",
		Status: http.StatusOK,
	})

	entry := decodeLine(t, &buf)
	if entry["route"] != "/api/environmental-stats" {
		t.Errorf("route = %v, want /api/environmental-stats", entry["route"])
	}
}

func TestLogSecurityEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := New("impact", "info", "json")
	logger.SetOutput(&buf)

	logger.LogSecurityEvent(context.Background(), "rate_limit_exceeded", map[string]interface{}{"key": "10.0.0.1"})

	entry := decodeLine(t, &buf)
	if entry["event"] != "rate_limit_exceeded" || entry["key"] != "10.0.0.1" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewTraceID(t *testing.T) {
	id := NewTraceID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewTraceID() = %q, not a UUID: %v", id, err)
	}
	if id == NewTraceID() {
		t.Error("NewTraceID() should be unique")
	}
}

func TestGetTraceID_Empty(t *testing.T) {
	if got := GetTraceID(context.Background()); got != "" {
		t.Errorf("GetTraceID() = %q, want empty", got)
	}
}
