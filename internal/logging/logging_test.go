package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "prod").Info("plan stored", "plan_id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["plan_id"] != "abc" {
		t.Errorf("Expected plan_id attribute, got %v", entry)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "dev")

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("LogsRequest", func(t *testing.T) {
		buf.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/bmi?value=22", nil))

		out := buf.String()
		if !strings.Contains(out, "status_code=418") || !strings.Contains(out, "path=/v1/bmi") {
			t.Errorf("Unexpected log line: %s", out)
		}
	})

	t.Run("SkipsHealth", func(t *testing.T) {
		buf.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		if buf.Len() != 0 {
			t.Errorf("Expected no log for /health, got %s", buf.String())
		}
	})
}
