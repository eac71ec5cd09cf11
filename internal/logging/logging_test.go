package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"nonsense", log.InfoLevel},
		{"", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromContext(t *testing.T) {
	l := New(&bytes.Buffer{}, log.InfoLevel)
	ctx := WithLogger(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Error("expected logger from context")
	}
	if got := FromContext(context.Background()); got != log.Default() {
		t.Error("expected default logger for empty context")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.InfoLevel)

	var sawLogger bool
	handler := chiMiddleware.RequestID(RequestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = FromContext(r.Context()) != log.Default()
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !sawLogger {
		t.Error("expected request-scoped logger in context")
	}
	out := buf.String()
	for _, want := range []string{"request", "/api/v1/health", "418", "request_id"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got %q", want, out)
		}
	}
}
