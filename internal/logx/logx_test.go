package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHTTPMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Service: "caretrack", Env: "test", Level: "info", Format: "json"})

	var ctxLogger *slog.Logger
	h := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("%s = %q, want %q", RequestIDHeader, got, "req-123")
	}
	if ctxLogger == nil || ctxLogger == logger {
		t.Fatalf("handler should receive a request-scoped logger")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http_request" || entry["req_id"] != "req-123" || entry["path"] != "/api/clients" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
	if status, _ := entry["status"].(float64); int(status) != http.StatusTeapot {
		t.Fatalf("logged status = %v, want %d", entry["status"], http.StatusTeapot)
	}
}

func TestRedactPII(t *testing.T) {
	out, changed := RedactPII("contact ana@example.com or 555-123-4567")
	if !changed {
		t.Fatalf("RedactPII should report a change")
	}
	if out != "contact [REDACTED_EMAIL] or [REDACTED_PHONE]" {
		t.Fatalf("RedactPII() = %q", out)
	}
	for _, keep := range []string{
		"client 12 updated",
		"session started_at 2026-10-15 10:00:00 rejected",
		"ended_at 2026-10-15T11:30:00Z precedes started_at",
		"duration 120:00:00 recorded",
	} {
		if got, changed := RedactPII(keep); changed {
			t.Fatalf("RedactPII(%q) = %q, want unchanged", keep, got)
		}
	}
	if out, _ := RedactPII("call +1 (555) 123-4567 at 2026-10-15 10:00:00"); out != "call [REDACTED_PHONE] at 2026-10-15 10:00:00" {
		t.Fatalf("RedactPII() = %q", out)
	}
}

func TestLoggerRedactsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Service: "caretrack", Level: "info", Format: "json", Redact: true})
	logger.Info("store operation failed", "error", errors.New(`duplicate email "ana@example.com"`), "req_id", "12345678-1234")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["error"] != `duplicate email "[REDACTED_EMAIL]"` {
		t.Fatalf("error attr = %v, want redacted", entry["error"])
	}
	if entry["req_id"] != "12345678-1234" {
		t.Fatalf("req_id = %v, want untouched", entry["req_id"])
	}
}
