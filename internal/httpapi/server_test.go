package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/antoniostano/caretrack/internal/config"
	"github.com/antoniostano/caretrack/internal/feed"
	"github.com/antoniostano/caretrack/internal/observability"
	"github.com/antoniostano/caretrack/internal/records"
)

var metricsSeq atomic.Int64

type testServer struct {
	*httptest.Server
	store records.Store
	hub   *feed.Hub
}

func newTestServer(t *testing.T, store records.Store) *testServer {
	t.Helper()
	if store == nil {
		store = records.NewInMemoryStore()
	}
	cfg := config.Config{AllowAnyOrigin: true}
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%d", metricsSeq.Add(1)))
	hub := feed.NewHub(8)
	srv := New(cfg, store, hub, metrics, nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: store, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func expectStatus(t *testing.T, res *http.Response, want int) {
	t.Helper()
	if res.StatusCode != want {
		body, _ := io.ReadAll(res.Body)
		t.Fatalf("%s %s status = %d, want %d (body %s)", res.Request.Method, res.Request.URL.Path, res.StatusCode, want, body)
	}
}

func decodeBody(t *testing.T, res *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type unreachableStore struct {
	*records.InMemoryStore
}

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, nil)
	expectStatus(t, ts.do(t, http.MethodGet, "/healthz", nil), http.StatusOK)

	res := ts.do(t, http.MethodGet, "/readyz", nil)
	expectStatus(t, res, http.StatusOK)
	var payload map[string]any
	decodeBody(t, res, &payload)
	if payload["status"] != "ready" {
		t.Fatalf("status = %v, want ready", payload["status"])
	}

	down := newTestServer(t, unreachableStore{records.NewInMemoryStore()})
	expectStatus(t, down.do(t, http.MethodGet, "/readyz", nil), http.StatusServiceUnavailable)
}

func TestUIRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.do(t, http.MethodGet, "/", nil)
	expectStatus(t, res, http.StatusOK)
	var body bytes.Buffer
	if _, err := body.ReadFrom(res.Body); err != nil {
		t.Fatalf("reading / body failed: %v", err)
	}
	if !strings.Contains(body.String(), `id="app"`) {
		t.Fatalf("GET / body missing expected content")
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/app.js", nil), http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)
	res := ts.do(t, http.MethodOptions, "/api/clients", nil)
	expectStatus(t, res, http.StatusNoContent)
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/clients", nil), http.StatusOK)

	res := ts.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, res, http.StatusOK)
	raw, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(raw), "http_requests_total") {
		t.Fatalf("metrics output missing http_requests_total")
	}
}
