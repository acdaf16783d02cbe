// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package ops

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/uranographus/internal/config"
)

func testServer(ready bool) *Server {
	return New(
		config.OpsConfig{Enabled: true, Host: "127.0.0.1", Port: 9100},
		func() bool { return ready },
		func() Status {
			return Status{
				Version: "test",
				Ready:   ready,
				Engine:  EngineStatus{Backend: "portable", PoolSize: 64, Addr: "127.0.0.1:2000"},
				Catalog: CatalogStatus{Stars: 3, Constellations: 1},
			}
		},
	)
}

func TestHealthzAlwaysOK(t *testing.T) {
	t.Parallel()

	router := testServer(false).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
}

func TestReadyzFollowsReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ready bool
		want  int
	}{
		{"ready", true, http.StatusOK},
		{"not ready", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testServer(tt.ready).Router()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.want {
				t.Errorf("readyz = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStatusSnapshot(t *testing.T) {
	t.Parallel()

	router := testServer(true).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("status body does not decode: %v", err)
	}
	if got.Engine.Backend != "portable" || got.Engine.PoolSize != 64 {
		t.Errorf("engine status = %+v", got.Engine)
	}
	if got.Catalog.Stars != 3 || got.Catalog.Constellations != 1 {
		t.Errorf("catalog status = %+v", got.Catalog)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	t.Parallel()

	router := testServer(true).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing standard collectors")
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	t.Parallel()

	router := testServer(true).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID header on ops response")
	}
}

func TestPprofMountedOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	withPprof := New(config.OpsConfig{Pprof: true}, func() bool { return true }, func() Status { return Status{} })
	rec := httptest.NewRecorder()
	withPprof.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code == http.StatusNotFound {
		t.Error("pprof enabled but /debug/pprof/ is 404")
	}

	without := testServer(true)
	rec = httptest.NewRecorder()
	without.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("pprof disabled but /debug/pprof/ = %d, want 404", rec.Code)
	}
}

func TestRateLimitKicksIn(t *testing.T) {
	t.Parallel()

	s := New(
		config.OpsConfig{RateLimitReqs: 2, RateLimitWindow: time.Minute},
		func() bool { return true },
		func() Status { return Status{} },
	)
	router := s.Router()

	var last int
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("fifth request = %d, want 429", last)
	}
}

func TestHTTPServerAddr(t *testing.T) {
	t.Parallel()

	srv := testServer(true).HTTPServer()
	if srv.Addr != "127.0.0.1:9100" {
		t.Errorf("Addr = %q, want 127.0.0.1:9100", srv.Addr)
	}
}
