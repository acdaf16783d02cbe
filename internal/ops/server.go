// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package ops

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/uranographus/internal/config"
	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/metrics"
	"github.com/tomtom215/uranographus/internal/middleware"
)

// Status is the snapshot served at /api/v1/status. Every field is
// either immutable after startup or read through its own
// synchronization, so assembling a snapshot takes no locks here.
type Status struct {
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Ready         bool    `json:"ready"`

	Engine  EngineStatus  `json:"engine"`
	Catalog CatalogStatus `json:"catalog"`
}

// EngineStatus describes the data plane's fixed configuration.
type EngineStatus struct {
	Backend  string `json:"backend"`
	PoolSize int    `json:"pool_size"`
	Addr     string `json:"addr"`
}

// CatalogStatus reports loaded catalog dimensions.
type CatalogStatus struct {
	Stars          int `json:"stars"`
	Constellations int `json:"constellations"`
}

// Server assembles the sidecar's router and listener.
type Server struct {
	cfg    config.OpsConfig
	ready  func() bool
	status func() Status
}

// New creates the sidecar. ready gates /readyz; status feeds the
// snapshot endpoint.
func New(cfg config.OpsConfig, ready func() bool, status func() Status) *Server {
	return &Server{cfg: cfg, ready: ready, status: status}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet},
			MaxAge:         300,
		}))
	}

	if s.cfg.RateLimitReqs > 0 {
		window := s.cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(s.cfg.RateLimitReqs, window))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/v1/status", s.handleStatus)

	if s.cfg.Pprof {
		r.Mount("/debug", chimiddleware.Profiler())
	}

	return r
}

// HTTPServer wraps the router in an http.Server bound to the ops
// listener address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// handleHealthz is pure liveness: answering at all is the signal.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !s.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	metrics.UpdateUptime()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("status encode failed")
	}
}
