// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package main is the entry point for the Uranographus server.
//
// Uranographus serves an interactive star atlas: a packed star catalog,
// constellation boundary and asterism data, static viewer assets, and
// the client-side projection module compiled to WebAssembly.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file, environment (Koanf v2)
//  2. Catalog: packed star and constellation files loaded into memory
//  3. Assets: embedded viewer assets, optional override directory
//  4. WASM host: compile-verify the projection module (wazero)
//  5. Engine: completion-based data plane (io_uring, IOCP, or portable)
//  6. Ops sidecar: /healthz, /readyz, /metrics, status API (chi)
//
// Everything long-running sits under a suture supervisor tree; a crash
// in one layer restarts that layer without touching the rest.
//
// # Port 2000
//
// The default data port 2000 references the J2000.0 epoch that all
// catalog coordinates are referred to. The ops sidecar defaults to 2112.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the engine drains its
// completion queue and closes client sockets, the ops server gets a 10s
// drain window, and unstopped services are reported before exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/uranographus/internal/aio"
	"github.com/tomtom215/uranographus/internal/api"
	"github.com/tomtom215/uranographus/internal/catalog"
	"github.com/tomtom215/uranographus/internal/config"
	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/metrics"
	"github.com/tomtom215/uranographus/internal/ops"
	"github.com/tomtom215/uranographus/internal/supervisor"
	"github.com/tomtom215/uranographus/internal/supervisor/services"
	"github.com/tomtom215/uranographus/internal/wasmhost"
	"github.com/tomtom215/uranographus/internal/webassets"
)

// version is stamped by the build via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config not available yet; the default logger carries this.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Uranographus")
	metrics.SetAppInfo(version)

	cat, err := catalog.Load(cfg.Catalog.StarsPath, cfg.Catalog.ConstellationsPath, cfg.Catalog.MetaPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	metrics.SetCatalogSizes(
		len(cat.Stars()), len(cat.Constellations()),
		len(cat.StarsPayload()), len(cat.ConstellationsPayload()), len(cat.MetaPayload()),
	)
	logging.Info().
		Int("stars", len(cat.Stars())).
		Int("constellations", len(cat.Constellations())).
		Msg("Catalog loaded")

	assets, err := webassets.NewStore(cfg.Assets.OverrideDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize asset store")
	}
	if dir := assets.OverrideDir(); dir != "" {
		logging.Info().Str("dir", dir).Msg("Asset overrides enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The wasm host is optional: without a module path the /starfield.wasm
	// route answers 404 and the viewer falls back to server-free rendering.
	var wasmHost *wasmhost.Host
	if cfg.WASM.ModulePath != "" {
		wasmHost, err = wasmhost.New(ctx, cfg.WASM.ModulePath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load wasm module")
		}
		defer func() {
			if err := wasmHost.Close(context.Background()); err != nil {
				logging.Error().Err(err).Msg("Error closing wasm host")
			}
		}()
		logging.Info().
			Str("path", wasmHost.Path()).
			Int("bytes", len(wasmHost.Bytes())).
			Msg("WASM projection module verified")
	} else {
		logging.Info().Msg("WASM module path not set; /starfield.wasm disabled")
	}

	backend, err := aio.NewBackend(cfg.Engine.Backend, cfg.Engine.PoolSize, cfg.Engine.URingEntries)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create completion backend")
	}

	// Dispatcher accepts interfaces; a nil *Host must become a nil
	// interface or the route would dereference it.
	var module api.ModuleProvider
	if wasmHost != nil {
		module = wasmHost
	}
	dispatcher := api.NewDispatcher(cat, assets, module)

	engine := aio.NewEngine(backend, dispatcher, aio.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		PoolSize:        cfg.Engine.PoolSize,
		BufferMin:       cfg.Engine.BufferMin,
		BufferIncrement: cfg.Engine.BufferIncrement,
		WaitBatch:       cfg.Engine.WaitBatch,
		IdleTimeout:     cfg.Engine.IdleTimeout,
		SweepInterval:   cfg.Engine.SweepInterval,
		AcceptRate:      cfg.Engine.AcceptRate,
		AcceptBurst:     cfg.Engine.AcceptBurst,
	})

	// Bind before the tree starts so port conflicts fail fast instead of
	// looping through supervisor restarts.
	if err := engine.Listen(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to bind data plane listener")
	}
	// The native backends hold raw sockets and expose no net.Addr.
	dataAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if a := engine.Addr(); a != nil {
		dataAddr = a.String()
	}
	logging.Info().
		Str("addr", dataAddr).
		Str("backend", cfg.Engine.Backend).
		Int("pool_size", cfg.Engine.PoolSize).
		Msg("Data plane listening")

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddEngineService(engine)

	if assets.OverrideDir() != "" {
		tree.AddWatcherService(webassets.NewWatcher(assets))
		logging.Info().Msg("Asset watcher added to supervisor tree")
	}
	if wasmHost != nil && cfg.WASM.Watch {
		tree.AddWatcherService(wasmhost.NewWatcher(wasmHost))
		logging.Info().Msg("WASM watcher added to supervisor tree")
	}

	if cfg.Ops.Enabled {
		opsServer := ops.New(cfg.Ops,
			func() bool { return true },
			func() ops.Status {
				return ops.Status{
					Version:       version,
					UptimeSeconds: metrics.Uptime().Seconds(),
					Ready:         true,
					Engine: ops.EngineStatus{
						Backend:  cfg.Engine.Backend,
						PoolSize: cfg.Engine.PoolSize,
						Addr:     dataAddr,
					},
					Catalog: ops.CatalogStatus{
						Stars:          len(cat.Stars()),
						Constellations: len(cat.Constellations()),
					},
				}
			})
		httpServer := opsServer.HTTPServer()
		tree.AddOpsService(services.NewHTTPServerService(httpServer, 10*time.Second))
		logging.Info().Str("addr", httpServer.Addr).Msg("Ops sidecar added to supervisor tree")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
