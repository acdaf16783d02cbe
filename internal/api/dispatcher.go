// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package api

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/uranographus/internal/catalog"
	"github.com/tomtom215/uranographus/internal/httpwire"
	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/metrics"
	"github.com/tomtom215/uranographus/internal/webassets"
)

// AssetProvider resolves request paths to static assets.
type AssetProvider interface {
	Lookup(path string) (webassets.Asset, bool)
}

// ModuleProvider serves the verified projection module bytes.
type ModuleProvider interface {
	Bytes() []byte
}

// Dispatcher implements aio.Handler over the atlas's route table.
//
// Everything it serves is immutable or swap-on-reload, so a single
// instance is shared by however many engine loops exist without
// locking on the request path.
type Dispatcher struct {
	catalog *catalog.Catalog
	assets  AssetProvider
	wasm    ModuleProvider
	log     zerolog.Logger
}

// NewDispatcher builds the dispatcher. wasm may be nil when module
// delivery is disabled; /starfield.wasm then answers 404.
func NewDispatcher(cat *catalog.Catalog, assets AssetProvider, wasm ModuleProvider) *Dispatcher {
	return &Dispatcher{
		catalog: cat,
		assets:  assets,
		wasm:    wasm,
		log:     logging.With().Str("component", "dispatch").Logger(),
	}
}

// HandleRequest parses one request from in and appends the full
// response to out, reporting whether the connection should stay open.
func (d *Dispatcher) HandleRequest(in, out []byte) ([]byte, bool) {
	start := time.Now()

	req, err := httpwire.ParseRequest(in)
	if err != nil {
		// Nothing trustworthy to echo back; answer 400 and drop the
		// connection rather than trying to resync mid-stream.
		resp := d.respondError(out, httpwire.StatusBadRequest)
		d.record("", "malformed", httpwire.StatusBadRequest, len(resp), start)
		return resp, false
	}

	method := string(req.Method())
	path := string(req.Path())
	keepAlive := req.KeepAlive()
	head := method == "HEAD"

	if method != "GET" && !head {
		resp := d.respondMethodNotAllowed(out, keepAlive)
		d.record(method, routeLabel(path), httpwire.StatusMethodNotAllowed, len(resp), start)
		return resp, keepAlive
	}

	status, route, body, contentType := d.route(path)
	resp := d.respond(out, status, contentType, body, head, keepAlive)
	d.record(method, route, status, len(resp), start)
	return resp, keepAlive
}

// route resolves a path to its payload. The catalog payloads are the
// pre-marshaled startup bytes; only asset lookups touch anything that
// can change at runtime.
func (d *Dispatcher) route(path string) (status int, route string, body []byte, contentType string) {
	switch path {
	case "/stars":
		return httpwire.StatusOK, "stars", d.catalog.StarsPayload(), "application/octet-stream"
	case "/constellations":
		return httpwire.StatusOK, "constellations", d.catalog.ConstellationsPayload(), "application/octet-stream"
	case "/constellations/meta":
		return httpwire.StatusOK, "constellations_meta", d.catalog.MetaPayload(), "application/json"
	case "/starfield.wasm":
		if d.wasm == nil {
			return httpwire.StatusNotFound, "wasm", nil, ""
		}
		if b := d.wasm.Bytes(); len(b) > 0 {
			return httpwire.StatusOK, "wasm", b, "application/wasm"
		}
		return httpwire.StatusNotFound, "wasm", nil, ""
	}

	if a, ok := d.assets.Lookup(path); ok {
		return httpwire.StatusOK, routeLabel(path), a.Body, a.ContentType
	}
	return httpwire.StatusNotFound, "asset", nil, ""
}

func (d *Dispatcher) respond(out []byte, status int, contentType string, body []byte, head, keepAlive bool) []byte {
	if status != httpwire.StatusOK {
		return d.respondStatus(out, status, keepAlive)
	}

	w := httpwire.NewResponseWriter(out)
	w.WriteStatus(status)                                    //nolint:errcheck // fresh writer
	w.WriteHeader("Content-Type", contentType)               //nolint:errcheck // headers open
	w.WriteHeader("Content-Length", strconv.Itoa(len(body))) //nolint:errcheck // headers open
	w.WriteHeader("Connection", connectionValue(keepAlive))  //nolint:errcheck // headers open
	if !head {
		w.Write(body) //nolint:errcheck // append cannot fail
	}
	return w.Finish()
}

// respondStatus answers an error status with a short plain-text body.
// HEAD is not special-cased here; the bodies are a handful of bytes.
func (d *Dispatcher) respondStatus(out []byte, status int, keepAlive bool) []byte {
	body := httpwire.StatusText(status)
	w := httpwire.NewResponseWriter(out)
	w.WriteStatus(status)                                    //nolint:errcheck // fresh writer
	w.WriteHeader("Content-Type", "text/plain")              //nolint:errcheck // headers open
	w.WriteHeader("Content-Length", strconv.Itoa(len(body))) //nolint:errcheck // headers open
	w.WriteHeader("Connection", connectionValue(keepAlive))  //nolint:errcheck // headers open
	w.WriteString(body)                                      //nolint:errcheck // append cannot fail
	return w.Finish()
}

func (d *Dispatcher) respondMethodNotAllowed(out []byte, keepAlive bool) []byte {
	body := httpwire.StatusText(httpwire.StatusMethodNotAllowed)
	w := httpwire.NewResponseWriter(out)
	w.WriteStatus(httpwire.StatusMethodNotAllowed)           //nolint:errcheck // fresh writer
	w.WriteHeader("Allow", "GET, HEAD")                      //nolint:errcheck // headers open
	w.WriteHeader("Content-Type", "text/plain")              //nolint:errcheck // headers open
	w.WriteHeader("Content-Length", strconv.Itoa(len(body))) //nolint:errcheck // headers open
	w.WriteHeader("Connection", connectionValue(keepAlive))  //nolint:errcheck // headers open
	w.WriteString(body)                                      //nolint:errcheck // append cannot fail
	return w.Finish()
}

func (d *Dispatcher) respondError(out []byte, status int) []byte {
	return d.respondStatus(out, status, false)
}

func (d *Dispatcher) record(method, route string, status, bytes int, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordRequest(method, route, strconv.Itoa(status), elapsed)
	metrics.RecordResponseBytes(route, bytes)
	d.log.Debug().
		Str("method", method).
		Str("route", route).
		Int("status", status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Msg("request served")
}

// routeLabel collapses asset paths into fixed metric labels so the
// request counter's cardinality stays bounded no matter what clients
// ask for.
func routeLabel(path string) string {
	switch path {
	case "/":
		return "index"
	case "/stars":
		return "stars"
	case "/constellations":
		return "constellations"
	case "/constellations/meta":
		return "constellations_meta"
	case "/starfield.wasm":
		return "wasm"
	default:
		return "asset"
	}
}

func connectionValue(keepAlive bool) string {
	if keepAlive {
		return "keep-alive"
	}
	return "close"
}
