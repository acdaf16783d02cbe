// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package supervisor provides Suture-based process supervision for the
// atlas. The tree isolates failures into three layers: watchers (asset
// and wasm reload), the data-plane engine, and the ops sidecar, so a
// crashing file watcher never interrupts serving and a wedged sidecar
// never takes the data plane down.
package supervisor
