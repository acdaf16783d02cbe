// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package wasmhost loads the compiled starfield projection module for
// delivery to browsers. The module is compiled through wazero at load
// time purely as validation: a module that does not compile, or that is
// missing a required export, is rejected before it can reach a client.
// The projection math itself runs in the browser, never on the server.
package wasmhost
