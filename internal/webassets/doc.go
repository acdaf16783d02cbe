// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package webassets serves the browser-side atlas: the index page, the
// canvas glue scripts and the stylesheet. Assets are compiled into the
// binary; an optional override directory is checked first and watched
// with fsnotify so frontend edits show up without a restart.
package webassets
