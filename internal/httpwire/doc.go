// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package httpwire frames HTTP/1.1 messages over raw byte buffers without
copying.

The completion engine accumulates each request into a single per-client
buffer and hands the full slice to this package. Request and Response are
read-only views: every accessor returns a subslice of the original buffer,
so the views are only valid while the underlying buffer is. Header lookup
scans on each call rather than building a map, which keeps the hot path
allocation-free for the handful of headers the atlas cares about.

ResponseWriter appends directly to a caller-provided buffer in wire order:
status line, header lines, blank line, body, and a final blank line after
the body. Headers are refused once body bytes have been appended. Bodies
are always paired with an explicit Content-Length by the handlers, so the
trailing blank line never bleeds into a parsed body.

The package has no opinion on routing or sockets; it is shared by the
server's dispatch layer and by tests that replay captured wire bytes.
*/
package httpwire
