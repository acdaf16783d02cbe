// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package httpwire

import "errors"

var (
	// ErrMalformed marks a request or status line that cannot be framed at
	// all (missing separators, broken line endings). The dispatch layer
	// answers these with a 400.
	ErrMalformed = errors.New("malformed message")

	// ErrIncomplete marks a buffer that ends before the message does: no
	// blank-line terminator yet, or fewer body bytes than Content-Length
	// promises.
	ErrIncomplete = errors.New("incomplete message")

	// ErrBodyStarted is returned by ResponseWriter.WriteHeader once body
	// bytes have been appended; headers cannot reopen.
	ErrBodyStarted = errors.New("header written after body started")

	// ErrStatusWritten is returned by a second WriteStatus call.
	ErrStatusWritten = errors.New("status line already written")
)
