// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import "errors"

// The closed transport error taxonomy. Every native code a backend can
// see maps onto one of these sentinels; ErrGeneral is the catch-all for
// codes outside the mapping and is always logged with the operation and
// slot before the client is torn down. Only the error values below cross
// the Backend boundary, so the engine can switch on them with errors.Is
// regardless of which backend produced them.
var (
	// ErrWouldBlock reports that no completion was ready on a
	// non-blocking Wait. It is a flow signal, not a failure, and is
	// masked at the poll call site.
	ErrWouldBlock = errors.New("operation would block")

	// ErrConnReset reports a connection forcibly closed by the peer.
	ErrConnReset = errors.New("connection reset by peer")

	// ErrConnAborted reports a connection aborted on the local side
	// before it was established or while queued.
	ErrConnAborted = errors.New("connection aborted")

	// ErrDisconnected reports an orderly remote shutdown, including a
	// read completing with zero bytes.
	ErrDisconnected = errors.New("client disconnected")

	// ErrNetworkDown reports that the local network stack is down.
	ErrNetworkDown = errors.New("network is down")

	// ErrNetworkReset reports a connection dropped during a network
	// reset.
	ErrNetworkReset = errors.New("network dropped connection on reset")

	// ErrNotConnected reports an operation on a socket that is not
	// connected.
	ErrNotConnected = errors.New("socket not connected")

	// ErrTimedOut reports an operation that exceeded its transport-level
	// deadline.
	ErrTimedOut = errors.New("operation timed out")

	// ErrOpAborted reports an operation cancelled locally, usually
	// because the socket was closed while the operation was in flight.
	ErrOpAborted = errors.New("operation aborted")

	// ErrGeneral is the catch-all for native codes outside the mapping.
	// Never silently swallowed: the engine logs it with full context,
	// then treats it as fatal to the one client it belongs to.
	ErrGeneral = errors.New("transport error")
)

// fatalToClient reports whether err ends the client it belongs to.
// Everything except the would-block flow signal does.
func fatalToClient(err error) bool {
	return err != nil && !errors.Is(err, ErrWouldBlock)
}

// errorClass folds an error into its taxonomy label for metrics and
// logging. Unmapped errors report as "general".
func errorClass(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrWouldBlock):
		return "would_block"
	case errors.Is(err, ErrConnReset):
		return "conn_reset"
	case errors.Is(err, ErrConnAborted):
		return "conn_aborted"
	case errors.Is(err, ErrDisconnected):
		return "disconnected"
	case errors.Is(err, ErrNetworkDown):
		return "network_down"
	case errors.Is(err, ErrNetworkReset):
		return "network_reset"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, ErrTimedOut):
		return "timed_out"
	case errors.Is(err, ErrOpAborted):
		return "op_aborted"
	default:
		return "general"
	}
}
