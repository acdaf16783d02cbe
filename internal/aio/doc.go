// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package aio is the completion-driven transport core that serves the atlas
data plane.

# Model

A Backend turns sockets into Completions: arming calls (Accept, Recv,
Send, CloseClient) return as soon as the operation is submitted, and the
result arrives later through Wait. Three backends exist behind one
interface: io_uring on Linux, an I/O completion port on Windows, and a
portable goroutine-per-operation fallback that runs anywhere and carries
the test suite.

The Engine owns a fixed pool of clients. Each client occupies one slot
for its whole connected lifetime; the slot index is the correlation key
between a completion and its client, and slots are recycled, never freed.
A single engine goroutine applies every completion, so client state needs
no locking. Parallelism lives inside the backends; only the serialized
completion stream crosses back.

# Client lifecycle

	idle -> accepting -> reading -> read_complete -> writing
	     -> write_complete -> (reading | disconnecting) -> accepting

At most one operation is outstanding per client. The inbound buffer
starts at a minimum capacity and grows by a fixed increment every time a
read fills it exactly; buffers shrink back to the minimum when a slot is
recycled. The application handler runs exactly once per request,
synchronously, when a client reaches read_complete, and must leave the
response buffer populated before returning.

# Failure policy

Transport errors use the closed taxonomy in errors.go. A completion
carrying an unrecoverable error tears down that one client and re-arms
its slot; it never stops the loop or touches other clients. Unmapped
native codes land in ErrGeneral and are logged with the operation and
slot, then treated like any other fatal-to-the-client error. Clients
stalled in reading or writing past the idle timeout are torn down by a
periodic sweep, and a rate limiter throttles how fast recycled slots
re-arm accepts.
*/
package aio
