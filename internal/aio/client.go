// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import "time"

// ClientState is a client slot's position in its lifecycle. Transitions
// are driven only by completions the engine applies, with one exception:
// the application handler runs synchronously when a client reaches
// StateReadComplete.
type ClientState uint8

const (
	// StateIdle is the transient initial state before the first accept
	// is armed, and the parking state for slots waiting on the accept
	// rate limiter.
	StateIdle ClientState = iota

	// StateAccepting waits for a connection to land in the slot.
	StateAccepting

	// StateReading accumulates request bytes; a recv is outstanding.
	StateReading

	// StateReadComplete holds a full request; the handler runs here.
	StateReadComplete

	// StateWriting flushes the response; a send is outstanding.
	StateWriting

	// StateWriteComplete has flushed the full response and decides
	// between another request and teardown.
	StateWriteComplete

	// StateDisconnecting waits for the socket teardown to finish before
	// the slot is recycled.
	StateDisconnecting
)

// String returns the snake_case state name used in logs and the status
// endpoint.
func (s ClientState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccepting:
		return "accepting"
	case StateReading:
		return "reading"
	case StateReadComplete:
		return "read_complete"
	case StateWriting:
		return "writing"
	case StateWriteComplete:
		return "write_complete"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Client is one slot in the engine's fixed pool. It lives for the whole
// process; connections pass through it and leave it recycled. All fields
// belong to the engine goroutine.
type Client struct {
	slot  int32
	state ClientState

	// in accumulates the request. Its length is the bytes received so
	// far and its capacity is the current buffer size; the free tail is
	// the landing zone for the outstanding recv.
	in []byte

	// out holds response bytes not yet acknowledged by the transport.
	out []byte

	keepAlive bool

	// started marks the first activity of the current request, for
	// latency accounting. lastActivity feeds the idle sweep.
	started      time.Time
	lastActivity time.Time
}

func newClient(slot int32, bufMin int) *Client {
	return &Client{
		slot: slot,
		in:   make([]byte, 0, bufMin),
		out:  make([]byte, 0, bufMin),
	}
}

// Slot returns the client's pool index.
func (c *Client) Slot() int32 { return c.slot }

// State returns the client's current lifecycle state.
func (c *Client) State() ClientState { return c.state }

// recvWindow returns the free tail of the inbound buffer, the target of
// the next recv.
func (c *Client) recvWindow() []byte {
	return c.in[len(c.in):cap(c.in)]
}

// applyRecv accounts n freshly received bytes and reports whether the
// buffer is now exactly full, which is the grow-and-keep-reading
// condition rather than end-of-request.
func (c *Client) applyRecv(n int) (full bool) {
	c.in = c.in[:len(c.in)+n]
	return len(c.in) == cap(c.in)
}

// growInbound raises the inbound capacity by exactly increment,
// preserving accumulated bytes.
func (c *Client) growInbound(increment int) {
	grown := make([]byte, len(c.in), cap(c.in)+increment)
	copy(grown, c.in)
	c.in = grown
}

// applySend drops n acknowledged bytes, shifting any unsent tail to the
// buffer front, and reports whether the response is fully flushed.
func (c *Client) applySend(n int) (done bool) {
	if n >= len(c.out) {
		c.out = c.out[:0]
		return true
	}
	rem := copy(c.out, c.out[n:])
	c.out = c.out[:rem]
	return false
}

// resetForNextRequest truncates both buffers for the next request on the
// same connection. Capacity is kept; only a full slot recycle shrinks.
func (c *Client) resetForNextRequest() {
	c.in = c.in[:0]
	c.out = c.out[:0]
	c.started = time.Time{}
}

// resetForReuse returns the slot to its pristine shape for a new
// connection, shrinking any grown buffer back to the minimum capacity so
// one oversized request cannot inflate the pool forever.
func (c *Client) resetForReuse(bufMin int) {
	if cap(c.in) > bufMin {
		c.in = make([]byte, 0, bufMin)
	} else {
		c.in = c.in[:0]
	}
	if cap(c.out) > bufMin {
		c.out = make([]byte, 0, bufMin)
	} else {
		c.out = c.out[:0]
	}
	c.keepAlive = false
	c.started = time.Time{}
	c.lastActivity = time.Time{}
	c.state = StateIdle
}
