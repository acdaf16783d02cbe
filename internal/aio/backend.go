// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import (
	"fmt"
	"net"
)

// Op identifies which operation a Completion finishes.
type Op uint8

const (
	OpAccept Op = iota
	OpRecv
	OpSend
	OpClose
)

// String returns the lowercase operation name used in logs and metrics.
func (o Op) String() string {
	switch o {
	case OpAccept:
		return "accept"
	case OpRecv:
		return "recv"
	case OpSend:
		return "send"
	case OpClose:
		return "close"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Completion is one finished operation. Slot identifies the owning
// client, N carries the byte count for recv/send, and Err is nil or one
// of the taxonomy sentinels (possibly wrapped with native detail).
type Completion struct {
	Slot int32
	Op   Op
	N    int
	Err  error
}

// Completion user data for the native backends packs the operation, the
// slot's generation and the slot index into one uint64 (the kernel hands
// it back verbatim on io_uring; IOCP reuses the generation arithmetic).
// The generation increments when a slot's socket is closed, so a
// completion from a previous occupant of the slot can be recognized and
// discarded no matter how late it surfaces.
const (
	udOpShift  = 56
	udGenShift = 32
	udGenMask  = 0xFFFFFF
)

func packUserData(op Op, gen uint32, slot int32) uint64 {
	return uint64(op)<<udOpShift | uint64(gen&udGenMask)<<udGenShift | uint64(uint32(slot))
}

// Backend is the platform I/O strategy. Arming calls (Accept, Recv,
// Send, CloseClient) submit work and return; results surface later as
// Completions from Wait.
//
// All methods are called from the single engine goroutine. Backends may
// run internal workers, but completions must be serialized through Wait
// and each armed operation must complete exactly once, even if the
// backend delivers it to more than one internal poller.
//
// The buffer passed to Recv or Send must stay untouched by the caller
// until that operation's completion arrives.
type Backend interface {
	// Listen binds and listens on host:port. Called once, before any
	// other arming call.
	Listen(host string, port int) error

	// Accept arms an accept completion for slot. The accepted socket
	// becomes the slot's socket.
	Accept(slot int32) error

	// Recv arms a read on the slot's socket into buf.
	Recv(slot int32, buf []byte) error

	// Send arms a write of buf on the slot's socket. The completion's N
	// reports how many bytes the transport took, which may be fewer
	// than len(buf).
	Send(slot int32, buf []byte) error

	// CloseClient starts an asynchronous teardown of the slot's socket.
	// Any outstanding operation on the slot is consumed or surfaces as
	// ErrOpAborted; an OpClose completion always follows.
	CloseClient(slot int32) error

	// Wait fills out with finished operations and returns how many it
	// wrote. With block it waits for at least one; without, it returns
	// ErrWouldBlock when nothing is ready.
	Wait(out []Completion, block bool) (int, error)

	// Close tears down the listener, every client socket, and the
	// backend's own resources. No method may be called afterwards.
	Close() error
}

// NewBackend constructs the backend named by kind: "uring", "iocp",
// "portable", or "auto" for the platform default. Platform-specific
// constructors live behind build tags; asking for a backend the platform
// does not carry is an error (configuration validates this earlier, so
// hitting it here means the binary and its config disagree).
func NewBackend(kind string, poolSize, uringEntries int) (Backend, error) {
	switch kind {
	case "auto":
		return newDefaultBackend(poolSize, uringEntries)
	case "portable":
		return newPortableBackend(poolSize), nil
	case "uring", "iocp":
		return newPlatformBackend(kind, poolSize, uringEntries)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// resolveIPv4 turns a listen host into the four address bytes the native
// backends hand to the kernel. Empty means every interface.
func resolveIPv4(host string) ([4]byte, error) {
	var addr [4]byte
	if host == "" {
		return addr, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil {
			return addr, fmt.Errorf("resolve listen host %q: %w", host, err)
		}
		for _, candidate := range ips {
			if candidate.To4() != nil {
				ip = candidate
				break
			}
		}
	}
	v4 := ip.To4()
	if v4 == nil {
		return addr, fmt.Errorf("listen host %q has no IPv4 address", host)
	}
	copy(addr[:], v4)
	return addr, nil
}
