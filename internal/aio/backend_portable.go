// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
)

// opToken guards one armed operation. Whoever wins the claim delivers
// the result; the loser stays silent. done closes only after the
// underlying socket call has fully returned, so waiting on it proves no
// stale operation can still touch the buffers it was given.
type opToken struct {
	resumed atomic.Bool
	done    chan struct{}
}

func (t *opToken) claim() bool {
	return t.resumed.CompareAndSwap(false, true)
}

// portableBackend services operations with one goroutine per armed call
// over net.Conn sockets. It is the correctness baseline the native
// backends are measured against, and the backend the test suite runs on.
type portableBackend struct {
	completions chan Completion
	done        chan struct{}

	mu     sync.Mutex
	ln     net.Listener
	conns  []net.Conn
	tokens []*opToken
	closed bool
}

func newPortableBackend(poolSize int) *portableBackend {
	return &portableBackend{
		// One outstanding operation per slot plus one close completion
		// per slot bounds the queue, so posts never block the engine.
		completions: make(chan Completion, 2*poolSize),
		done:        make(chan struct{}),
		conns:       make([]net.Conn, poolSize),
		tokens:      make([]*opToken, poolSize),
	}
}

func (b *portableBackend) Listen(host string, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listen on %s:%d: %w", host, port, err)
	}
	b.mu.Lock()
	b.ln = ln
	b.mu.Unlock()
	return nil
}

// Addr returns the bound listener address, useful when listening on an
// ephemeral port.
func (b *portableBackend) Addr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ln == nil {
		return nil
	}
	return b.ln.Addr()
}

func (b *portableBackend) arm(slot int32) *opToken {
	tok := &opToken{done: make(chan struct{})}
	b.mu.Lock()
	b.tokens[slot] = tok
	b.mu.Unlock()
	return tok
}

func (b *portableBackend) post(c Completion) {
	select {
	case b.completions <- c:
	case <-b.done:
	}
}

func (b *portableBackend) Accept(slot int32) error {
	b.mu.Lock()
	ln := b.ln
	b.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("%w: accept armed before listen", ErrNotConnected)
	}

	tok := b.arm(slot)
	go func() {
		defer close(tok.done)
		conn, err := ln.Accept()
		if !tok.claim() {
			if conn != nil {
				conn.Close()
			}
			return
		}
		if err != nil {
			b.post(Completion{Slot: slot, Op: OpAccept, Err: mapPortableErr(err)})
			return
		}
		b.mu.Lock()
		b.conns[slot] = conn
		b.mu.Unlock()
		b.post(Completion{Slot: slot, Op: OpAccept})
	}()
	return nil
}

func (b *portableBackend) Recv(slot int32, buf []byte) error {
	conn := b.conn(slot)
	if conn == nil {
		return fmt.Errorf("%w: recv on slot %d without socket", ErrNotConnected, slot)
	}

	tok := b.arm(slot)
	go func() {
		defer close(tok.done)
		n, err := conn.Read(buf)
		if !tok.claim() {
			return
		}
		if n > 0 {
			// Deliver the bytes; a terminal condition will surface on
			// the next recv.
			b.post(Completion{Slot: slot, Op: OpRecv, N: n})
			return
		}
		if err == nil {
			err = io.EOF
		}
		b.post(Completion{Slot: slot, Op: OpRecv, Err: mapPortableErr(err)})
	}()
	return nil
}

func (b *portableBackend) Send(slot int32, buf []byte) error {
	conn := b.conn(slot)
	if conn == nil {
		return fmt.Errorf("%w: send on slot %d without socket", ErrNotConnected, slot)
	}

	tok := b.arm(slot)
	go func() {
		defer close(tok.done)
		n, err := conn.Write(buf)
		if !tok.claim() {
			return
		}
		b.post(Completion{Slot: slot, Op: OpSend, N: n, Err: mapPortableErr(err)})
	}()
	return nil
}

func (b *portableBackend) CloseClient(slot int32) error {
	b.mu.Lock()
	tok := b.tokens[slot]
	conn := b.conns[slot]
	b.conns[slot] = nil
	b.mu.Unlock()

	// Consume any outstanding operation so it cannot deliver after the
	// teardown, then close the socket to unblock it.
	if tok != nil {
		tok.claim()
	}
	go func() {
		var err error
		if conn != nil {
			err = conn.Close()
		}
		if tok != nil {
			// The close completion is the engine's licence to recycle
			// the slot's buffers, so it must not arrive while a stale
			// read could still land in them.
			<-tok.done
		}
		b.post(Completion{Slot: slot, Op: OpClose, Err: mapPortableErr(err)})
	}()
	return nil
}

func (b *portableBackend) Wait(out []Completion, block bool) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}

	n := 0
	if block {
		select {
		case c := <-b.completions:
			out[0] = c
			n = 1
		case <-b.done:
			return 0, fmt.Errorf("%w: backend closed", ErrOpAborted)
		}
	} else {
		select {
		case c := <-b.completions:
			out[0] = c
			n = 1
		default:
			return 0, ErrWouldBlock
		}
	}

	for n < len(out) {
		select {
		case c := <-b.completions:
			out[n] = c
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (b *portableBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	close(b.done)
	for _, tok := range b.tokens {
		if tok != nil {
			tok.claim()
		}
	}
	if b.ln != nil {
		b.ln.Close()
	}
	for i, conn := range b.conns {
		if conn != nil {
			conn.Close()
			b.conns[i] = nil
		}
	}
	return nil
}

func (b *portableBackend) conn(slot int32) net.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conns[slot]
}

// mapPortableErr folds net-layer errors into the closed taxonomy.
func mapPortableErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, io.EOF):
		return ErrDisconnected
	case errors.Is(err, net.ErrClosed):
		return ErrOpAborted
	case errors.Is(err, syscall.ECONNRESET):
		return ErrConnReset
	case errors.Is(err, syscall.ECONNABORTED):
		return ErrConnAborted
	case errors.Is(err, syscall.EPIPE), errors.Is(err, syscall.ESHUTDOWN):
		return ErrDisconnected
	case errors.Is(err, syscall.ENETDOWN):
		return ErrNetworkDown
	case errors.Is(err, syscall.ENETRESET):
		return ErrNetworkReset
	case errors.Is(err, syscall.ENOTCONN):
		return ErrNotConnected
	case errors.Is(err, syscall.ETIMEDOUT):
		return ErrTimedOut
	case errors.Is(err, syscall.ECANCELED):
		return ErrOpAborted
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ErrTimedOut
	}
	return fmt.Errorf("%w: %v", ErrGeneral, err)
}
