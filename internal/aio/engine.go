// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/metrics"
)

// Handler consumes one complete inbound request and produces the bytes
// to send back.
//
// in holds the request exactly as read from the socket and is only
// valid for the duration of the call. out is the client's outbound
// scratch buffer with length zero; building the response by appending
// to it avoids a per-request allocation, but the returned slice is
// authoritative and may point elsewhere if the handler outgrew it.
// keepAlive reports whether the connection should be held open for
// another request once the response is fully written.
type Handler interface {
	HandleRequest(in, out []byte) (resp []byte, keepAlive bool)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(in, out []byte) ([]byte, bool)

func (f HandlerFunc) HandleRequest(in, out []byte) ([]byte, bool) {
	return f(in, out)
}

// Config carries the engine's runtime tuning. PoolSize must match the
// pool size the Backend was constructed with. An IdleTimeout of zero
// disables the idle sweep.
type Config struct {
	Host            string
	Port            int
	PoolSize        int
	BufferMin       int
	BufferIncrement int
	WaitBatch       int
	IdleTimeout     time.Duration
	SweepInterval   time.Duration
	AcceptRate      float64
	AcceptBurst     int
}

func (c Config) normalized() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = 64
	}
	if c.BufferMin <= 0 {
		c.BufferMin = 1024
	}
	if c.BufferIncrement <= 0 {
		c.BufferIncrement = 1024
	}
	if c.WaitBatch <= 0 {
		c.WaitBatch = 32
	}
	if c.AcceptRate <= 0 {
		c.AcceptRate = 256
	}
	if c.AcceptBurst <= 0 {
		c.AcceptBurst = 64
	}
	if c.IdleTimeout > 0 && c.SweepInterval <= 0 {
		c.SweepInterval = 10 * time.Second
	}
	return c
}

// idlePause is how long the serve loop sleeps when the completion queue
// is empty. It bounds both shutdown latency and sweep jitter.
const idlePause = time.Millisecond

// Engine multiplexes a fixed pool of client slots over a completion
// Backend. All engine state is owned by the goroutine running Serve;
// nothing here is safe for concurrent use.
type Engine struct {
	backend Backend
	handler Handler
	cfg     Config
	log     zerolog.Logger

	clients   []*Client
	limiter   *rate.Limiter
	deferred  []int32
	batch     []Completion
	listening bool
	lastSweep time.Time
}

// NewEngine wires a backend and a request handler into an engine. The
// zero values in cfg are replaced with the documented defaults.
func NewEngine(backend Backend, handler Handler, cfg Config) *Engine {
	cfg = cfg.normalized()
	e := &Engine{
		backend: backend,
		handler: handler,
		cfg:     cfg,
		log:     logging.With().Str("component", "engine").Logger(),
		clients: make([]*Client, cfg.PoolSize),
		limiter: rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst),
		batch:   make([]Completion, cfg.WaitBatch),
	}
	for i := range e.clients {
		e.clients[i] = newClient(int32(i), cfg.BufferMin)
	}
	return e
}

// Listen binds the data-plane socket. Calling it before handing the
// engine to a supervisor surfaces bind failures at startup; Serve calls
// it itself otherwise.
func (e *Engine) Listen() error {
	if e.listening {
		return nil
	}
	if err := e.backend.Listen(e.cfg.Host, e.cfg.Port); err != nil {
		return err
	}
	e.listening = true
	return nil
}

// Addr reports the bound data-plane address when the backend exposes
// one, which matters when Port was zero.
func (e *Engine) Addr() net.Addr {
	type addresser interface {
		Addr() net.Addr
	}
	if a, ok := e.backend.(addresser); ok {
		return a.Addr()
	}
	return nil
}

func (e *Engine) String() string { return "aio-engine" }

// Serve arms the accept pool and runs the completion loop until ctx is
// cancelled or the backend fails.
func (e *Engine) Serve(ctx context.Context) error {
	if err := e.Listen(); err != nil {
		return err
	}
	e.log.Info().
		Str("host", e.cfg.Host).
		Int("port", e.cfg.Port).
		Int("pool_size", e.cfg.PoolSize).
		Dur("idle_timeout", e.cfg.IdleTimeout).
		Msg("engine serving")

	for _, cl := range e.clients {
		if cl.state == StateIdle {
			e.tryAccept(cl.slot)
		}
	}

	e.lastSweep = time.Now()
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("engine stopping")
			if err := e.backend.Close(); err != nil {
				e.log.Warn().Err(err).Msg("backend close")
			}
			return ctx.Err()
		default:
		}

		n, err := e.Poll()
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			e.log.Error().Err(err).Msg("completion wait failed")
			if cerr := e.backend.Close(); cerr != nil {
				e.log.Warn().Err(cerr).Msg("backend close")
			}
			return fmt.Errorf("engine wait: %w", err)
		}
		if n == 0 {
			time.Sleep(idlePause)
		}

		if now := time.Now(); e.cfg.IdleTimeout > 0 && now.Sub(e.lastSweep) >= e.cfg.SweepInterval {
			e.sweep(now)
			e.lastSweep = now
		}
	}
}

// Poll retries throttled accepts, drains at most one batch of
// completions without blocking, and applies each to its client's state
// machine. It reports how many completions were applied.
func (e *Engine) Poll() (int, error) {
	e.retryDeferredAccepts()

	n, err := e.backend.Wait(e.batch, false)
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return 0, nil
		}
		return 0, err
	}
	metrics.RecordWaitBatch(n)
	for i := 0; i < n; i++ {
		e.apply(e.batch[i])
	}
	return n, nil
}

// apply advances one client's state machine by one completion.
func (e *Engine) apply(c Completion) {
	if c.Slot < 0 || int(c.Slot) >= len(e.clients) {
		e.log.Error().Int("slot", int(c.Slot)).Str("op", c.Op.String()).Msg("completion for unknown slot")
		return
	}
	cl := e.clients[c.Slot]
	metrics.RecordCompletion(c.Op.String(), errorClass(c.Err))

	// Once a teardown is underway only its own close completion is
	// expected; anything else raced the teardown and is void.
	if cl.state == StateDisconnecting && c.Op != OpClose {
		e.log.Debug().Int("slot", int(c.Slot)).Str("op", c.Op.String()).Msg("stray completion dropped")
		return
	}

	switch c.Op {
	case OpAccept:
		e.applyAccept(cl, c)
	case OpRecv:
		e.applyRecv(cl, c)
	case OpSend:
		e.applySend(cl, c)
	case OpClose:
		e.applyClose(cl, c)
	default:
		e.log.Error().Int("slot", int(c.Slot)).Uint8("op", uint8(c.Op)).Msg("completion with unknown op")
	}
}

func (e *Engine) applyAccept(cl *Client, c Completion) {
	if cl.state != StateAccepting {
		e.log.Warn().Int("slot", int(cl.slot)).Str("state", cl.state.String()).Msg("accept completion in wrong state")
		return
	}
	if c.Err != nil {
		e.log.Warn().Err(c.Err).Int("slot", int(cl.slot)).Msg("accept failed")
		cl.state = StateIdle
		e.tryAccept(cl.slot)
		return
	}

	now := time.Now()
	cl.started = now
	cl.lastActivity = now
	cl.state = StateReading
	metrics.TrackActiveClient(true)
	e.log.Debug().Int("slot", int(cl.slot)).Msg("client accepted")
	e.armRecv(cl)
}

func (e *Engine) applyRecv(cl *Client, c Completion) {
	if cl.state != StateReading {
		e.log.Warn().Int("slot", int(cl.slot)).Str("state", cl.state.String()).Msg("recv completion in wrong state")
		return
	}
	if fatalToClient(c.Err) {
		e.closeClient(cl, c.Err)
		return
	}
	if c.N <= 0 {
		e.closeClient(cl, ErrDisconnected)
		return
	}

	cl.lastActivity = time.Now()
	if full := cl.applyRecv(c.N); full {
		// The read filled the window exactly, so more of the request
		// may be in flight. Widen the buffer and keep reading.
		cl.growInbound(e.cfg.BufferIncrement)
		metrics.RecordBufferGrow()
		e.log.Debug().Int("slot", int(cl.slot)).Int("capacity", cap(cl.in)).Msg("inbound buffer grown")
		e.armRecv(cl)
		return
	}

	cl.state = StateReadComplete
	e.dispatch(cl)
}

// dispatch hands the buffered request to the handler and starts the
// response write.
func (e *Engine) dispatch(cl *Client) {
	resp, keep := e.handler.HandleRequest(cl.in, cl.out[:0])
	cl.out = resp
	cl.keepAlive = keep
	if len(cl.out) == 0 {
		// Nothing to write back; treat it as an immediately completed
		// write so the keep-alive decision still applies.
		e.finishWrite(cl)
		return
	}
	cl.state = StateWriting
	if err := e.backend.Send(cl.slot, cl.out); err != nil {
		e.closeClient(cl, err)
	}
}

func (e *Engine) applySend(cl *Client, c Completion) {
	if cl.state != StateWriting {
		e.log.Warn().Int("slot", int(cl.slot)).Str("state", cl.state.String()).Msg("send completion in wrong state")
		return
	}
	if fatalToClient(c.Err) {
		e.closeClient(cl, c.Err)
		return
	}

	cl.lastActivity = time.Now()
	if done := cl.applySend(c.N); !done {
		if err := e.backend.Send(cl.slot, cl.out); err != nil {
			e.closeClient(cl, err)
		}
		return
	}
	e.finishWrite(cl)
}

func (e *Engine) finishWrite(cl *Client) {
	cl.state = StateWriteComplete
	if !cl.keepAlive {
		e.closeClient(cl, nil)
		return
	}
	cl.resetForNextRequest()
	cl.state = StateReading
	e.armRecv(cl)
}

func (e *Engine) applyClose(cl *Client, c Completion) {
	if c.Err != nil {
		e.log.Debug().Err(c.Err).Int("slot", int(cl.slot)).Msg("close completed with error")
	}
	e.recycle(cl)
}

func (e *Engine) armRecv(cl *Client) {
	if err := e.backend.Recv(cl.slot, cl.recvWindow()); err != nil {
		e.closeClient(cl, err)
	}
}

// closeClient begins a teardown. A nil cause is a graceful end of the
// exchange; anything else is logged with the taxonomy class.
func (e *Engine) closeClient(cl *Client, cause error) {
	if cl.state == StateDisconnecting {
		return
	}
	switch cl.state {
	case StateReading, StateReadComplete, StateWriting, StateWriteComplete:
		metrics.TrackActiveClient(false)
	}
	if cause == nil {
		e.log.Debug().Int("slot", int(cl.slot)).Msg("closing client")
	} else if errorClass(cause) == "general" {
		e.log.Warn().Err(cause).Int("slot", int(cl.slot)).Str("state", cl.state.String()).Msg("client torn down")
	} else {
		e.log.Debug().Err(cause).Int("slot", int(cl.slot)).Str("state", cl.state.String()).Msg("client torn down")
	}

	cl.state = StateDisconnecting
	if err := e.backend.CloseClient(cl.slot); err != nil {
		// No close completion will arrive; recycle the slot directly.
		e.log.Error().Err(err).Int("slot", int(cl.slot)).Msg("close arm failed")
		e.recycle(cl)
	}
}

// recycle returns a slot to the accept pool with its buffers shrunk
// back to the configured minimum.
func (e *Engine) recycle(cl *Client) {
	cl.resetForReuse(e.cfg.BufferMin)
	e.tryAccept(cl.slot)
}

// tryAccept arms an accept for an idle slot, deferring it when the
// accept rate limiter pushes back.
func (e *Engine) tryAccept(slot int32) {
	cl := e.clients[slot]
	if cl.state != StateIdle {
		return
	}
	if !e.limiter.Allow() {
		metrics.RecordAcceptThrottled()
		e.deferred = append(e.deferred, slot)
		return
	}
	e.armAccept(cl)
}

func (e *Engine) armAccept(cl *Client) {
	cl.state = StateAccepting
	if err := e.backend.Accept(cl.slot); err != nil {
		e.log.Error().Err(err).Int("slot", int(cl.slot)).Msg("accept arm failed")
		cl.state = StateIdle
	}
}

func (e *Engine) retryDeferredAccepts() {
	for len(e.deferred) > 0 && e.limiter.Allow() {
		slot := e.deferred[0]
		e.deferred = e.deferred[1:]
		e.armAccept(e.clients[slot])
	}
	if len(e.deferred) == 0 {
		e.deferred = nil
	}
}

// sweep tears down clients whose connection has been quiet past the
// idle limit. Slots waiting in accept are not subject to it.
func (e *Engine) sweep(now time.Time) {
	for _, cl := range e.clients {
		switch cl.state {
		case StateReading, StateWriting:
			if now.Sub(cl.lastActivity) > e.cfg.IdleTimeout {
				metrics.RecordIdleTeardown()
				e.closeClient(cl, ErrTimedOut)
			}
		}
	}
}
