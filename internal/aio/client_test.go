// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import (
	"bytes"
	"testing"
)

func TestClientStateString(t *testing.T) {
	tests := []struct {
		state ClientState
		want  string
	}{
		{StateIdle, "idle"},
		{StateAccepting, "accepting"},
		{StateReading, "reading"},
		{StateReadComplete, "read_complete"},
		{StateWriting, "writing"},
		{StateWriteComplete, "write_complete"},
		{StateDisconnecting, "disconnecting"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ClientState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestClientRecvWindow(t *testing.T) {
	cl := newClient(0, 8)

	win := cl.recvWindow()
	if len(win) != 8 {
		t.Fatalf("fresh recv window length = %d, want 8", len(win))
	}

	copy(win, "abc")
	if full := cl.applyRecv(3); full {
		t.Fatal("applyRecv(3) on capacity 8 reported a full buffer")
	}
	if got := string(cl.in); got != "abc" {
		t.Errorf("inbound after partial read = %q, want %q", got, "abc")
	}
	if win = cl.recvWindow(); len(win) != 5 {
		t.Errorf("recv window after 3 bytes = %d, want 5", len(win))
	}
}

func TestClientExactFillReportsFull(t *testing.T) {
	cl := newClient(0, 4)

	copy(cl.recvWindow(), "full")
	if full := cl.applyRecv(4); !full {
		t.Fatal("applyRecv filling the window exactly did not report full")
	}
}

func TestClientGrowInboundPreservesBytes(t *testing.T) {
	cl := newClient(0, 4)
	copy(cl.recvWindow(), "abcd")
	cl.applyRecv(4)

	cl.growInbound(4)
	if cap(cl.in) != 8 {
		t.Fatalf("capacity after grow = %d, want 8", cap(cl.in))
	}
	if got := string(cl.in); got != "abcd" {
		t.Errorf("inbound after grow = %q, want %q", got, "abcd")
	}
	if win := cl.recvWindow(); len(win) != 4 {
		t.Errorf("recv window after grow = %d, want 4", len(win))
	}

	// The widened window accepts the rest without another grow.
	copy(cl.recvWindow(), "ef")
	if full := cl.applyRecv(2); full {
		t.Error("partial read into grown buffer reported full")
	}
	if got := string(cl.in); got != "abcdef" {
		t.Errorf("inbound after second read = %q, want %q", got, "abcdef")
	}
}

func TestClientApplySendShiftsRemainder(t *testing.T) {
	cl := newClient(0, 16)
	cl.out = append(cl.out[:0], "starfield"...)

	if done := cl.applySend(4); done {
		t.Fatal("applySend(4) of 9 bytes reported done")
	}
	if got := string(cl.out); got != "field" {
		t.Fatalf("outbound after partial send = %q, want %q", got, "field")
	}

	if done := cl.applySend(5); !done {
		t.Fatal("applySend of the remainder did not report done")
	}
	if len(cl.out) != 0 {
		t.Errorf("outbound length after completed send = %d, want 0", len(cl.out))
	}
}

func TestClientApplySendOvercount(t *testing.T) {
	cl := newClient(0, 16)
	cl.out = append(cl.out[:0], "abc"...)

	if done := cl.applySend(8); !done {
		t.Error("applySend beyond the outbound length did not report done")
	}
}

func TestClientResetForNextRequestKeepsCapacity(t *testing.T) {
	cl := newClient(0, 4)
	copy(cl.recvWindow(), "abcd")
	cl.applyRecv(4)
	cl.growInbound(4)
	cl.out = append(cl.out[:0], "resp"...)

	cl.resetForNextRequest()
	if len(cl.in) != 0 || len(cl.out) != 0 {
		t.Errorf("lengths after reset = %d/%d, want 0/0", len(cl.in), len(cl.out))
	}
	if cap(cl.in) != 8 {
		t.Errorf("inbound capacity after keep-alive reset = %d, want 8", cap(cl.in))
	}
}

func TestClientResetForReuseShrinksGrownBuffers(t *testing.T) {
	cl := newClient(3, 4)
	cl.state = StateDisconnecting
	cl.keepAlive = true
	copy(cl.recvWindow(), "abcd")
	cl.applyRecv(4)
	cl.growInbound(4)
	cl.growInbound(4)
	cl.out = append(cl.out[:0], bytes.Repeat([]byte("x"), 32)...)

	cl.resetForReuse(4)
	if cap(cl.in) != 4 {
		t.Errorf("inbound capacity after reuse = %d, want 4", cap(cl.in))
	}
	if cap(cl.out) != 4 {
		t.Errorf("outbound capacity after reuse = %d, want 4", cap(cl.out))
	}
	if len(cl.in) != 0 || len(cl.out) != 0 {
		t.Errorf("lengths after reuse = %d/%d, want 0/0", len(cl.in), len(cl.out))
	}
	if cl.state != StateIdle {
		t.Errorf("state after reuse = %v, want %v", cl.state, StateIdle)
	}
	if cl.keepAlive {
		t.Error("keepAlive survived slot reuse")
	}
	if !cl.started.IsZero() || !cl.lastActivity.IsZero() {
		t.Error("timestamps survived slot reuse")
	}
	if cl.Slot() != 3 {
		t.Errorf("slot after reuse = %d, want 3", cl.Slot())
	}
}

func TestClientResetForReuseKeepsMinimalBuffers(t *testing.T) {
	cl := newClient(0, 4)
	copy(cl.recvWindow(), "ab")
	cl.applyRecv(2)

	before := &cl.in[:1][0]
	cl.resetForReuse(4)
	after := &cl.in[:1][0]
	if before != after {
		t.Error("never-grown inbound buffer was reallocated on reuse")
	}
}
