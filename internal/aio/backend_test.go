// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package aio

import "testing"

// The user-data packing is shared by both native backends, so it must
// live outside any build tag and round-trip on every platform.
func TestPackUserDataRoundTrip(t *testing.T) {
	tests := []struct {
		op   Op
		gen  uint32
		slot int32
	}{
		{OpAccept, 0, 0},
		{OpRecv, 1, 63},
		{OpSend, udGenMask, 2147483647},
		{OpClose, 12345, 17},
	}
	for _, tt := range tests {
		ud := packUserData(tt.op, tt.gen, tt.slot)
		if got := Op(ud >> udOpShift); got != tt.op {
			t.Errorf("unpacked op = %v, want %v", got, tt.op)
		}
		if got := uint32(ud>>udGenShift) & udGenMask; got != tt.gen&udGenMask {
			t.Errorf("unpacked gen = %d, want %d", got, tt.gen&udGenMask)
		}
		if got := int32(uint32(ud)); got != tt.slot {
			t.Errorf("unpacked slot = %d, want %d", got, tt.slot)
		}
	}
}

func TestNewBackendUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("carrier-pigeon", 4, 64); err == nil {
		t.Error("NewBackend accepted an unknown kind")
	}
}
