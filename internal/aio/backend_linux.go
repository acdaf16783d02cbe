// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build linux

package aio

import (
	"fmt"
	"net"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Raw io_uring ABI. The layouts below mirror the kernel's
// io_uring_params, io_uring_sqe and io_uring_cqe structs byte for byte;
// the field offsets are load-bearing, so none of these may gain or
// reorder fields.
const (
	uringOffSQRing int64 = 0
	uringOffCQRing int64 = 0x8000000
	uringOffSQEs   int64 = 0x10000000

	uringEnterGetEvents = 1 << 0
	uringFeatSingleMmap = 1 << 0

	opcodeAccept uint8 = 13
	opcodeClose  uint8 = 19
	opcodeSend   uint8 = 26
	opcodeRecv   uint8 = 27
)

type uringSQOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	flags       uint32
	dropped     uint32
	array       uint32
	resv1       uint32
	userAddr    uint64
}

type uringCQOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	overflow    uint32
	cqes        uint32
	flags       uint32
	resv1       uint32
	userAddr    uint64
}

type uringParams struct {
	sqEntries    uint32
	cqEntries    uint32
	flags        uint32
	sqThreadCPU  uint32
	sqThreadIdle uint32
	features     uint32
	wqFD         uint32
	resv         [3]uint32
	sqOff        uringSQOffsets
	cqOff        uringCQOffsets
}

type uringSQE struct {
	opcode      uint8
	flags       uint8
	ioprio      uint16
	fd          int32
	off         uint64
	addr        uint64
	length      uint32
	opFlags     uint32
	userData    uint64
	bufIndex    uint16
	personality uint16
	spliceFDIn  int32
	pad         [2]uint64
}

type uringCQE struct {
	userData uint64
	res      int32
	flags    uint32
}

// uringBackend drives sockets through a raw io_uring instance: arming
// writes submission entries, Wait submits them in one batch and reaps
// the completion ring.
type uringBackend struct {
	ringFD     int
	listenFD   int
	singleMmap bool
	closed     bool

	sqRing []byte
	cqRing []byte
	sqeMem []byte

	sqHead      *uint32
	sqTail      *uint32
	sqMask      uint32
	sqEntryCnt  uint32
	sqArray     []uint32
	sqes        []uringSQE
	sqLocalTail uint32
	pending     uint32

	cqHead *uint32
	cqTail *uint32
	cqMask uint32
	cqes   []uringCQE

	connFDs []int32
	gens    []uint32
}

func newURingBackend(poolSize, entries int) (*uringBackend, error) {
	if entries <= 0 {
		entries = 256
	}
	if entries < 2*poolSize {
		// Room for one armed operation plus one close per slot between
		// submits. The kernel rounds up to a power of two itself.
		entries = 2 * poolSize
	}

	var params uringParams
	fd, _, errno := unix.Syscall(unix.SYS_IO_URING_SETUP, uintptr(entries), uintptr(unsafe.Pointer(&params)), 0)
	if errno != 0 {
		return nil, fmt.Errorf("io_uring_setup: %w", errno)
	}

	b := &uringBackend{
		ringFD:     int(fd),
		listenFD:   -1,
		singleMmap: params.features&uringFeatSingleMmap != 0,
		sqEntryCnt: params.sqEntries,
		connFDs:    make([]int32, poolSize),
		gens:       make([]uint32, poolSize),
	}
	for i := range b.connFDs {
		b.connFDs[i] = -1
	}

	sqSize := int(params.sqOff.array) + int(params.sqEntries)*4
	cqSize := int(params.cqOff.cqes) + int(params.cqEntries)*int(unsafe.Sizeof(uringCQE{}))
	if b.singleMmap && cqSize > sqSize {
		sqSize = cqSize
	}

	mmapErr := func(stage string, err error) (*uringBackend, error) {
		b.Close() //nolint:errcheck // best-effort unwind of a partial init
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	var err error
	b.sqRing, err = unix.Mmap(b.ringFD, uringOffSQRing, sqSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return mmapErr("map sq ring", err)
	}
	if b.singleMmap {
		b.cqRing = b.sqRing
	} else {
		b.cqRing, err = unix.Mmap(b.ringFD, uringOffCQRing, cqSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
		if err != nil {
			return mmapErr("map cq ring", err)
		}
	}
	b.sqeMem, err = unix.Mmap(b.ringFD, uringOffSQEs, int(params.sqEntries)*int(unsafe.Sizeof(uringSQE{})), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return mmapErr("map sqes", err)
	}

	b.sqHead = (*uint32)(unsafe.Pointer(&b.sqRing[params.sqOff.head]))
	b.sqTail = (*uint32)(unsafe.Pointer(&b.sqRing[params.sqOff.tail]))
	b.sqMask = *(*uint32)(unsafe.Pointer(&b.sqRing[params.sqOff.ringMask]))
	b.sqArray = unsafe.Slice((*uint32)(unsafe.Pointer(&b.sqRing[params.sqOff.array])), int(params.sqEntries))
	b.sqes = unsafe.Slice((*uringSQE)(unsafe.Pointer(&b.sqeMem[0])), int(params.sqEntries))
	b.sqLocalTail = atomic.LoadUint32(b.sqTail)

	b.cqHead = (*uint32)(unsafe.Pointer(&b.cqRing[params.cqOff.head]))
	b.cqTail = (*uint32)(unsafe.Pointer(&b.cqRing[params.cqOff.tail]))
	b.cqMask = *(*uint32)(unsafe.Pointer(&b.cqRing[params.cqOff.ringMask]))
	b.cqes = unsafe.Slice((*uringCQE)(unsafe.Pointer(&b.cqRing[params.cqOff.cqes])), int(params.cqEntries))

	return b, nil
}

func (b *uringBackend) Listen(host string, port int) error {
	addr, err := resolveIPv4(host)
	if err != nil {
		return err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd) //nolint:errcheck // already failing
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	sa := &unix.SockaddrInet4{Port: port, Addr: addr}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd) //nolint:errcheck // already failing
		return fmt.Errorf("bind %s:%d: %w", host, port, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd) //nolint:errcheck // already failing
		return fmt.Errorf("listen %s:%d: %w", host, port, err)
	}
	b.listenFD = fd
	return nil
}

// Addr reports the bound listener address.
func (b *uringBackend) Addr() net.Addr {
	if b.listenFD < 0 {
		return nil
	}
	sa, err := unix.Getsockname(b.listenFD)
	if err != nil {
		return nil
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return nil
	}
	return &net.TCPAddr{IP: net.IP(sa4.Addr[:]), Port: sa4.Port}
}

// pushSQE queues one submission entry. The entry is not visible to the
// kernel until the next flush or Wait.
func (b *uringBackend) pushSQE(opcode uint8, fd int32, addr uintptr, n uint32, userData uint64) error {
	if b.sqLocalTail-atomic.LoadUint32(b.sqHead) >= b.sqEntryCnt {
		if err := b.flush(); err != nil {
			return err
		}
		if b.sqLocalTail-atomic.LoadUint32(b.sqHead) >= b.sqEntryCnt {
			return fmt.Errorf("%w: submission queue full", ErrGeneral)
		}
	}

	idx := b.sqLocalTail & b.sqMask
	b.sqes[idx] = uringSQE{
		opcode:   opcode,
		fd:       fd,
		addr:     uint64(addr),
		length:   n,
		userData: userData,
	}
	b.sqArray[idx] = idx
	b.sqLocalTail++
	atomic.StoreUint32(b.sqTail, b.sqLocalTail)
	b.pending++
	return nil
}

// flush hands queued submission entries to the kernel without waiting
// for completions.
func (b *uringBackend) flush() error {
	for b.pending > 0 {
		n, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER, uintptr(b.ringFD), uintptr(b.pending), 0, 0, 0, 0)
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			return fmt.Errorf("io_uring_enter: %w", errno)
		}
		b.pending -= uint32(n)
		if n == 0 {
			break
		}
	}
	return nil
}

func (b *uringBackend) Accept(slot int32) error {
	if b.listenFD < 0 {
		return fmt.Errorf("%w: accept armed before listen", ErrNotConnected)
	}
	// Peer address is not collected, so addr and addrlen stay null.
	return b.pushSQE(opcodeAccept, int32(b.listenFD), 0, 0, packUserData(OpAccept, b.gens[slot], slot))
}

func (b *uringBackend) Recv(slot int32, buf []byte) error {
	fd := b.connFDs[slot]
	if fd < 0 {
		return fmt.Errorf("%w: recv on slot %d without socket", ErrNotConnected, slot)
	}
	if len(buf) == 0 {
		return fmt.Errorf("%w: recv armed with empty buffer", ErrGeneral)
	}
	return b.pushSQE(opcodeRecv, fd, uintptr(unsafe.Pointer(&buf[0])), uint32(len(buf)), packUserData(OpRecv, b.gens[slot], slot))
}

func (b *uringBackend) Send(slot int32, buf []byte) error {
	fd := b.connFDs[slot]
	if fd < 0 {
		return fmt.Errorf("%w: send on slot %d without socket", ErrNotConnected, slot)
	}
	if len(buf) == 0 {
		return fmt.Errorf("%w: send armed with empty buffer", ErrGeneral)
	}
	return b.pushSQE(opcodeSend, fd, uintptr(unsafe.Pointer(&buf[0])), uint32(len(buf)), packUserData(OpSend, b.gens[slot], slot))
}

func (b *uringBackend) CloseClient(slot int32) error {
	fd := b.connFDs[slot]
	if fd >= 0 {
		// Force any operation still pending on the socket to complete
		// now rather than whenever the peer next acts. Its completion
		// carries the old generation and is discarded on reap.
		unix.Shutdown(int(fd), unix.SHUT_RDWR) //nolint:errcheck // socket may already be dead
	}
	return b.pushSQE(opcodeClose, fd, 0, 0, packUserData(OpClose, b.gens[slot], slot))
}

func (b *uringBackend) Wait(out []Completion, block bool) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	for {
		if err := b.enter(block); err != nil {
			return 0, err
		}
		if n := b.reap(out); n > 0 {
			return n, nil
		}
		if !block {
			return 0, ErrWouldBlock
		}
	}
}

func (b *uringBackend) enter(block bool) error {
	var minComplete, flags uintptr
	if block {
		minComplete = 1
		flags = uringEnterGetEvents
	} else if b.pending == 0 {
		return nil
	}
	for {
		n, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER, uintptr(b.ringFD), uintptr(b.pending), minComplete, flags, 0, 0)
		switch errno {
		case 0:
			b.pending -= uint32(n)
			return nil
		case unix.EINTR:
			continue
		default:
			return fmt.Errorf("io_uring_enter: %w", errno)
		}
	}
}

// reap moves ready completion entries into out, dropping entries whose
// generation no longer matches their slot.
func (b *uringBackend) reap(out []Completion) int {
	n := 0
	head := atomic.LoadUint32(b.cqHead)
	tail := atomic.LoadUint32(b.cqTail)
	for n < len(out) && head != tail {
		cqe := b.cqes[head&b.cqMask]
		head++
		if c, live := b.resolveCQE(cqe); live {
			out[n] = c
			n++
		}
	}
	atomic.StoreUint32(b.cqHead, head)
	return n
}

func (b *uringBackend) resolveCQE(cqe uringCQE) (Completion, bool) {
	op := Op(cqe.userData >> udOpShift)
	gen := uint32(cqe.userData>>udGenShift) & udGenMask
	slot := int32(uint32(cqe.userData))
	if slot < 0 || int(slot) >= len(b.gens) || gen != b.gens[slot] {
		return Completion{}, false
	}

	c := Completion{Slot: slot, Op: op}
	switch {
	case cqe.res < 0:
		c.Err = mapURingErrno(syscall.Errno(-cqe.res))
	case op == OpAccept:
		b.adoptConn(slot, cqe.res)
	case op == OpRecv && cqe.res == 0:
		c.Err = ErrDisconnected
	default:
		c.N = int(cqe.res)
	}

	if op == OpClose {
		b.gens[slot] = (b.gens[slot] + 1) & udGenMask
		b.connFDs[slot] = -1
	}
	return c, true
}

func (b *uringBackend) adoptConn(slot, fd int32) {
	b.connFDs[slot] = fd
	unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1) //nolint:errcheck // latency knob, not correctness
}

func (b *uringBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	for i, fd := range b.connFDs {
		if fd >= 0 {
			unix.Close(int(fd)) //nolint:errcheck // teardown
			b.connFDs[i] = -1
		}
	}
	if b.listenFD >= 0 {
		unix.Close(b.listenFD) //nolint:errcheck // teardown
		b.listenFD = -1
	}
	if b.sqeMem != nil {
		unix.Munmap(b.sqeMem) //nolint:errcheck // teardown
		b.sqeMem = nil
	}
	if b.cqRing != nil && !b.singleMmap {
		unix.Munmap(b.cqRing) //nolint:errcheck // teardown
	}
	b.cqRing = nil
	if b.sqRing != nil {
		unix.Munmap(b.sqRing) //nolint:errcheck // teardown
		b.sqRing = nil
	}
	if b.ringFD >= 0 {
		unix.Close(b.ringFD) //nolint:errcheck // teardown
		b.ringFD = -1
	}
	return nil
}

// mapURingErrno folds a negated cqe result into the closed taxonomy.
func mapURingErrno(errno syscall.Errno) error {
	switch errno {
	case unix.ECONNRESET:
		return ErrConnReset
	case unix.ECONNABORTED:
		return ErrConnAborted
	case unix.EPIPE, unix.ESHUTDOWN:
		return ErrDisconnected
	case unix.ENETDOWN:
		return ErrNetworkDown
	case unix.ENETRESET:
		return ErrNetworkReset
	case unix.ENOTCONN:
		return ErrNotConnected
	case unix.ETIMEDOUT:
		return ErrTimedOut
	case unix.ECANCELED, unix.EBADF:
		return ErrOpAborted
	default:
		return fmt.Errorf("%w: %s (errno %d)", ErrGeneral, errno.Error(), int(errno))
	}
}
