// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build windows

package aio

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// iocpOp is the per-operation context handed to the kernel. The
// Overlapped must stay the first field: the completion port returns its
// address and the rest of the struct is recovered by casting back.
// recvd and flags live here rather than on the stack because the kernel
// may write through their addresses when the operation completes.
type iocpOp struct {
	over  windows.Overlapped
	op    Op
	slot  int32
	gen   uint32
	recvd uint32
	flags uint32
	buf   windows.WSABuf
}

// iocpBackend drives sockets through a single I/O completion port.
// Arming issues the overlapped call immediately; Wait dequeues finished
// operations one completion packet at a time.
type iocpBackend struct {
	port   windows.Handle
	listen windows.Handle
	closed bool

	socks       []windows.Handle
	acceptSocks []windows.Handle
	acceptBufs  [][]byte
	gens        []uint32

	// inflight pins every armed iocpOp until its completion is reaped,
	// keeping the kernel's pointers valid.
	inflight map[*iocpOp]struct{}
}

func newIOCPBackend(poolSize int) (*iocpBackend, error) {
	var data windows.WSAData
	if err := windows.WSAStartup(uint32(0x202), &data); err != nil {
		return nil, fmt.Errorf("wsa startup: %w", err)
	}

	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 1)
	if err != nil {
		windows.WSACleanup() //nolint:errcheck // already failing
		return nil, fmt.Errorf("create completion port: %w", err)
	}

	b := &iocpBackend{
		port:        port,
		listen:      windows.InvalidHandle,
		socks:       make([]windows.Handle, poolSize),
		acceptSocks: make([]windows.Handle, poolSize),
		acceptBufs:  make([][]byte, poolSize),
		gens:        make([]uint32, poolSize),
		inflight:    make(map[*iocpOp]struct{}),
	}
	for i := range b.socks {
		b.socks[i] = windows.InvalidHandle
		b.acceptSocks[i] = windows.InvalidHandle
		// AcceptEx wants room for two padded socket addresses even when
		// no connect data is read.
		b.acceptBufs[i] = make([]byte, 2*addrBufLen)
	}
	return b, nil
}

const addrBufLen = 128

func (b *iocpBackend) newSocket() (windows.Handle, error) {
	h, err := windows.WSASocket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP, nil, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return windows.InvalidHandle, fmt.Errorf("wsa socket: %w", err)
	}
	return h, nil
}

func (b *iocpBackend) Listen(host string, port int) error {
	addr, err := resolveIPv4(host)
	if err != nil {
		return err
	}

	h, err := b.newSocket()
	if err != nil {
		return err
	}
	if err := windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		windows.Closesocket(h) //nolint:errcheck // already failing
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	sa := &windows.SockaddrInet4{Port: port, Addr: addr}
	if err := windows.Bind(h, sa); err != nil {
		windows.Closesocket(h) //nolint:errcheck // already failing
		return fmt.Errorf("bind %s:%d: %w", host, port, err)
	}
	if err := windows.Listen(h, windows.SOMAXCONN); err != nil {
		windows.Closesocket(h) //nolint:errcheck // already failing
		return fmt.Errorf("listen %s:%d: %w", host, port, err)
	}
	if _, err := windows.CreateIoCompletionPort(h, b.port, 0, 0); err != nil {
		windows.Closesocket(h) //nolint:errcheck // already failing
		return fmt.Errorf("associate listener: %w", err)
	}
	b.listen = h
	return nil
}

// Addr reports the bound listener address.
func (b *iocpBackend) Addr() net.Addr {
	if b.listen == windows.InvalidHandle {
		return nil
	}
	sa, err := windows.Getsockname(b.listen)
	if err != nil {
		return nil
	}
	sa4, ok := sa.(*windows.SockaddrInet4)
	if !ok {
		return nil
	}
	return &net.TCPAddr{IP: net.IP(sa4.Addr[:]), Port: sa4.Port}
}

// armed records an operation as in flight once the overlapped call
// reports pending or immediate success. Immediate completions still
// surface through the port, so both cases wait for the packet.
func (b *iocpBackend) armed(op *iocpOp, err error) error {
	if err != nil && !errors.Is(err, windows.ERROR_IO_PENDING) {
		return mapIOCPErr(err)
	}
	b.inflight[op] = struct{}{}
	return nil
}

func (b *iocpBackend) Accept(slot int32) error {
	if b.listen == windows.InvalidHandle {
		return fmt.Errorf("%w: accept armed before listen", ErrNotConnected)
	}
	as, err := b.newSocket()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeneral, err)
	}
	b.acceptSocks[slot] = as

	op := &iocpOp{op: OpAccept, slot: slot, gen: b.gens[slot]}
	buf := b.acceptBufs[slot]
	err = windows.AcceptEx(b.listen, as, &buf[0], 0, addrBufLen, addrBufLen, &op.recvd, &op.over)
	if err := b.armed(op, err); err != nil {
		windows.Closesocket(as) //nolint:errcheck // arm failed
		b.acceptSocks[slot] = windows.InvalidHandle
		return err
	}
	return nil
}

func (b *iocpBackend) Recv(slot int32, buf []byte) error {
	h := b.socks[slot]
	if h == windows.InvalidHandle {
		return fmt.Errorf("%w: recv on slot %d without socket", ErrNotConnected, slot)
	}
	if len(buf) == 0 {
		return fmt.Errorf("%w: recv armed with empty buffer", ErrGeneral)
	}

	op := &iocpOp{op: OpRecv, slot: slot, gen: b.gens[slot]}
	op.buf = windows.WSABuf{Len: uint32(len(buf)), Buf: &buf[0]}
	err := windows.WSARecv(h, &op.buf, 1, nil, &op.flags, &op.over, nil)
	return b.armed(op, err)
}

func (b *iocpBackend) Send(slot int32, buf []byte) error {
	h := b.socks[slot]
	if h == windows.InvalidHandle {
		return fmt.Errorf("%w: send on slot %d without socket", ErrNotConnected, slot)
	}
	if len(buf) == 0 {
		return fmt.Errorf("%w: send armed with empty buffer", ErrGeneral)
	}

	op := &iocpOp{op: OpSend, slot: slot, gen: b.gens[slot]}
	op.buf = windows.WSABuf{Len: uint32(len(buf)), Buf: &buf[0]}
	err := windows.WSASend(h, &op.buf, 1, nil, 0, &op.over, nil)
	return b.armed(op, err)
}

func (b *iocpBackend) CloseClient(slot int32) error {
	// Closing the socket aborts any pending operation; its completion
	// carries the old generation and is discarded on reap. The close
	// completion itself is posted by hand since closesocket has no
	// asynchronous form.
	if h := b.socks[slot]; h != windows.InvalidHandle {
		windows.Closesocket(h) //nolint:errcheck // socket may already be dead
		b.socks[slot] = windows.InvalidHandle
	}

	op := &iocpOp{op: OpClose, slot: slot, gen: b.gens[slot]}
	if err := windows.PostQueuedCompletionStatus(b.port, 0, 0, &op.over); err != nil {
		return fmt.Errorf("%w: post close packet: %v", ErrGeneral, err)
	}
	b.inflight[op] = struct{}{}
	return nil
}

func (b *iocpBackend) Wait(out []Completion, block bool) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}

	n := 0
	timeout := uint32(0)
	if block {
		timeout = windows.INFINITE
	}
	for n < len(out) {
		var qty uint32
		var key uintptr
		var over *windows.Overlapped
		err := windows.GetQueuedCompletionStatus(b.port, &qty, &key, &over, timeout)
		if over == nil {
			if err == nil {
				continue
			}
			var errno syscall.Errno
			if errors.As(err, &errno) && errno == syscall.Errno(windows.WAIT_TIMEOUT) {
				break
			}
			return n, fmt.Errorf("%w: completion port: %v", ErrGeneral, err)
		}

		op := (*iocpOp)(unsafe.Pointer(over))
		delete(b.inflight, op)
		if c, live := b.resolveOp(op, qty, err); live {
			out[n] = c
			n++
		}
		// Later packets drain without waiting again.
		timeout = 0
	}
	if n == 0 && !block {
		return 0, ErrWouldBlock
	}
	return n, nil
}

func (b *iocpBackend) resolveOp(op *iocpOp, qty uint32, err error) (Completion, bool) {
	if int(op.slot) < 0 || int(op.slot) >= len(b.gens) || op.gen != b.gens[op.slot] {
		if op.op == OpAccept {
			// A stale accept still delivered a pre-created socket that
			// nobody will adopt.
			if as := b.acceptSocks[op.slot]; as != windows.InvalidHandle {
				windows.Closesocket(as) //nolint:errcheck // teardown
				b.acceptSocks[op.slot] = windows.InvalidHandle
			}
		}
		return Completion{}, false
	}

	c := Completion{Slot: op.slot, Op: op.op}
	switch {
	case err != nil:
		c.Err = mapIOCPErr(err)
		if op.op == OpAccept {
			if as := b.acceptSocks[op.slot]; as != windows.InvalidHandle {
				windows.Closesocket(as) //nolint:errcheck // accept failed
				b.acceptSocks[op.slot] = windows.InvalidHandle
			}
		}
	case op.op == OpAccept:
		if aerr := b.adoptConn(op.slot); aerr != nil {
			c.Err = fmt.Errorf("%w: %v", ErrGeneral, aerr)
		}
	case op.op == OpRecv && qty == 0:
		c.Err = ErrDisconnected
	default:
		c.N = int(qty)
	}

	if op.op == OpClose {
		b.gens[op.slot] = (b.gens[op.slot] + 1) & udGenMask
	}
	return c, true
}

// adoptConn finishes an accepted socket: inherit listener context,
// disable Nagle, associate with the port, and make it the slot's socket.
func (b *iocpBackend) adoptConn(slot int32) error {
	conn := b.acceptSocks[slot]
	b.acceptSocks[slot] = windows.InvalidHandle

	ls := b.listen
	err := windows.Setsockopt(conn, windows.SOL_SOCKET, windows.SO_UPDATE_ACCEPT_CONTEXT,
		(*byte)(unsafe.Pointer(&ls)), int32(unsafe.Sizeof(ls)))
	if err != nil {
		windows.Closesocket(conn) //nolint:errcheck // already failing
		return fmt.Errorf("update accept context: %w", err)
	}
	windows.SetsockoptInt(conn, windows.IPPROTO_TCP, windows.TCP_NODELAY, 1) //nolint:errcheck // latency knob, not correctness
	if _, err := windows.CreateIoCompletionPort(conn, b.port, 0, 0); err != nil {
		windows.Closesocket(conn) //nolint:errcheck // already failing
		return fmt.Errorf("associate socket: %w", err)
	}
	b.socks[slot] = conn
	return nil
}

func (b *iocpBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.socks {
		if b.socks[i] != windows.InvalidHandle {
			windows.Closesocket(b.socks[i]) //nolint:errcheck // teardown
			b.socks[i] = windows.InvalidHandle
		}
		if b.acceptSocks[i] != windows.InvalidHandle {
			windows.Closesocket(b.acceptSocks[i]) //nolint:errcheck // teardown
			b.acceptSocks[i] = windows.InvalidHandle
		}
	}
	if b.listen != windows.InvalidHandle {
		windows.Closesocket(b.listen) //nolint:errcheck // teardown
		b.listen = windows.InvalidHandle
	}
	if b.port != 0 {
		windows.CloseHandle(b.port) //nolint:errcheck // teardown
		b.port = 0
	}
	windows.WSACleanup() //nolint:errcheck // teardown
	return nil
}

// mapIOCPErr folds winsock failures into the closed taxonomy.
func mapIOCPErr(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("%w: %v", ErrGeneral, err)
	}
	switch errno {
	case windows.WSAECONNRESET, windows.ERROR_NETNAME_DELETED:
		return ErrConnReset
	case windows.WSAECONNABORTED:
		return ErrConnAborted
	case windows.WSAEDISCON, windows.WSAESHUTDOWN:
		return ErrDisconnected
	case windows.WSAENETDOWN:
		return ErrNetworkDown
	case windows.WSAENETRESET:
		return ErrNetworkReset
	case windows.WSAENOTCONN:
		return ErrNotConnected
	case windows.WSAETIMEDOUT:
		return ErrTimedOut
	case windows.ERROR_OPERATION_ABORTED:
		return ErrOpAborted
	default:
		return fmt.Errorf("%w: %s (code %d)", ErrGeneral, errno.Error(), int(errno))
	}
}
