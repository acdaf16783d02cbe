// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package httpwire

import (
	"bytes"
	"fmt"
)

var (
	crlf      = []byte("\r\n")
	headerEnd = []byte("\r\n\r\n")
	proto11   = []byte("HTTP/1.1")
)

// maxContentLength caps the Content-Length values the parser accepts. A
// larger value in a header is treated as malformed rather than honored.
const maxContentLength = 1 << 30

// Request is a read-only view over one complete request in a client's
// inbound buffer. All accessors return subslices of that buffer; the view
// is invalid once the buffer is reset or rewritten.
type Request struct {
	method  []byte
	path    []byte
	proto   []byte
	headers []byte
	body    []byte
}

// ParseRequest frames the request held in raw. It locates the request
// line, the header block and the body without copying any of them.
// ErrIncomplete means raw stops before the message does; ErrMalformed
// means the bytes can never become a valid request.
func ParseRequest(raw []byte) (Request, error) {
	line, rest, err := cutLine(raw)
	if err != nil {
		return Request{}, fmt.Errorf("request line: %w", err)
	}

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return Request{}, fmt.Errorf("%w: request line has no method separator", ErrMalformed)
	}
	tail := line[sp1+1:]
	sp2 := bytes.IndexByte(tail, ' ')
	if sp2 <= 0 || sp2 == len(tail)-1 {
		return Request{}, fmt.Errorf("%w: request line has no version separator", ErrMalformed)
	}

	req := Request{
		method: line[:sp1],
		path:   tail[:sp2],
		proto:  tail[sp2+1:],
	}

	req.headers, req.body, err = splitHeaderBlock(rest)
	if err != nil {
		return Request{}, err
	}

	if v, ok := scanHeader(req.headers, "Content-Length"); ok {
		n, err := parseDecimal(v)
		if err != nil {
			return Request{}, fmt.Errorf("%w: Content-Length %q", ErrMalformed, v)
		}
		if n > len(req.body) {
			return Request{}, fmt.Errorf("%w: body has %d of %d bytes", ErrIncomplete, len(req.body), n)
		}
		req.body = req.body[:n]
	}
	return req, nil
}

// Method returns the request method token.
func (r Request) Method() []byte { return r.method }

// Path returns the request target as sent, query string included.
func (r Request) Path() []byte { return r.path }

// Proto returns the protocol version token, e.g. "HTTP/1.1".
func (r Request) Proto() []byte { return r.proto }

// Body returns the request body, bounded by Content-Length when the
// header is present and otherwise running to the end of the buffer.
func (r Request) Body() []byte { return r.body }

// Header looks up a header by case-insensitive name and returns its value
// with surrounding whitespace trimmed. A missing header is a false ok,
// not an error.
func (r Request) Header(name string) (value []byte, ok bool) {
	return scanHeader(r.headers, name)
}

// KeepAlive reports whether the connection stays open after this
// exchange. HTTP/1.1 defaults to keep-alive unless the client sends
// "Connection: close"; older protocol versions must opt in with
// "Connection: keep-alive".
func (r Request) KeepAlive() bool {
	conn, ok := r.Header("Connection")
	if bytes.Equal(r.proto, proto11) {
		return !ok || !asciiEqualFold(conn, "close")
	}
	return ok && asciiEqualFold(conn, "keep-alive")
}

// cutLine splits one CRLF-terminated line off the front of raw.
func cutLine(raw []byte) (line, rest []byte, err error) {
	nl := bytes.IndexByte(raw, '\n')
	if nl == -1 {
		return nil, nil, fmt.Errorf("%w: no line terminator", ErrIncomplete)
	}
	if nl == 0 || raw[nl-1] != '\r' {
		return nil, nil, fmt.Errorf("%w: bare LF line ending", ErrMalformed)
	}
	return raw[:nl-1], raw[nl+1:], nil
}

// splitHeaderBlock separates the header lines from the body at the blank
// line. The returned header block keeps each line's CRLF and drops the
// blank line itself.
func splitHeaderBlock(rest []byte) (headers, body []byte, err error) {
	if bytes.HasPrefix(rest, crlf) {
		return nil, rest[len(crlf):], nil
	}
	idx := bytes.Index(rest, headerEnd)
	if idx == -1 {
		return nil, nil, fmt.Errorf("%w: headers not terminated", ErrIncomplete)
	}
	return rest[:idx+len(crlf)], rest[idx+len(headerEnd):], nil
}

// scanHeader walks a header block line by line looking for name. Lines
// without a colon are skipped; the lookup just misses them.
func scanHeader(block []byte, name string) (value []byte, ok bool) {
	rest := block
	for len(rest) > 0 {
		var line []byte
		if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
			line, rest = rest[:nl], rest[nl+1:]
		} else {
			line, rest = rest, nil
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		if !asciiEqualFold(line[:colon], name) {
			continue
		}
		return bytes.TrimSpace(line[colon+1:]), true
	}
	return nil, false
}

// parseDecimal parses a non-negative base-10 integer with an upper bound,
// rejecting signs, spaces and empty input.
func parseDecimal(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad digit %q", c)
		}
		n = n*10 + int(c-'0')
		if n > maxContentLength {
			return 0, fmt.Errorf("value exceeds %d", maxContentLength)
		}
	}
	return n, nil
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// asciiEqualFold compares a byte slice to a string case-insensitively
// without allocating. ASCII only, which covers every header name and
// token the wire format uses.
func asciiEqualFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if lowerASCII(b[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}
