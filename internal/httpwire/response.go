// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package httpwire

import (
	"bytes"
	"fmt"
	"strconv"
)

// Response is a read-only view over one complete response, the mirror of
// Request for the reply direction. It exists mostly for tests and tooling
// that replay wire bytes; the server itself only writes responses.
type Response struct {
	proto   []byte
	status  int
	reason  []byte
	headers []byte
	body    []byte
}

// ParseResponse frames the response held in raw.
func ParseResponse(raw []byte) (Response, error) {
	line, rest, err := cutLine(raw)
	if err != nil {
		return Response{}, fmt.Errorf("status line: %w", err)
	}

	sp := bytes.IndexByte(line, ' ')
	if sp <= 0 {
		return Response{}, fmt.Errorf("%w: status line has no version separator", ErrMalformed)
	}

	resp := Response{proto: line[:sp]}
	tail := line[sp+1:]
	if sp2 := bytes.IndexByte(tail, ' '); sp2 >= 0 {
		resp.reason = tail[sp2+1:]
		tail = tail[:sp2]
	}
	code, err := parseDecimal(tail)
	if err != nil || code < 100 || code > 999 {
		return Response{}, fmt.Errorf("%w: status code %q", ErrMalformed, tail)
	}
	resp.status = code

	resp.headers, resp.body, err = splitHeaderBlock(rest)
	if err != nil {
		return Response{}, err
	}

	if v, ok := scanHeader(resp.headers, "Content-Length"); ok {
		n, err := parseDecimal(v)
		if err != nil {
			return Response{}, fmt.Errorf("%w: Content-Length %q", ErrMalformed, v)
		}
		if n > len(resp.body) {
			return Response{}, fmt.Errorf("%w: body has %d of %d bytes", ErrIncomplete, len(resp.body), n)
		}
		resp.body = resp.body[:n]
	}
	return resp, nil
}

// Status returns the numeric status code.
func (r Response) Status() int { return r.status }

// Reason returns the status line's reason phrase, empty if absent.
func (r Response) Reason() []byte { return r.reason }

// Proto returns the protocol version token.
func (r Response) Proto() []byte { return r.proto }

// Body returns the response body, Content-Length-bounded when the header
// is present.
func (r Response) Body() []byte { return r.body }

// Header looks up a header by case-insensitive name, trimmed, ok-false on
// miss.
func (r Response) Header(name string) (value []byte, ok bool) {
	return scanHeader(r.headers, name)
}

// Status codes the atlas emits by name. Everything else goes through
// StatusText directly.
const (
	StatusOK               = 200
	StatusBadRequest       = 400
	StatusNotFound         = 404
	StatusMethodNotAllowed = 405
)

// StatusText returns the reason phrase for the codes the atlas emits.
func StatusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 408:
		return "Request Timeout"
	case 413:
		return "Payload Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}

// ResponseWriter appends a response to a caller-provided buffer in wire
// order. There is no internal buffering: Bytes() is always the exact wire
// image so far, backed by the caller's storage.
//
// Wire order is status line, header lines, blank line, body bytes, and a
// final blank line appended by Finish. Writing body bytes closes the
// header section; header writes after that fail with ErrBodyStarted.
type ResponseWriter struct {
	buf           []byte
	statusWritten bool
	headersClosed bool
	bodyStarted   bool
	finished      bool
}

// NewResponseWriter wraps buf, which is appended to in place. Callers
// reusing a client's outbound buffer pass buf[:0] and collect the result
// from Finish.
func NewResponseWriter(buf []byte) *ResponseWriter {
	return &ResponseWriter{buf: buf}
}

// WriteStatus appends the status line. At most one status line per
// response; a second call fails with ErrStatusWritten.
func (w *ResponseWriter) WriteStatus(code int) error {
	if w.statusWritten {
		return ErrStatusWritten
	}
	w.statusWritten = true
	w.buf = append(w.buf, "HTTP/1.1 "...)
	w.buf = strconv.AppendInt(w.buf, int64(code), 10)
	w.buf = append(w.buf, ' ')
	w.buf = append(w.buf, StatusText(code)...)
	w.buf = append(w.buf, crlf...)
	return nil
}

// WriteHeader appends one "Name: value" line. A writer with no status
// line yet gets an implicit 200, matching what handlers expect from the
// standard library.
func (w *ResponseWriter) WriteHeader(name, value string) error {
	if w.bodyStarted {
		return ErrBodyStarted
	}
	if !w.statusWritten {
		if err := w.WriteStatus(200); err != nil {
			return err
		}
	}
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, ": "...)
	w.buf = append(w.buf, value...)
	w.buf = append(w.buf, crlf...)
	return nil
}

// Write appends body bytes, closing the header section on the first call.
func (w *ResponseWriter) Write(p []byte) (int, error) {
	w.closeHeaders()
	w.bodyStarted = true
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// WriteString appends body bytes from a string.
func (w *ResponseWriter) WriteString(s string) (int, error) {
	w.closeHeaders()
	w.bodyStarted = true
	w.buf = append(w.buf, s...)
	return len(s), nil
}

// Finish terminates the response with the trailing blank line and returns
// the full wire bytes. Idempotent.
func (w *ResponseWriter) Finish() []byte {
	if !w.finished {
		w.closeHeaders()
		w.buf = append(w.buf, crlf...)
		w.finished = true
	}
	return w.buf
}

// Bytes returns the wire bytes appended so far.
func (w *ResponseWriter) Bytes() []byte { return w.buf }

// Len returns the number of wire bytes appended so far.
func (w *ResponseWriter) Len() int { return len(w.buf) }

func (w *ResponseWriter) closeHeaders() {
	if !w.statusWritten {
		w.WriteStatus(200) //nolint:errcheck // cannot fail before a status line exists
	}
	if !w.headersClosed {
		w.buf = append(w.buf, crlf...)
		w.headersClosed = true
	}
}

// WriteResponse is the one-shot path for handlers that have the whole
// body in hand: status, Content-Type and exact Content-Length headers,
// body, trailer. It appends to buf and returns the extended slice.
func WriteResponse(buf []byte, status int, contentType string, body []byte) []byte {
	w := NewResponseWriter(buf)
	w.WriteStatus(status)                                    //nolint:errcheck // fresh writer
	w.WriteHeader("Content-Type", contentType)               //nolint:errcheck // headers still open
	w.WriteHeader("Content-Length", strconv.Itoa(len(body))) //nolint:errcheck // headers still open
	w.Write(body)                                            //nolint:errcheck // append cannot fail
	return w.Finish()
}
