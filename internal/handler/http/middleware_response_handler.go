// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"net/http"
	"unicode/utf8"
)

// responseWriter is a decorator around [http.ResponseWriter] that records the
// status code and keeps a bounded copy of everything written to the body.
//
// The copy holds at most limit bytes; limit <= 0 keeps the whole body. The
// bound is in bytes and deliberately wider than the logged character limit,
// so the sanitizer still sees that the body was longer and marks it as
// truncated.
//
// WriteHeader is forwarded to the underlying writer exactly once, mirroring
// the contract of [http.ResponseWriter].
type responseWriter struct {
	http.ResponseWriter

	// status is the code recorded on the first WriteHeader call.
	status int

	// wroteHeader guards against forwarding a second WriteHeader.
	wroteHeader bool

	// size is the running total of bytes written to the client.
	size int

	limit     int
	body      bytes.Buffer
	truncated bool
}

// newResponseWriter wraps w. maxChars is the logged body bound in characters.
func newResponseWriter(w http.ResponseWriter, maxChars int) *responseWriter {
	lw := &responseWriter{ResponseWriter: w}
	if maxChars > 0 {
		lw.limit = (maxChars + 1) * utf8.UTFMax
	}
	return lw
}

// WriteHeader records the status code and forwards it once.
func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write forwards b and appends it to the bounded copy. A missing
// WriteHeader is treated as 200 OK.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	w.keep(b[:n])
	return n, err
}

func (w *responseWriter) keep(b []byte) {
	if w.limit <= 0 {
		w.body.Write(b)
		return
	}
	room := w.limit - w.body.Len()
	if room <= 0 {
		w.truncated = w.truncated || len(b) > 0
		return
	}
	if len(b) > room {
		b = b[:room]
		w.truncated = true
	}
	w.body.Write(b)
}

// Flush lets streaming handlers push data through the wrapper.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.wroteHeader {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to [http.ResponseController].
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// statusCode returns the recorded status, 200 if the handler wrote nothing.
func (w *responseWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// captured returns the recorded copy. A copy cut inside a multi-byte
// character loses the partial character.
func (w *responseWriter) captured() []byte {
	b := w.body.Bytes()
	if !w.truncated {
		return b
	}
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size > 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
