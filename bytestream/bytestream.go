/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package bytestream implements a bounded, non-blocking FIFO byte buffer
// split into a Writer and a Reader capability view over one owned state.
package bytestream

import "go.uber.org/zap"

// ByteStream is a bounded FIFO of bytes shared by one Writer and one Reader
// view. It never blocks: the Writer silently truncates on overflow and the
// Reader only ever sees what has actually been pushed.
type ByteStream struct {
	capacity uint64
	buf      []byte
	pushed   uint64
	popped   uint64
	closed   bool
	errored  bool

	log *zap.Logger
}

// Writer is the producer-side capability view of a ByteStream.
type Writer struct {
	s *ByteStream
}

// Reader is the consumer-side capability view of a ByteStream.
type Reader struct {
	s *ByteStream
}

// New constructs a ByteStream with the given capacity. A nil logger is
// replaced with a no-op logger so callers (notably unit tests) need not
// construct one.
func New(capacity uint64, log *zap.Logger) *ByteStream {
	if log == nil {
		log = zap.NewNop()
	}

	return &ByteStream{
		capacity: capacity,
		log:      log,
	}
}

// Capacity returns the fixed capacity the stream was constructed with.
func (s *ByteStream) Capacity() uint64 {
	return s.capacity
}

// SetError marks the stream as having suffered an unrecoverable error. Once
// set, it is never cleared.
func (s *ByteStream) SetError() {
	if !s.errored {
		s.log.Debug("bytestream: set_error")
	}

	s.errored = true
}

// HasError reports whether SetError has ever been called.
func (s *ByteStream) HasError() bool {
	return s.errored
}

// Writer returns the producer-side capability view.
func (s *ByteStream) Writer() *Writer {
	return &Writer{s: s}
}

// Reader returns the consumer-side capability view.
func (s *ByteStream) Reader() *Reader {
	return &Reader{s: s}
}

// Push appends up to AvailableCapacity() bytes from data, silently
// truncating the tail. It is a no-op when the stream is closed or data is
// empty. Returns the number of bytes actually buffered.
func (w *Writer) Push(data []byte) int {
	s := w.s
	if s.closed || len(data) == 0 {
		return 0
	}

	avail := w.AvailableCapacity()
	n := uint64(len(data))
	if n > avail {
		n = avail
	}

	if n == 0 {
		return 0
	}

	s.buf = append(s.buf, data[:n]...)
	s.pushed += n

	return int(n)
}

// Close marks end-of-input. Idempotent.
func (w *Writer) Close() {
	w.s.closed = true
}

// IsClosed reports whether Close has been called.
func (w *Writer) IsClosed() bool {
	return w.s.closed
}

// AvailableCapacity returns how many bytes can be pushed right now.
func (w *Writer) AvailableCapacity() uint64 {
	s := w.s

	return s.capacity - uint64(len(s.buf))
}

// BytesPushed returns the cumulative number of bytes ever pushed.
func (w *Writer) BytesPushed() uint64 {
	return w.s.pushed
}

// Peek returns a contiguous view of the currently buffered prefix. The
// returned slice aliases internal state and must not be retained past the
// next mutating call.
func (r *Reader) Peek() []byte {
	return r.s.buf
}

// Pop discards min(n, buffered) bytes from the front of the stream.
func (r *Reader) Pop(n uint64) {
	s := r.s
	if n == 0 {
		return
	}

	buffered := uint64(len(s.buf))
	if n > buffered {
		n = buffered
	}

	s.buf = s.buf[n:]
	s.popped += n
}

// BytesBuffered returns the number of bytes currently buffered.
func (r *Reader) BytesBuffered() uint64 {
	return uint64(len(r.s.buf))
}

// BytesPopped returns the cumulative number of bytes ever popped.
func (r *Reader) BytesPopped() uint64 {
	return r.s.popped
}

// IsFinished reports whether the stream is closed and fully drained.
func (r *Reader) IsFinished() bool {
	s := r.s

	return s.closed && len(s.buf) == 0
}
