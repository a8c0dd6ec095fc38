/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package reassembler reconstructs an ordered byte stream from possibly
// out-of-order, overlapping substrings and writes the result into a
// bytestream.ByteStream.
package reassembler

import (
	"sort"

	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/bytestream"
)

// segment is a pending, not-yet-assembled run of bytes, keyed by the
// absolute index of its first byte.
type segment struct {
	start uint64
	data  []byte
}

func (s segment) end() uint64 {
	return s.start + uint64(len(s.data))
}

// Reassembler owns one output ByteStream and a set of pending segments.
// Pending segments are kept pairwise non-overlapping and non-adjacent; any
// segment that touches or overlaps an incoming insert is merged into it.
type Reassembler struct {
	stream *bytestream.ByteStream
	writer *bytestream.Writer
	reader *bytestream.Reader

	pending []segment

	eofKnown bool
	eofIndex uint64

	log *zap.Logger
}

// New constructs a Reassembler owning a freshly created output ByteStream
// of the given capacity.
func New(capacity uint64, log *zap.Logger) *Reassembler {
	if log == nil {
		log = zap.NewNop()
	}

	out := bytestream.New(capacity, log)

	return &Reassembler{
		stream: out,
		writer: out.Writer(),
		reader: out.Reader(),
		log:    log,
	}
}

// Output returns the underlying ByteStream, for callers that need to read
// the assembled bytes back out.
func (re *Reassembler) Output() *bytestream.ByteStream {
	return re.stream
}

// Writer returns the reassembler's output writer view (used by the TCP
// Receiver for the pushed-byte count, closed state and window size).
func (re *Reassembler) Writer() *bytestream.Writer {
	return re.writer
}

// Reader returns the reassembler's output reader view, for callers that
// read the assembled bytes back out.
func (re *Reassembler) Reader() *bytestream.Reader {
	return re.reader
}

// SetError marks the underlying stream as having suffered an error (used
// by the TCP Receiver on RST).
func (re *Reassembler) SetError() {
	re.stream.SetError()
}

// HasError reports whether the underlying stream has errored.
func (re *Reassembler) HasError() bool {
	return re.stream.HasError()
}

// BytesPending returns the number of bytes currently buffered but not yet
// contiguous with the front of the stream.
func (re *Reassembler) BytesPending() uint64 {
	var n uint64
	for _, s := range re.pending {
		n += uint64(len(s.data))
	}

	return n
}

// Insert offers a substring whose bytes begin at absolute index firstIndex.
// isLast, when true, declares that firstIndex+len(data) is the index one
// past the last byte of the stream (EOF), latched on its first occurrence.
func (re *Reassembler) Insert(firstIndex uint64, data []byte, isLast bool) {
	if isLast && !re.eofKnown {
		re.eofKnown = true
		re.eofIndex = firstIndex + uint64(len(data))

		re.log.Debug("reassembler: latched eof index", zap.Uint64("eofIndex", re.eofIndex))
	}

	if len(data) > 0 {
		start, clipped := re.clip(firstIndex, data)
		if len(clipped) > 0 {
			re.mergeInsert(start, clipped)
		}
	}

	re.drain()

	if re.eofKnown && re.writer.BytesPushed() == re.eofIndex {
		re.writer.Close()
	}
}

// clip restricts data to the acceptable window
// [firstUnassembled, firstUnacceptable), truncating the head or tail as
// needed. It returns the (possibly adjusted) start index and the
// (possibly shortened, possibly empty) slice to insert.
func (re *Reassembler) clip(firstIndex uint64, data []byte) (uint64, []byte) {
	firstUnassembled := re.writer.BytesPushed()
	firstUnacceptable := re.reader.BytesPopped() + re.stream.Capacity()

	start := firstIndex
	end := firstIndex + uint64(len(data))

	if end <= firstUnassembled || start >= firstUnacceptable {
		return start, nil
	}

	if start < firstUnassembled {
		data = data[firstUnassembled-start:]
		start = firstUnassembled
	}

	if start+uint64(len(data)) > firstUnacceptable {
		data = data[:firstUnacceptable-start]
	}

	return start, data
}

// mergeInsert folds the incoming (start, data) pair into the pending set,
// absorbing any segment it overlaps or touches. Where two sources disagree
// on an overlapping byte, the already-stored value wins.
func (re *Reassembler) mergeInsert(start uint64, data []byte) {
	end := start + uint64(len(data))

	kept := make([]segment, 0, len(re.pending)+1)

	for _, seg := range re.pending {
		if seg.end() < start || seg.start > end {
			kept = append(kept, seg)

			continue
		}

		unionStart := min64(start, seg.start)
		unionEnd := max64(end, seg.end())

		merged := make([]byte, unionEnd-unionStart)
		copy(merged[start-unionStart:], data)
		copy(merged[seg.start-unionStart:], seg.data) // existing bytes win

		start, end, data = unionStart, unionEnd, merged
	}

	kept = append(kept, segment{start: start, data: data})
	sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })

	re.pending = kept
}

// drain writes every pending segment contiguous with the front of the
// stream, in order, until the front is no longer covered.
func (re *Reassembler) drain() {
	for len(re.pending) > 0 && re.pending[0].start == re.writer.BytesPushed() {
		seg := re.pending[0]
		re.writer.Push(seg.data)
		re.pending = re.pending[1:]
	}
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}

	return b
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}
