/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

package tcp

import (
	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/bytestream"
	"github.com/minnow-stack/minnow/internal/metrics"
)

// Transmit is the injected callback a Sender uses to hand a segment to the
// network interface. The sender does not retain it beyond the call.
type Transmit func(TCPSenderMessage)

// Sender converts stream bytes into wire segments and manages outstanding
// bytes, retransmissions and RTO back-off. It owns an input ByteStream.
type Sender struct {
	input  *bytestream.ByteStream
	reader *bytestream.Reader

	isn        Wrap32
	initialRTO uint64
	curRTO     int64

	timerRunning bool

	nextSeqno        uint64
	outstandingBytes uint64
	outstanding      []TCPSenderMessage

	windowSize        uint64
	lastRawWindowZero bool // disables exponential back-off while probing a zero window

	consecutiveRetransmissions int

	synSent bool
	finSent bool

	flowID string
	log    *zap.Logger
}

// SetFlowID attaches a short identifier used to label this sender's
// retransmission metric; unset it defaults to the empty label.
func (s *Sender) SetFlowID(id string) {
	s.flowID = id
}

// NewSender constructs a Sender reading from a freshly created input
// ByteStream of the given capacity.
func NewSender(capacity uint64, isn Wrap32, initialRTOMs uint64, log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}

	input := bytestream.New(capacity, log)

	return &Sender{
		input:      input,
		reader:     input.Reader(),
		isn:        isn,
		initialRTO: initialRTOMs,
		curRTO:     int64(initialRTOMs),
		windowSize: 1,
		log:        log,
	}
}

// Input returns the sender's input ByteStream, for the application to
// write outbound bytes into and close when done.
func (s *Sender) Input() *bytestream.ByteStream {
	return s.input
}

// SequenceNumbersInFlight returns the number of outstanding (sent but not
// yet acknowledged) sequence numbers.
func (s *Sender) SequenceNumbersInFlight() uint64 {
	return s.outstandingBytes
}

// ConsecutiveRetransmissions returns the current back-to-back
// retransmission count.
func (s *Sender) ConsecutiveRetransmissions() int {
	return s.consecutiveRetransmissions
}

// MakeEmptyMessage returns a zero-length segment carrying the sender's
// current sequence position, with RST mirroring the input stream's error
// flag.
func (s *Sender) MakeEmptyMessage() TCPSenderMessage {
	return TCPSenderMessage{
		Seqno: Wrap(s.nextSeqno, s.isn),
		RST:   s.input.HasError(),
	}
}

// Push fills the receiver-advertised window with as many segments as fit,
// invoking transmit for each one.
func (s *Sender) Push(transmit Transmit) {
	for s.outstandingBytes < s.windowSize {
		msg := TCPSenderMessage{}

		if s.input.HasError() {
			msg.RST = true
		}

		if !s.synSent {
			msg.SYN = true
			msg.Seqno = s.isn
		} else {
			msg.Seqno = Wrap(s.nextSeqno, s.isn)
		}

		remaining := s.windowSize - s.outstandingBytes
		payloadLen := remaining
		if payloadLen > MaxPayloadSize {
			payloadLen = MaxPayloadSize
		}

		if buffered := s.reader.BytesBuffered(); payloadLen > buffered {
			payloadLen = buffered
		}

		if payloadLen > 0 {
			msg.Payload = append([]byte(nil), s.reader.Peek()[:payloadLen]...)
			s.reader.Pop(payloadLen)
		}

		if s.reader.IsFinished() && !s.finSent && msg.SequenceLength()+s.outstandingBytes < s.windowSize {
			msg.FIN = true
		}

		if msg.SequenceLength() == 0 {
			break
		}

		s.outstanding = append(s.outstanding, msg)
		s.nextSeqno += msg.SequenceLength()
		s.outstandingBytes += msg.SequenceLength()

		if msg.SYN {
			s.synSent = true
		}

		if msg.FIN {
			s.finSent = true
		}

		transmit(msg)

		if !s.timerRunning {
			s.timerRunning = true
			s.curRTO = int64(s.initialRTO)
		}
	}
}

// Receive processes an acknowledgment/window segment from the peer's
// receiver.
func (s *Sender) Receive(msg TCPReceiverMessage) {
	if msg.RST {
		s.input.SetError()
	}

	if msg.WindowSize == 0 {
		s.windowSize = 1
	} else {
		s.windowSize = uint64(msg.WindowSize)
	}

	s.lastRawWindowZero = msg.WindowSize == 0

	if msg.Ackno == nil {
		return
	}

	absAck := msg.Ackno.Unwrap(s.isn, s.nextSeqno)
	if absAck > s.nextSeqno {
		return
	}

	for len(s.outstanding) != 0 {
		front := s.outstanding[0]
		frontAbsStart := front.Seqno.Unwrap(s.isn, s.nextSeqno)

		if frontAbsStart+front.SequenceLength() > absAck {
			break
		}

		s.outstanding = s.outstanding[1:]
		s.outstandingBytes -= front.SequenceLength()
		s.consecutiveRetransmissions = 0
		s.curRTO = int64(s.initialRTO)

		if s.outstandingBytes == 0 {
			s.timerRunning = false
		} else {
			s.timerRunning = true
		}
	}
}

// Tick advances the retransmission timer by msSinceLastTick, retransmitting
// the oldest outstanding segment and backing off the RTO if it has
// expired.
func (s *Sender) Tick(msSinceLastTick int64, transmit Transmit) {
	if s.timerRunning {
		s.curRTO -= msSinceLastTick
	}

	if s.curRTO > 0 || len(s.outstanding) == 0 {
		return
	}

	transmit(s.outstanding[0])
	s.consecutiveRetransmissions++
	metrics.Retransmissions.WithLabelValues(s.flowID).Inc()

	if !s.lastRawWindowZero {
		s.curRTO = int64(s.initialRTO) << uint(s.consecutiveRetransmissions)
	} else {
		s.curRTO = int64(s.initialRTO)
	}
}
