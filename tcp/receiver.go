/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

package tcp

import (
	"math"

	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/reassembler"
)

// Receiver translates wire segments into stream writes and produces
// acknowledgments with flow-control windows. It owns a Reassembler.
type Receiver struct {
	re *reassembler.Reassembler

	isn     Wrap32
	synSeen bool

	log *zap.Logger
}

// NewReceiver constructs a Receiver whose assembled bytes are buffered up
// to capacity.
func NewReceiver(capacity uint64, log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}

	return &Receiver{
		re:  reassembler.New(capacity, log),
		log: log,
	}
}

// Output returns the receiver's Reassembler, whose output stream the
// application reads from.
func (r *Receiver) Output() *reassembler.Reassembler {
	return r.re
}

// Receive processes one inbound segment.
func (r *Receiver) Receive(msg TCPSenderMessage) {
	if msg.RST {
		r.re.SetError()

		return
	}

	if !r.synSeen {
		if !msg.SYN {
			return
		}

		r.synSeen = true
		r.isn = msg.Seqno
	}

	checkpoint := r.re.Writer().BytesPushed() + 1
	absSeqno := msg.Seqno.Unwrap(r.isn, checkpoint)

	var streamIndex uint64
	if msg.SYN {
		streamIndex = absSeqno
	} else {
		streamIndex = absSeqno - 1
	}

	r.re.Insert(streamIndex, msg.Payload, msg.FIN)
}

// Ackno returns the next absolute sequence number expected, or nil before
// the SYN has been observed.
func (r *Receiver) Ackno() *Wrap32 {
	if !r.synSeen {
		return nil
	}

	n := r.re.Writer().BytesPushed() + 1
	if r.re.Writer().IsClosed() {
		n++
	}

	ackno := Wrap(n, r.isn)

	return &ackno
}

// Send returns the receiver's current acknowledgment and advertised
// window.
func (r *Receiver) Send() TCPReceiverMessage {
	avail := r.re.Writer().AvailableCapacity()
	if avail > math.MaxUint16 {
		avail = math.MaxUint16
	}

	return TCPReceiverMessage{
		Ackno:      r.Ackno(),
		WindowSize: uint16(avail),
		RST:        r.re.HasError(),
	}
}
