/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package tcp implements the TCP Receiver and Sender state machines: the
// translation between wire segments and stream bytes, windowed flow
// control, and RTO-driven retransmission.
package tcp

// MaxPayloadSize bounds how many payload bytes a single outbound segment
// may carry.
const MaxPayloadSize = 1000

// TCPSenderMessage is a segment as emitted by the Sender and consumed by
// the Receiver.
type TCPSenderMessage struct {
	Seqno   Wrap32
	SYN     bool
	Payload []byte
	FIN     bool
	RST     bool
}

// SequenceLength counts SYN and FIN as one byte each, plus the payload.
func (m TCPSenderMessage) SequenceLength() uint64 {
	n := uint64(len(m.Payload))
	if m.SYN {
		n++
	}

	if m.FIN {
		n++
	}

	return n
}

// TCPReceiverMessage is the acknowledgment/window segment sent back from
// the Receiver to the Sender.
type TCPReceiverMessage struct {
	Ackno      *Wrap32
	WindowSize uint16
	RST        bool
}
