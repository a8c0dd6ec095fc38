/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

package wire

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"

	"github.com/minnow-stack/minnow/tcp"
)

// SerializeTCPSenderMessage renders a wire-to-receiver segment as bytes,
// carrying the raw sequence number in the TCP header's Seq field. Ports,
// ack number and window are left zero, as the core does not model them.
func SerializeTCPSenderMessage(msg tcp.TCPSenderMessage) []byte {
	seg := &layers.TCP{
		Seq:    msg.Seqno.Raw(),
		SYN:    msg.SYN,
		FIN:    msg.FIN,
		RST:    msg.RST,
		Window: 0,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}

	if err := gopacket.SerializeLayers(buf, opts, seg, gopacket.Payload(msg.Payload)); err != nil {
		panic(errors.Wrap(err, "wire: serialize tcp sender message"))
	}

	return buf.Bytes()
}

// ParseTCPSenderMessage parses raw into a TCPSenderMessage.
func ParseTCPSenderMessage(raw []byte) (tcp.TCPSenderMessage, error) {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeTCP, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	tcpLayer := pkt.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return tcp.TCPSenderMessage{}, errors.New("wire: no tcp layer")
	}

	seg, ok := tcpLayer.(*layers.TCP)
	if !ok {
		return tcp.TCPSenderMessage{}, errors.New("wire: malformed tcp layer")
	}

	return tcp.TCPSenderMessage{
		Seqno:   tcp.WrapUint32(seg.Seq),
		SYN:     seg.SYN,
		Payload: append([]byte(nil), seg.Payload...),
		FIN:     seg.FIN,
		RST:     seg.RST,
	}, nil
}

// SerializeTCPReceiverMessage renders a wire-to-sender acknowledgment as
// bytes.
func SerializeTCPReceiverMessage(msg tcp.TCPReceiverMessage) []byte {
	seg := &layers.TCP{
		ACK:    msg.Ackno != nil,
		RST:    msg.RST,
		Window: msg.WindowSize,
	}

	if msg.Ackno != nil {
		seg.Ack = msg.Ackno.Raw()
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}

	if err := gopacket.SerializeLayers(buf, opts, seg); err != nil {
		panic(errors.Wrap(err, "wire: serialize tcp receiver message"))
	}

	return buf.Bytes()
}

// ParseTCPReceiverMessage parses raw into a TCPReceiverMessage.
func ParseTCPReceiverMessage(raw []byte) (tcp.TCPReceiverMessage, error) {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeTCP, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	tcpLayer := pkt.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return tcp.TCPReceiverMessage{}, errors.New("wire: no tcp layer")
	}

	seg, ok := tcpLayer.(*layers.TCP)
	if !ok {
		return tcp.TCPReceiverMessage{}, errors.New("wire: malformed tcp layer")
	}

	msg := tcp.TCPReceiverMessage{
		WindowSize: seg.Window,
		RST:        seg.RST,
	}

	if seg.ACK {
		ackno := tcp.WrapUint32(seg.Ack)
		msg.Ackno = &ackno
	}

	return msg, nil
}
