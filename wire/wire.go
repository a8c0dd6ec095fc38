/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package wire (de)serializes the Ethernet, ARP and IPv4 frames the core
// reads and mutates, and the TCP segments exchanged between a Receiver and
// a Sender. It is the concrete stand-in for the external collaborator the
// core components assume; netif and router use its frame and datagram
// types directly, while the tcp package does not import it.
package wire

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

// MACAddr is a 6-byte Ethernet hardware address, comparable with ==.
type MACAddr [6]byte

// BroadcastMAC is the Ethernet broadcast address.
var BroadcastMAC = MACAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (m MACAddr) String() string {
	return net.HardwareAddr(m[:]).String()
}

// IPAddr is an IPv4 address in host byte order, comparable with == and
// usable as a map key.
type IPAddr uint32

func (a IPAddr) String() string {
	return net.IPv4(byte(a>>24), byte(a>>16), byte(a>>8), byte(a)).String()
}

// EtherType distinguishes the payload carried by an Ethernet frame.
type EtherType int

const (
	EtherTypeIPv4 EtherType = iota
	EtherTypeARP
)

// EthernetFrame is the core's view of an Ethernet II frame.
type EthernetFrame struct {
	Src     MACAddr
	Dst     MACAddr
	Type    EtherType
	Payload []byte
}

// SerializeEthernet renders frame as wire bytes using the EtherType-tagged
// Ethernet header plus its already-serialized payload.
func SerializeEthernet(frame EthernetFrame) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr(frame.Src[:]),
		DstMAC:       net.HardwareAddr(frame.Dst[:]),
		EthernetType: etherTypeToLayers(frame.Type),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}

	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(frame.Payload)); err != nil {
		// the header fields above are always well-formed, so serialization
		// of a fixed 14-byte header cannot fail in practice.
		panic(errors.Wrap(err, "wire: serialize ethernet"))
	}

	return buf.Bytes()
}

// ParseEthernet parses raw into an EthernetFrame.
func ParseEthernet(raw []byte) (EthernetFrame, error) {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return EthernetFrame{}, errors.New("wire: no ethernet layer")
	}

	eth, ok := ethLayer.(*layers.Ethernet)
	if !ok {
		return EthernetFrame{}, errors.New("wire: malformed ethernet layer")
	}

	etype, err := etherTypeFromLayers(eth.EthernetType)
	if err != nil {
		return EthernetFrame{}, err
	}

	var frame EthernetFrame
	copy(frame.Src[:], eth.SrcMAC)
	copy(frame.Dst[:], eth.DstMAC)
	frame.Type = etype
	frame.Payload = append([]byte(nil), eth.Payload...)

	return frame, nil
}

func etherTypeToLayers(t EtherType) layers.EthernetType {
	if t == EtherTypeARP {
		return layers.EthernetTypeARP
	}

	return layers.EthernetTypeIPv4
}

func etherTypeFromLayers(t layers.EthernetType) (EtherType, error) {
	switch t {
	case layers.EthernetTypeIPv4:
		return EtherTypeIPv4, nil
	case layers.EthernetTypeARP:
		return EtherTypeARP, nil
	default:
		return 0, errors.Errorf("wire: unsupported ethertype %v", t)
	}
}

// ARPOpcode distinguishes an ARP request from a reply.
type ARPOpcode int

const (
	ARPRequest ARPOpcode = iota
	ARPReply
)

// ARPMessage is the core's view of an ARP packet.
type ARPMessage struct {
	Opcode    ARPOpcode
	SenderMAC MACAddr
	SenderIP  IPAddr
	TargetMAC MACAddr
	TargetIP  IPAddr
}

// SerializeARP renders msg as wire bytes.
func SerializeARP(msg ARPMessage) []byte {
	op := uint16(layers.ARPRequest)
	if msg.Opcode == ARPReply {
		op = layers.ARPReply
	}

	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         op,
		SourceHwAddress:   msg.SenderMAC[:],
		SourceProtAddress: ipAddrToBytes(msg.SenderIP),
		DstHwAddress:      msg.TargetMAC[:],
		DstProtAddress:    ipAddrToBytes(msg.TargetIP),
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, arp); err != nil {
		panic(errors.Wrap(err, "wire: serialize arp"))
	}

	return buf.Bytes()
}

// ParseARP parses raw into an ARPMessage.
func ParseARP(raw []byte) (ARPMessage, error) {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeARP, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	arpLayer := pkt.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		return ARPMessage{}, errors.New("wire: no arp layer")
	}

	arp, ok := arpLayer.(*layers.ARP)
	if !ok {
		return ARPMessage{}, errors.New("wire: malformed arp layer")
	}

	msg := ARPMessage{
		SenderIP: bytesToIPAddr(arp.SourceProtAddress),
		TargetIP: bytesToIPAddr(arp.DstProtAddress),
	}

	if arp.Operation == layers.ARPReply {
		msg.Opcode = ARPReply
	}

	copy(msg.SenderMAC[:], arp.SourceHwAddress)
	copy(msg.TargetMAC[:], arp.DstHwAddress)

	return msg, nil
}

// IPv4Datagram is the core's view of an IPv4 packet: the fields the core
// reads and mutates, plus the payload it treats as opaque.
type IPv4Datagram struct {
	Src      IPAddr
	Dst      IPAddr
	TTL      uint8
	Protocol uint8
	Payload  []byte
}

// computeLayer builds the gopacket IPv4 layer for serialization; the
// header checksum is recomputed from these fields by SerializeIPv4.
func (d IPv4Datagram) computeLayer() *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      d.TTL,
		Protocol: layers.IPProtocol(d.Protocol),
		SrcIP:    ipAddrToBytes(d.Src),
		DstIP:    ipAddrToBytes(d.Dst),
	}
}

// SerializeIPv4 renders dgram as wire bytes, recomputing the header
// checksum over the current field values.
func SerializeIPv4(dgram IPv4Datagram) []byte {
	ip := dgram.computeLayer()

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}

	if err := gopacket.SerializeLayers(buf, opts, ip, gopacket.Payload(dgram.Payload)); err != nil {
		panic(errors.Wrap(err, "wire: serialize ipv4"))
	}

	return buf.Bytes()
}

// ParseIPv4 parses raw into an IPv4Datagram.
func ParseIPv4(raw []byte) (IPv4Datagram, error) {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeIPv4, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	ipLayer := pkt.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return IPv4Datagram{}, errors.New("wire: no ipv4 layer")
	}

	ip, ok := ipLayer.(*layers.IPv4)
	if !ok {
		return IPv4Datagram{}, errors.New("wire: malformed ipv4 layer")
	}

	return IPv4Datagram{
		Src:      bytesToIPAddr(ip.SrcIP),
		Dst:      bytesToIPAddr(ip.DstIP),
		TTL:      ip.TTL,
		Protocol: uint8(ip.Protocol),
		Payload:  append([]byte(nil), ip.Payload...),
	}, nil
}

func ipAddrToBytes(a IPAddr) net.IP {
	return net.IPv4(byte(a>>24), byte(a>>16), byte(a>>8), byte(a)).To4()
}

func bytesToIPAddr(b []byte) IPAddr {
	if len(b) < 4 {
		return 0
	}

	return IPAddr(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}
