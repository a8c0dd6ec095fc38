/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package netif implements the network interface: ARP resolution and
// Ethernet framing around outbound IP datagrams and inbound Ethernet
// frames.
package netif

import (
	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/internal/metrics"
	"github.com/minnow-stack/minnow/wire"
)

// Timer constants governing ARP cache and pending-request lifetimes.
const (
	ARPEntryTTLMs    = 30000
	ARPResponseTTLMs = 5000
)

// OutputPort is the non-blocking capability an Interface transmits frames
// through. The host environment supplies an implementation (a raw socket,
// a loopback queue, a test recorder).
type OutputPort interface {
	Transmit(frame wire.EthernetFrame)
}

type arpCacheEntry struct {
	mac   wire.MACAddr
	ttlMs int64
}

type pendingSend struct {
	nextHop wire.IPAddr
	dgram   wire.IPv4Datagram
}

// Interface owns one Ethernet/IP address pair, an ARP cache, the queues of
// datagrams awaiting address resolution, and the datagrams it has received
// and not yet handed to a router.
type Interface struct {
	name string
	mac  wire.MACAddr
	ip   wire.IPAddr
	port OutputPort

	arpCache           map[wire.IPAddr]arpCacheEntry
	pendingARPRequests map[wire.IPAddr]int64
	pendingDatagrams   map[wire.IPAddr][]pendingSend

	datagramsReceived []wire.IPv4Datagram

	log *zap.Logger
}

// New constructs an Interface bound to the given addresses and output
// port.
func New(name string, mac wire.MACAddr, ip wire.IPAddr, port OutputPort, log *zap.Logger) *Interface {
	if log == nil {
		log = zap.NewNop()
	}

	return &Interface{
		name:               name,
		mac:                mac,
		ip:                 ip,
		port:               port,
		arpCache:           make(map[wire.IPAddr]arpCacheEntry),
		pendingARPRequests: make(map[wire.IPAddr]int64),
		pendingDatagrams:   make(map[wire.IPAddr][]pendingSend),
		log:                log,
	}
}

// Name returns the interface's configured name (used by the Router as the
// label of its forwarded-datagram metric).
func (i *Interface) Name() string { return i.name }

// IP returns the interface's own IP address.
func (i *Interface) IP() wire.IPAddr { return i.ip }

// MAC returns the interface's own Ethernet address.
func (i *Interface) MAC() wire.MACAddr { return i.mac }

// PopReceived removes and returns the oldest received datagram, if any.
func (i *Interface) PopReceived() (wire.IPv4Datagram, bool) {
	if len(i.datagramsReceived) == 0 {
		return wire.IPv4Datagram{}, false
	}

	d := i.datagramsReceived[0]
	i.datagramsReceived = i.datagramsReceived[1:]

	return d, true
}

// HasReceived reports whether there is at least one queued received
// datagram.
func (i *Interface) HasReceived() bool {
	return len(i.datagramsReceived) > 0
}

// SendDatagram transmits dgram to next_hop, resolving its Ethernet address
// via ARP first if necessary.
func (i *Interface) SendDatagram(dgram wire.IPv4Datagram, nextHop wire.IPAddr) {
	if entry, ok := i.arpCache[nextHop]; ok {
		i.transmitIPv4(dgram, entry.mac)

		return
	}

	i.pendingDatagrams[nextHop] = append(i.pendingDatagrams[nextHop], pendingSend{nextHop: nextHop, dgram: dgram})

	if _, requested := i.pendingARPRequests[nextHop]; requested {
		return
	}

	i.pendingARPRequests[nextHop] = ARPResponseTTLMs

	i.port.Transmit(wire.EthernetFrame{
		Src:     i.mac,
		Dst:     wire.BroadcastMAC,
		Type:    wire.EtherTypeARP,
		Payload: wire.SerializeARP(wire.ARPMessage{Opcode: wire.ARPRequest, SenderMAC: i.mac, SenderIP: i.ip, TargetIP: nextHop}),
	})

	i.log.Debug("netif: broadcast arp request", zap.String("iface", i.name), zap.Stringer("target", nextHop))
}

// RecvFrame processes one inbound Ethernet frame.
func (i *Interface) RecvFrame(frame wire.EthernetFrame) {
	if frame.Dst != wire.BroadcastMAC && frame.Dst != i.mac {
		return
	}

	switch frame.Type {
	case wire.EtherTypeIPv4:
		dgram, err := wire.ParseIPv4(frame.Payload)
		if err != nil {
			i.log.Debug("netif: dropping malformed ipv4 payload", zap.Error(err))

			return
		}

		i.datagramsReceived = append(i.datagramsReceived, dgram)

	case wire.EtherTypeARP:
		msg, err := wire.ParseARP(frame.Payload)
		if err != nil {
			i.log.Debug("netif: dropping malformed arp payload", zap.Error(err))

			return
		}

		i.handleARP(msg)
	}
}

func (i *Interface) handleARP(msg wire.ARPMessage) {
	if msg.Opcode == wire.ARPRequest && msg.TargetIP == i.ip {
		i.port.Transmit(wire.EthernetFrame{
			Src:  i.mac,
			Dst:  msg.SenderMAC,
			Type: wire.EtherTypeARP,
			Payload: wire.SerializeARP(wire.ARPMessage{
				Opcode:    wire.ARPReply,
				SenderMAC: i.mac,
				SenderIP:  i.ip,
				TargetMAC: msg.SenderMAC,
				TargetIP:  msg.SenderIP,
			}),
		})
	}

	i.arpCache[msg.SenderIP] = arpCacheEntry{mac: msg.SenderMAC, ttlMs: ARPEntryTTLMs}

	queued, ok := i.pendingDatagrams[msg.SenderIP]
	if !ok {
		return
	}

	for _, p := range queued {
		i.transmitIPv4(p.dgram, msg.SenderMAC)
	}

	delete(i.pendingDatagrams, msg.SenderIP)
}

func (i *Interface) transmitIPv4(dgram wire.IPv4Datagram, dst wire.MACAddr) {
	i.port.Transmit(wire.EthernetFrame{
		Src:     i.mac,
		Dst:     dst,
		Type:    wire.EtherTypeIPv4,
		Payload: wire.SerializeIPv4(dgram),
	})
}

// Tick ages the ARP cache and the pending-request timers by ms
// milliseconds, expiring entries whose TTL has elapsed.
func (i *Interface) Tick(ms int64) {
	for ip, entry := range i.arpCache {
		entry.ttlMs -= ms
		if entry.ttlMs <= 0 {
			delete(i.arpCache, ip)

			continue
		}

		i.arpCache[ip] = entry
	}

	for ip, ttl := range i.pendingARPRequests {
		ttl -= ms
		if ttl <= 0 {
			delete(i.pendingARPRequests, ip)
			delete(i.pendingDatagrams, ip)

			continue
		}

		i.pendingARPRequests[ip] = ttl
	}

	metrics.ARPCacheSize.WithLabelValues(i.name).Set(float64(len(i.arpCache)))
	metrics.PendingARPRequests.WithLabelValues(i.name).Set(float64(len(i.pendingARPRequests)))
}
