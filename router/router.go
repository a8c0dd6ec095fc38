/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package router forwards IPv4 datagrams across a set of network
// interfaces using longest-prefix-match routing.
package router

import (
	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/internal/metrics"
	"github.com/minnow-stack/minnow/netif"
	"github.com/minnow-stack/minnow/wire"
)

// RouteEntry is one row of the routing table.
type RouteEntry struct {
	Prefix         wire.IPAddr
	PrefixLength   int
	NextHop        *wire.IPAddr
	InterfaceIndex int
}

func (e RouteEntry) matches(dst wire.IPAddr) bool {
	if e.PrefixLength == 0 {
		return true
	}

	mask := wire.IPAddr(^uint32(0) << uint(32-e.PrefixLength))

	return dst&mask == e.Prefix&mask
}

// Router owns a set of network interfaces and a routing table, and
// forwards datagrams between them by longest-prefix match.
type Router struct {
	interfaces []*netif.Interface
	routes     []RouteEntry

	log *zap.Logger
}

// New constructs an empty Router over the given interfaces, indexed in
// the order given (interface index 0 is interfaces[0], and so on).
func New(interfaces []*netif.Interface, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}

	return &Router{interfaces: interfaces, log: log}
}

// AddRoute appends an entry to the routing table.
func (r *Router) AddRoute(prefix wire.IPAddr, prefixLength int, nextHop *wire.IPAddr, interfaceIndex int) {
	r.routes = append(r.routes, RouteEntry{
		Prefix:         prefix,
		PrefixLength:   prefixLength,
		NextHop:        nextHop,
		InterfaceIndex: interfaceIndex,
	})
}

// RouteOneDatagram forwards a single datagram according to the longest
// matching route, dropping it if no route matches or its TTL has
// expired.
func (r *Router) RouteOneDatagram(dgram wire.IPv4Datagram) {
	entry, ok := r.bestRoute(dgram.Dst)
	if !ok {
		r.log.Debug("router: no route, dropping", zap.Stringer("dst", dgram.Dst))
		metrics.DroppedDatagrams.WithLabelValues("no_route").Inc()

		return
	}

	if dgram.TTL <= 1 {
		r.log.Debug("router: ttl exhausted, dropping", zap.Stringer("dst", dgram.Dst))
		metrics.DroppedDatagrams.WithLabelValues("ttl_expired").Inc()

		return
	}

	dgram.TTL--

	nextHop := dgram.Dst
	if entry.NextHop != nil {
		nextHop = *entry.NextHop
	}

	iface := r.interfaces[entry.InterfaceIndex]
	iface.SendDatagram(dgram, nextHop)
	metrics.ForwardedDatagrams.WithLabelValues(iface.Name()).Inc()
}

func (r *Router) bestRoute(dst wire.IPAddr) (RouteEntry, bool) {
	var (
		best      RouteEntry
		found     bool
		bestPfxLn = -1
	)

	for _, e := range r.routes {
		if !e.matches(dst) {
			continue
		}

		if e.PrefixLength > bestPfxLn {
			best = e
			bestPfxLn = e.PrefixLength
			found = true
		}
	}

	return best, found
}

// Route drains every interface's received-datagram queue, front to back,
// routing each datagram in turn.
func (r *Router) Route() {
	for _, iface := range r.interfaces {
		for {
			dgram, ok := iface.PopReceived()
			if !ok {
				break
			}

			r.RouteOneDatagram(dgram)
		}
	}
}
