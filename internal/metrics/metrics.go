/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Package metrics exposes the core's runtime counters and gauges as
// Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retransmissions counts TCP Sender retransmissions, labeled by
// connection identity.
var Retransmissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "minnow_tcp_retransmissions_total",
		Help: "Total number of segments retransmitted by a TCP sender.",
	},
	[]string{"flow"},
)

// DroppedDatagrams counts datagrams dropped by a Router, labeled by
// reason (no_route, ttl_expired).
var DroppedDatagrams = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "minnow_router_dropped_datagrams_total",
		Help: "Total number of datagrams dropped while routing.",
	},
	[]string{"reason"},
)

// ForwardedDatagrams counts datagrams successfully forwarded, labeled by
// the interface they were sent on.
var ForwardedDatagrams = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "minnow_router_forwarded_datagrams_total",
		Help: "Total number of datagrams forwarded per interface.",
	},
	[]string{"interface"},
)

// ARPCacheSize reports the current number of entries in a network
// interface's ARP cache, labeled by interface name.
var ARPCacheSize = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "minnow_netif_arp_cache_size",
		Help: "Current number of resolved ARP cache entries.",
	},
	[]string{"interface"},
)

// PendingARPRequests reports the current number of unresolved ARP
// requests, labeled by interface name.
var PendingARPRequests = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "minnow_netif_pending_arp_requests",
		Help: "Current number of outstanding ARP requests awaiting a reply.",
	},
	[]string{"interface"},
)

// MustRegister registers every collector in this package against reg. It
// panics on a duplicate registration, matching prometheus.MustRegister's
// own contract.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Retransmissions, DroppedDatagrams, ForwardedDatagrams, ARPCacheSize, PendingARPRequests)
}
