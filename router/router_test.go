package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minnow-stack/minnow/netif"
	"github.com/minnow-stack/minnow/wire"
)

type recordingPort struct {
	frames []wire.EthernetFrame
}

func (p *recordingPort) Transmit(frame wire.EthernetFrame) {
	p.frames = append(p.frames, frame)
}

func newTestInterface(name string) (*netif.Interface, *recordingPort) {
	port := &recordingPort{}
	iface := netif.New(name, wire.MACAddr{1, 2, 3, 4, 5, 6}, wire.IPAddr(0x0a000001), port, nil)

	return iface, port
}

func ipv4(s string) wire.IPAddr {
	var a, b, c, d uint32
	if _, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &b, &c, &d); err != nil {
		panic(err)
	}

	return wire.IPAddr(a<<24 | b<<16 | c<<8 | d)
}

func TestLongestPrefixMatch(t *testing.T) {
	if0, p0 := newTestInterface("if0")
	if1, p1 := newTestInterface("if1")
	if2, p2 := newTestInterface("if2")

	r := New([]*netif.Interface{if0, if1, if2}, nil)
	r.AddRoute(0, 0, nil, 0)
	r.AddRoute(ipv4("10.0.0.0"), 8, nil, 1)
	r.AddRoute(ipv4("10.0.0.0"), 16, nil, 2)

	r.RouteOneDatagram(wire.IPv4Datagram{Dst: ipv4("10.0.5.7"), TTL: 64})
	r.RouteOneDatagram(wire.IPv4Datagram{Dst: ipv4("10.1.5.7"), TTL: 64})
	r.RouteOneDatagram(wire.IPv4Datagram{Dst: ipv4("192.0.2.1"), TTL: 64})

	require.Len(t, p2.frames, 1)
	require.Len(t, p1.frames, 1)
	require.Len(t, p0.frames, 1)
}

func TestTTLExpiredDatagramDropped(t *testing.T) {
	if0, p0 := newTestInterface("if0")

	r := New([]*netif.Interface{if0}, nil)
	r.AddRoute(0, 0, nil, 0)

	r.RouteOneDatagram(wire.IPv4Datagram{Dst: ipv4("192.0.2.1"), TTL: 1})
	require.Len(t, p0.frames, 0)
}

func TestNoMatchingRouteDropped(t *testing.T) {
	if0, p0 := newTestInterface("if0")

	r := New([]*netif.Interface{if0}, nil)
	r.AddRoute(ipv4("10.0.0.0"), 8, nil, 0)

	r.RouteOneDatagram(wire.IPv4Datagram{Dst: ipv4("192.0.2.1"), TTL: 64})
	require.Len(t, p0.frames, 0)
}
