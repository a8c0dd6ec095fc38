package netif

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minnow-stack/minnow/wire"
)

type recordingPort struct {
	frames []wire.EthernetFrame
}

func (p *recordingPort) Transmit(frame wire.EthernetFrame) {
	p.frames = append(p.frames, frame)
}

func TestARPResolutionThenDrain(t *testing.T) {
	port := &recordingPort{}
	selfMAC := wire.MACAddr{1, 1, 1, 1, 1, 1}
	selfIP := wire.IPAddr(0x0a000001)
	peerIP := wire.IPAddr(0x0a000002)
	peerMAC := wire.MACAddr{2, 2, 2, 2, 2, 2}

	iface := New("eth0", selfMAC, selfIP, port, nil)

	dgram := wire.IPv4Datagram{Src: selfIP, Dst: peerIP, TTL: 64, Payload: []byte("x")}
	iface.SendDatagram(dgram, peerIP)

	require.Len(t, port.frames, 1)
	require.Equal(t, wire.BroadcastMAC, port.frames[0].Dst)
	require.Equal(t, wire.EtherTypeARP, port.frames[0].Type)

	// a second send before the reply arrives must not re-broadcast.
	iface.SendDatagram(dgram, peerIP)
	require.Len(t, port.frames, 1)

	reply := wire.EthernetFrame{
		Src:  peerMAC,
		Dst:  selfMAC,
		Type: wire.EtherTypeARP,
		Payload: wire.SerializeARP(wire.ARPMessage{
			Opcode:    wire.ARPReply,
			SenderMAC: peerMAC,
			SenderIP:  peerIP,
			TargetMAC: selfMAC,
			TargetIP:  selfIP,
		}),
	}
	iface.RecvFrame(reply)

	require.Len(t, port.frames, 3)
	require.Equal(t, peerMAC, port.frames[1].Dst)
	require.Equal(t, wire.EtherTypeIPv4, port.frames[1].Type)
	require.Equal(t, peerMAC, port.frames[2].Dst)

	// cache hit: a third send now goes straight out, no further ARP traffic.
	iface.SendDatagram(dgram, peerIP)
	require.Len(t, port.frames, 4)
	require.Equal(t, wire.EtherTypeIPv4, port.frames[3].Type)
}

func TestARPCacheExpiry(t *testing.T) {
	port := &recordingPort{}
	selfMAC := wire.MACAddr{1, 1, 1, 1, 1, 1}
	selfIP := wire.IPAddr(0x0a000001)
	peerIP := wire.IPAddr(0x0a000002)
	peerMAC := wire.MACAddr{2, 2, 2, 2, 2, 2}

	iface := New("eth0", selfMAC, selfIP, port, nil)
	iface.RecvFrame(wire.EthernetFrame{
		Src:  peerMAC,
		Dst:  selfMAC,
		Type: wire.EtherTypeARP,
		Payload: wire.SerializeARP(wire.ARPMessage{
			Opcode: wire.ARPRequest, SenderMAC: peerMAC, SenderIP: peerIP, TargetIP: 0,
		}),
	})
	require.Contains(t, iface.arpCache, peerIP)

	iface.Tick(30001)
	require.NotContains(t, iface.arpCache, peerIP)
}

func TestPendingARPRequestExpiryDropsQueuedDatagrams(t *testing.T) {
	port := &recordingPort{}
	selfMAC := wire.MACAddr{1, 1, 1, 1, 1, 1}
	selfIP := wire.IPAddr(0x0a000001)
	peerIP := wire.IPAddr(0x0a000002)

	iface := New("eth0", selfMAC, selfIP, port, nil)
	iface.SendDatagram(wire.IPv4Datagram{Src: selfIP, Dst: peerIP, TTL: 64}, peerIP)
	require.Contains(t, iface.pendingARPRequests, peerIP)
	require.Contains(t, iface.pendingDatagrams, peerIP)

	iface.Tick(5001)
	require.NotContains(t, iface.pendingARPRequests, peerIP)
	require.NotContains(t, iface.pendingDatagrams, peerIP)
}

func TestRecvFrameDropsWrongDestination(t *testing.T) {
	port := &recordingPort{}
	iface := New("eth0", wire.MACAddr{1, 1, 1, 1, 1, 1}, wire.IPAddr(1), port, nil)

	iface.RecvFrame(wire.EthernetFrame{
		Src:  wire.MACAddr{9, 9, 9, 9, 9, 9},
		Dst:  wire.MACAddr{8, 8, 8, 8, 8, 8},
		Type: wire.EtherTypeIPv4,
		Payload: wire.SerializeIPv4(wire.IPv4Datagram{Src: 2, Dst: 1, TTL: 64}),
	})

	require.False(t, iface.HasReceived())
}
