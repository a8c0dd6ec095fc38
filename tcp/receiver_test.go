package tcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReceiverBeforeSYN(t *testing.T) {
	r := NewReceiver(64, nil)
	require.Nil(t, r.Ackno())

	r.Receive(TCPSenderMessage{Seqno: WrapUint32(5), Payload: []byte("hi")})
	require.Nil(t, r.Ackno())
}

func TestReceiverSYNDataFIN(t *testing.T) {
	r := NewReceiver(64, nil)

	isn := WrapUint32(100)
	r.Receive(TCPSenderMessage{Seqno: isn, SYN: true})

	ackno := r.Ackno()
	require.NotNil(t, ackno)
	require.Equal(t, isn.Raw()+1, ackno.Raw())

	r.Receive(TCPSenderMessage{Seqno: Wrap(1, isn), Payload: []byte("hello")})
	ackno = r.Ackno()
	require.Equal(t, isn.Raw()+6, ackno.Raw())

	r.Receive(TCPSenderMessage{Seqno: Wrap(6, isn), FIN: true})
	ackno = r.Ackno()
	require.Equal(t, isn.Raw()+7, ackno.Raw())
	require.True(t, r.Output().Writer().IsClosed())
}

func TestReceiverRSTSetsError(t *testing.T) {
	r := NewReceiver(64, nil)
	r.Receive(TCPSenderMessage{Seqno: WrapUint32(0), SYN: true})
	r.Receive(TCPSenderMessage{RST: true})

	msg := r.Send()
	require.True(t, msg.RST)
}

func TestReceiverAcknoMonotonic(t *testing.T) {
	r := NewReceiver(64, nil)
	isn := WrapUint32(0)

	r.Receive(TCPSenderMessage{Seqno: isn, SYN: true})
	a1 := r.Ackno().Raw()

	r.Receive(TCPSenderMessage{Seqno: Wrap(1, isn), Payload: []byte("abc")})
	a2 := r.Ackno().Raw()

	require.True(t, a2-a1 == 3)
}

func TestReceiverWindowSize(t *testing.T) {
	r := NewReceiver(10, nil)
	r.Receive(TCPSenderMessage{Seqno: WrapUint32(0), SYN: true})

	msg := r.Send()
	require.Equal(t, uint16(10), msg.WindowSize)

	r.Receive(TCPSenderMessage{Seqno: Wrap(1, WrapUint32(0)), Payload: []byte("abcd")})
	msg = r.Send()
	require.Equal(t, uint16(6), msg.WindowSize)
}
