package bytestream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapacity(t *testing.T) {
	s := New(4, nil)
	w, r := s.Writer(), s.Reader()

	n := w.Push([]byte("hello"))
	require.Equal(t, 4, n)
	require.Equal(t, []byte("hell"), r.Peek())
	require.Equal(t, uint64(4), w.BytesPushed())

	r.Pop(2)
	require.Equal(t, []byte("ll"), r.Peek())
	require.Equal(t, uint64(2), r.BytesPopped())
	require.Equal(t, uint64(2), w.AvailableCapacity())

	n = w.Push([]byte("o"))
	require.Equal(t, 1, n)
	require.Equal(t, []byte("llo"), r.Peek())
	require.Equal(t, uint64(5), w.BytesPushed())

	w.Close()
	r.Pop(3)
	require.True(t, r.IsFinished())
}

func TestPushNoopWhenClosed(t *testing.T) {
	s := New(10, nil)
	w, r := s.Writer(), s.Reader()

	w.Close()
	n := w.Push([]byte("x"))
	require.Equal(t, 0, n)
	require.Equal(t, uint64(0), r.BytesBuffered())
}

func TestPushEmptyIsNoop(t *testing.T) {
	s := New(10, nil)
	w := s.Writer()

	require.Equal(t, 0, w.Push(nil))
	require.Equal(t, uint64(0), w.BytesPushed())
}

func TestPopClampsToBuffered(t *testing.T) {
	s := New(10, nil)
	w, r := s.Writer(), s.Reader()

	w.Push([]byte("ab"))
	r.Pop(100)
	require.Equal(t, uint64(2), r.BytesPopped())
	require.Equal(t, uint64(0), r.BytesBuffered())
}

func TestErrorFlagSticky(t *testing.T) {
	s := New(10, nil)
	require.False(t, s.HasError())
	s.SetError()
	require.True(t, s.HasError())
	s.SetError()
	require.True(t, s.HasError())
}

func TestNotFinishedUntilClosedAndDrained(t *testing.T) {
	s := New(10, nil)
	w, r := s.Writer(), s.Reader()

	w.Push([]byte("a"))
	require.False(t, r.IsFinished())

	w.Close()
	require.False(t, r.IsFinished())

	r.Pop(1)
	require.True(t, r.IsFinished())
}
