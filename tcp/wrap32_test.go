package tcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	zero := WrapUint32(0)

	got := Wrap(3*(uint64(1)<<32)+17, zero).Unwrap(zero, 17)
	require.Equal(t, uint64(17), got)
}

func TestUnwrapTieBreaksUpward(t *testing.T) {
	zero := WrapUint32(0)

	got := Wrap(uint64(1)<<31+1, zero).Unwrap(zero, 0)
	require.Equal(t, uint64(1)<<31+1, got)

	// 2^31 and 3*2^31 are equally far from checkpoint 2^32: the larger wins.
	got = Wrap(uint64(1)<<31, zero).Unwrap(zero, uint64(1)<<32)
	require.Equal(t, uint64(3)<<31, got)
}

func TestRoundTripWithinHalfRange(t *testing.T) {
	zero := WrapUint32(1000)

	for _, n := range []uint64{0, 1, 1000, 1 << 20, (uint64(1) << 31) - 1} {
		w := Wrap(n, zero)
		require.Equal(t, n, w.Unwrap(zero, n))
	}
}

func TestUnwrapPicksClosestToCheckpoint(t *testing.T) {
	zero := WrapUint32(0)
	seqno := WrapUint32(17)

	// checkpoint far away: nearest absolute value with low bits == 17.
	got := seqno.Unwrap(zero, uint64(1)<<33)
	require.Equal(t, uint64(17)+(uint64(1)<<33), got)
}
