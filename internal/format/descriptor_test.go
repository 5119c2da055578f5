package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorInitAndAccessors(t *testing.T) {
	buf := make([]byte, DescriptorSize+8)
	d, err := ParseDescriptor(buf)
	require.NoError(t, err)

	d.Init(64, 17)
	require.Equal(t, DescriptorToken, d.Token())
	require.Equal(t, StateAllocated, d.State())
	require.Equal(t, uint32(64), d.Capacity())
	require.Equal(t, uint32(17), d.Size())
	require.Zero(t, d.Next())
	require.True(t, d.Intact())

	// The view aliases the buffer.
	d.SetNext(0x120)
	d.SetState(StateFree)
	require.Equal(t, uint32(0x120), ReadU32(buf, DescNextOffset))
	require.Equal(t, uint16(StateFree), ReadU16(buf, DescStateOffset))

	// Bytes past the descriptor are untouched.
	require.Equal(t, make([]byte, 8), buf[DescriptorSize:])
}

func TestDescriptorIntact(t *testing.T) {
	buf := make([]byte, DescriptorSize)
	d, err := ParseDescriptor(buf)
	require.NoError(t, err)
	require.False(t, d.Intact(), "zeroed bytes are not a descriptor")

	d.Init(16, 1)
	buf[DescTokenOffset] ^= 0x01
	require.False(t, d.Intact(), "token flip must be detected")

	d.Init(16, 1)
	buf[DescStateOffset] ^= 0x10
	require.False(t, d.Intact(), "state flip must be detected")
	require.False(t, d.State().Valid())
	require.Contains(t, d.State().String(), "invalid")
}

func TestParseDescriptorTruncated(t *testing.T) {
	_, err := ParseDescriptor(make([]byte, DescriptorSize-1))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ n, align, want uint32 }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{17, 16, 32},
		{5, 1, 5},
	}
	for _, c := range cases {
		if got := AlignUp(c.n, c.align); got != c.want {
			t.Fatalf("AlignUp(%d, %d) = %d, want %d", c.n, c.align, got, c.want)
		}
	}
	if !IsAligned(32, 16) || IsAligned(24, 16) {
		t.Fatalf("IsAligned mismatch")
	}
}
