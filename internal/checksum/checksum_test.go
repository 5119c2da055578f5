package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum16KnownVector(t *testing.T) {
	require.Equal(t, uint16(0xBB3D), Checksum16([]byte("123456789"), 0))
}

func TestChecksum16Empty(t *testing.T) {
	require.Equal(t, uint16(0), Checksum16(nil, 0))
}

func TestChecksum16Seed(t *testing.T) {
	data := []byte("critical data store payload")
	require.Equal(t, Checksum16(data, 0), Checksum16(data, 0))
	require.NotEqual(t, Checksum16(data, 0), Checksum16(data, 0x1D0F))
}

func TestChecksum16DetectsSingleByteFlip(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i * 7)
	}
	want := Checksum16(data, 0)
	for i := range data {
		data[i] ^= 0x01
		require.NotEqual(t, want, Checksum16(data, 0), "flip at byte %d undetected", i)
		data[i] ^= 0x01
	}
}
