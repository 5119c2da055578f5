package cds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flightmem/es/region"
	"github.com/joshuapare/flightmem/internal/format"
)

// smallOptions keeps the registry small enough for a few-KB region.
func smallOptions() *Options {
	return &Options{
		BlockSizes: []uint32{16, 32, 64, 256, 512},
		MaxEntries: 8,
	}
}

func openMemory(t *testing.T, size int, opts *Options) (*Store, *region.Memory) {
	t.Helper()
	mem := region.NewMemory(size)
	s, err := Open(mem, opts)
	require.NoError(t, err)
	return s, mem
}

// reopen simulates a processor reset: the region bytes survive, the Store does not.
func reopen(t *testing.T, mem *region.Memory, opts *Options) *Store {
	t.Helper()
	o := *opts
	o.Reset = ResetProcessor
	s, err := Open(mem, &o)
	require.NoError(t, err)
	return s
}

func mustRegister(t *testing.T, s *Store, app, name string, size int) Handle {
	t.Helper()
	h, err := s.Register(app, name, size, false)
	require.NoError(t, err)
	return h
}

func readAll(t *testing.T, s *Store, h Handle) []byte {
	t.Helper()
	size, err := s.Size(h)
	require.NoError(t, err)
	dst := make([]byte, size)
	n, err := s.Read(h, dst)
	require.NoError(t, err)
	require.Equal(t, size, n)
	return dst
}

// entryOffset returns the data offset of a registered block.
func entryOffset(t *testing.T, s *Store, fullName string) uint32 {
	t.Helper()
	for _, e := range s.List() {
		if e.Name == fullName {
			return e.Offset
		}
	}
	t.Fatalf("no entry %s", fullName)
	return 0
}

// payloadAt returns the stored payload bytes of a block, bypassing the store.
func payloadAt(mem *region.Memory, off uint32, n int) []byte {
	start := int(off) + format.BlockHeaderSize
	return mem.Bytes()[start : start+n]
}
