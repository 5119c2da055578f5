package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flightmem/internal/format"
)

// newDirectPool creates a pool over a fresh buffer of size bytes starting at 0.
func newDirectPool(t testing.TB, size int, cfg *Config) (*Pool, []byte) {
	t.Helper()
	mem := make([]byte, size)
	p, err := New(NewDirectStore(mem), 0, uint32(size), cfg)
	require.NoError(t, err)
	return p, mem
}

// descAt returns a view of the descriptor in front of data offset off.
func descAt(t testing.TB, mem []byte, off uint32) format.Descriptor {
	t.Helper()
	d, err := format.ParseDescriptor(mem[off-DescriptorSize:])
	require.NoError(t, err)
	return d
}

// memDevice is an in-memory Device that counts I/O and can be told to fail.
type memDevice struct {
	data   []byte
	reads  int
	writes int
	fail   error
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	m.reads++
	if m.fail != nil {
		return 0, m.fail
	}
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errors.New("memDevice: read out of range")
	}
	return copy(p, m.data[off:]), nil
}

func (m *memDevice) WriteAt(p []byte, off int64) (int, error) {
	m.writes++
	if m.fail != nil {
		return 0, m.fail
	}
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errors.New("memDevice: write out of range")
	}
	return copy(m.data[off:], p), nil
}

// snapshot captures everything Rebuild is expected to restore.
type snapshot struct {
	tail      uint32
	created   map[uint32]uint32
	released  map[uint32]uint32
	recycled  map[uint32]uint32
	freeLists map[uint32][]uint32
}

func takeSnapshot(t testing.TB, p *Pool) snapshot {
	t.Helper()
	s := snapshot{
		tail:      p.Tail(),
		created:   map[uint32]uint32{},
		released:  map[uint32]uint32{},
		recycled:  map[uint32]uint32{},
		freeLists: map[uint32][]uint32{},
	}
	for _, b := range p.Stats().Buckets {
		s.created[b.Capacity] = b.Created
		s.released[b.Capacity] = b.Released
		s.recycled[b.Capacity] = b.Recycled
		list, err := p.FreeList(b.Capacity)
		require.NoError(t, err)
		s.freeLists[b.Capacity] = list
	}
	return s
}
