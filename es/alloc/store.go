package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/flightmem/internal/buf"
	"github.com/joshuapare/flightmem/internal/format"
)

// BackingStore is the adapter through which a pool reads and writes block
// descriptors. off is always the offset of the descriptor itself.
//
// Implementations:
//   - DirectStore: descriptor views alias caller memory, Commit is a no-op
//   - IndirectStore: descriptors are copied through a scratch buffer
//
// A Descriptor returned by Fetch is only valid until the next Fetch on the
// same store.
type BackingStore interface {
	// Fetch returns the descriptor stored at off.
	Fetch(off uint32) (format.Descriptor, error)

	// Commit persists changes made to a descriptor returned by Fetch.
	Commit(off uint32, d format.Descriptor) error
}

// DirectStore serves descriptors straight out of a locally addressable buffer.
type DirectStore struct {
	mem []byte
}

// NewDirectStore returns a store over mem. The pool's offsets index mem directly.
func NewDirectStore(mem []byte) *DirectStore {
	return &DirectStore{mem: mem}
}

// Fetch returns a view aliasing mem; no bytes are copied.
func (s *DirectStore) Fetch(off uint32) (format.Descriptor, error) {
	b, ok := buf.Slice(s.mem, int(off), format.DescriptorSize)
	if !ok {
		return nil, fmt.Errorf("%w: descriptor at 0x%X outside %d-byte buffer", ErrAccess, off, len(s.mem))
	}
	return format.ParseDescriptor(b)
}

// Commit is a no-op: mutations through the view already landed in mem.
func (s *DirectStore) Commit(uint32, format.Descriptor) error {
	return nil
}

// Device is the byte-addressed read/write interface of an indirect store.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// IndirectStore reaches descriptors through a Device, performing exactly one
// ReadAt per Fetch and one WriteAt per Commit. It never retries.
type IndirectStore struct {
	dev     Device
	scratch [format.DescriptorSize]byte
}

// NewIndirectStore returns a store over dev.
func NewIndirectStore(dev Device) *IndirectStore {
	return &IndirectStore{dev: dev}
}

// Fetch reads the descriptor at off into the store's scratch buffer.
func (s *IndirectStore) Fetch(off uint32) (format.Descriptor, error) {
	n, err := s.dev.ReadAt(s.scratch[:], int64(off))
	if n < len(s.scratch) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: read descriptor at 0x%X: %w", ErrAccess, off, err)
	}
	return format.ParseDescriptor(s.scratch[:])
}

// Commit writes d back to off.
func (s *IndirectStore) Commit(off uint32, d format.Descriptor) error {
	if len(d) != format.DescriptorSize {
		return fmt.Errorf("%w: commit of %d-byte descriptor", ErrInvalidArgument, len(d))
	}
	if _, err := s.dev.WriteAt(d, int64(off)); err != nil {
		return fmt.Errorf("%w: write descriptor at 0x%X: %w", ErrAccess, off, err)
	}
	return nil
}
