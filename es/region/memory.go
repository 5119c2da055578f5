package region

import (
	"fmt"

	"github.com/joshuapare/flightmem/internal/buf"
)

// Memory is a volatile Region over a byte slice.
//
// NOT thread-safe.
type Memory struct {
	data []byte

	reads  int
	writes int

	// fault, when set, is returned by every transfer once failAfter
	// successful transfers have happened.
	fault     error
	failAfter int
}

// NewMemory returns a zero-filled region of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// MemoryFrom returns a region over b. b is used in place.
func MemoryFrom(b []byte) *Memory {
	return &Memory{data: b}
}

// Bytes exposes the backing slice so tests can corrupt it directly.
func (m *Memory) Bytes() []byte { return m.data }

// Size returns the region length.
func (m *Memory) Size() int64 { return int64(len(m.data)) }

// Transfers returns the number of successful reads and writes so far.
func (m *Memory) Transfers() (reads, writes int) { return m.reads, m.writes }

// FailAfter makes every transfer after the next n successful ones fail with err.
func (m *Memory) FailAfter(n int, err error) {
	m.fault = err
	m.failAfter = n
}

// Heal clears an injected fault.
func (m *Memory) Heal() {
	m.fault = nil
}

func (m *Memory) check(off int64, n int) error {
	if m.fault != nil {
		if m.failAfter <= 0 {
			return m.fault
		}
		m.failAfter--
	}
	if _, err := buf.CheckRange(int64(len(m.data)), off, int64(n)); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return nil
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if err := m.check(off, len(p)); err != nil {
		return 0, err
	}
	m.reads++
	return copy(p, m.data[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if err := m.check(off, len(p)); err != nil {
		return 0, err
	}
	m.writes++
	return copy(m.data[off:], p), nil
}
