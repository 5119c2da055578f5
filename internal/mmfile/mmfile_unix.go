//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of f read-write and shared. The file must already be
// at least size bytes long. f must stay open until Close.
func Map(f *os.File, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: cannot map %d bytes", size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap %s: %w", f.Name(), err)
	}
	return &Mapping{data: data, f: f, mapped: true}, nil
}

// Sync writes the n bytes at off back to the file. off must be page aligned.
func (m *Mapping) Sync(off, n int) error {
	if err := m.checkRange(off, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return msyncRange(m.data, off, n)
}

// Close unmaps the view. The file itself is left open. Closing twice is a no-op.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
