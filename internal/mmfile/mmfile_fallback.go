//go:build !unix

package mmfile

import (
	"fmt"
	"io"
	"os"
)

// Map reads size bytes of f into memory when mmap is not available.
func Map(f *os.File, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: cannot map %d bytes", size)
	}
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("mmfile: read %s: %w", f.Name(), err)
	}
	return &Mapping{data: data, f: f}, nil
}

// Sync writes the n bytes at off back to the file.
func (m *Mapping) Sync(off, n int) error {
	if err := m.checkRange(off, n); err != nil {
		return err
	}
	_, err := m.f.WriteAt(m.data[off:off+n], int64(off))
	return err
}

// Close drops the buffer. Unsynced writes are lost.
func (m *Mapping) Close() error {
	m.data = nil
	return nil
}

func datasync(f *os.File) error {
	return f.Sync()
}
