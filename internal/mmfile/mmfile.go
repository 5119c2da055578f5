// Package mmfile maps persistent region files into memory for in-place
// read/write access. On platforms without mmap the file is read into a heap
// buffer and Sync writes ranges back with ordinary file I/O.
package mmfile

import (
	"errors"
	"os"
)

// ErrClosed is returned by operations on a Mapping after Close.
var ErrClosed = errors.New("mmfile: mapping closed")

// Mapping is a writable view of the first n bytes of a file.
//
// NOT thread-safe.
type Mapping struct {
	data   []byte
	f      *os.File
	mapped bool
}

// Bytes returns the mapped bytes. Writes to the slice modify the file once
// synced (immediately visible to other mappings when Mapped is true).
func (m *Mapping) Bytes() []byte { return m.data }

// Mapped reports whether the view is a real memory mapping.
func (m *Mapping) Mapped() bool { return m.mapped }

// Datasync flushes the file's data to stable storage.
func (m *Mapping) Datasync() error {
	if m.data == nil {
		return ErrClosed
	}
	return datasync(m.f)
}

// checkRange rejects ranges that fall outside the view.
func (m *Mapping) checkRange(off, n int) error {
	if m.data == nil {
		return ErrClosed
	}
	if off < 0 || n < 0 || off > len(m.data)-n {
		return errors.New("mmfile: sync range outside mapping")
	}
	return nil
}
