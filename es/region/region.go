// Package region provides the raw read/write access layer beneath the
// critical data store: a byte-addressed persistent area of fixed size that
// is reached only through ReadAt and WriteAt.
//
// Two backends are provided:
//   - Memory: a volatile byte slice, for tests and simulation; supports
//     fault injection
//   - File: a memory-mapped file whose dirty ranges are tracked and synced on
//     Flush
package region

import (
	"errors"
	"io"
)

var (
	// ErrOutOfRange is returned for a transfer that does not fit the region.
	ErrOutOfRange = errors.New("region: access outside region")

	// ErrClosed is returned by a File after Close.
	ErrClosed = errors.New("region: closed")
)

// Region is a fixed-size persistent area. Every ReadAt and WriteAt either
// transfers all of p or returns an error.
type Region interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// Flusher is implemented by regions that buffer writes.
type Flusher interface {
	Flush() error
}
