package region

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/flightmem/internal/buf"
	"github.com/joshuapare/flightmem/internal/logger"
	"github.com/joshuapare/flightmem/internal/mmfile"
)

// File is a Region backed by a memory-mapped file. Writes land in the
// mapping immediately and are made durable by Flush.
//
// NOT thread-safe.
type File struct {
	f     *os.File
	m     *mmfile.Mapping
	size  int64
	dirty tracker
}

// Create creates (or truncates) the file at path and sizes it to size bytes
// of zeros.
func Create(path string, size int64) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region: invalid size %d", size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("region: create: %w", err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: size %s: %w", path, err)
	}
	return mapFile(f, size)
}

// Open maps an existing region file at its current size.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("region: open: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: stat: %w", err)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("region: %s is empty", path)
	}
	return mapFile(f, info.Size())
}

func mapFile(f *os.File, size int64) (*File, error) {
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("region: file too large to map (%d bytes)", size)
	}
	m, err := mmfile.Map(f, int(size))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	logger.L.Debug("region: mapped", "path", f.Name(), "size", size, "mmap", m.Mapped())
	return &File{
		f:     f,
		m:     m,
		size:  size,
		dirty: newTracker(os.Getpagesize()),
	}, nil
}

// Path returns the file name.
func (r *File) Path() string { return r.f.Name() }

// Size returns the region length.
func (r *File) Size() int64 { return r.size }

// ReadAt implements io.ReaderAt.
func (r *File) ReadAt(p []byte, off int64) (int, error) {
	data, err := r.span(off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, data), nil
}

// WriteAt implements io.WriterAt. The range is recorded for the next Flush.
func (r *File) WriteAt(p []byte, off int64) (int, error) {
	data, err := r.span(off, len(p))
	if err != nil {
		return 0, err
	}
	r.dirty.add(off, int64(len(p)))
	return copy(data, p), nil
}

func (r *File) span(off int64, n int) ([]byte, error) {
	data := r.m.Bytes()
	if data == nil {
		return nil, ErrClosed
	}
	end, err := buf.CheckRange(r.size, off, int64(n))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return data[off:end], nil
}

// Pending returns how many page-aligned ranges the next Flush will sync.
func (r *File) Pending() int {
	return len(r.dirty.coalesce(r.size))
}

// Flush syncs every dirty page range and then the file's data.
func (r *File) Flush() error {
	if r.m.Bytes() == nil {
		return ErrClosed
	}
	ranges := r.dirty.coalesce(r.size)
	for _, s := range ranges {
		if err := r.m.Sync(int(s.Off), int(s.Len)); err != nil {
			return fmt.Errorf("region: sync 0x%X+%d: %w", s.Off, s.Len, err)
		}
	}
	if len(ranges) > 0 {
		if err := r.m.Datasync(); err != nil {
			return fmt.Errorf("region: datasync: %w", err)
		}
	}
	r.dirty.reset()
	return nil
}

// Close flushes, unmaps and closes the file.
func (r *File) Close() error {
	if r.m.Bytes() == nil {
		return nil
	}
	err := r.Flush()
	return errors.Join(err, r.m.Close(), r.f.Close())
}
