//go:build linux || freebsd

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// msyncRange flushes a sub-slice of the mapping. Linux accepts any page
// aligned sub-range of a mapping.
func msyncRange(data []byte, off, n int) error {
	return unix.Msync(data[off:off+n], unix.MS_SYNC)
}

func datasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
