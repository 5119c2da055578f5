//go:build darwin

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// msyncRange flushes the whole mapping: darwin's msync wants the address
// returned by mmap. The kernel only writes pages that are actually dirty.
func msyncRange(data []byte, _, _ int) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// datasync uses F_FULLFSYNC; plain fsync on darwin stops at the drive cache.
func datasync(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}
