//go:build unix && !linux && !freebsd && !darwin

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

func msyncRange(data []byte, off, n int) error {
	return unix.Msync(data[off:off+n], unix.MS_SYNC)
}

func datasync(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}
