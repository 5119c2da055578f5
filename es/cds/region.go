package cds

import (
	"fmt"
	"math"

	"modernc.org/mathutil"

	"github.com/joshuapare/flightmem/es/alloc"
	"github.com/joshuapare/flightmem/es/region"
	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
)

// wipeChunkSize bounds the zero buffer used by Wipe.
const wipeChunkSize = 512

// Validate reports whether both region signatures are present. A mismatch at
// either end fails with format.ErrSignatureMismatch.
func Validate(r region.Region) error {
	size := r.Size()
	if size < 2*format.SignatureSize {
		return fmt.Errorf("%w: %d bytes", ErrRegionTooSmall, size)
	}
	var sig [format.SignatureSize]byte
	if err := readFull(r, sig[:], 0); err != nil {
		return err
	}
	if err := format.CheckSignature(sig[:], format.CDSBeginSignature, "begin"); err != nil {
		return fmt.Errorf("cds: %w", err)
	}
	if err := readFull(r, sig[:], size-format.SignatureSize); err != nil {
		return err
	}
	if err := format.CheckSignature(sig[:], format.CDSEndSignature, "end"); err != nil {
		return fmt.Errorf("cds: %w", err)
	}
	return nil
}

// Wipe zeroes the data area between the signatures in bounded chunks and
// then rewrites both signatures.
func Wipe(r region.Region) error {
	size := r.Size()
	if size < 2*format.SignatureSize {
		return fmt.Errorf("%w: %d bytes", ErrRegionTooSmall, size)
	}
	var zero [wipeChunkSize]byte
	end := size - format.SignatureSize
	for off := int64(format.SignatureSize); off < end; {
		n := mathutil.MinInt64(end-off, wipeChunkSize)
		if err := writeFull(r, zero[:n], off); err != nil {
			return err
		}
		off += n
	}
	if err := writeFull(r, format.CDSBeginSignature, 0); err != nil {
		return err
	}
	if err := writeFull(r, format.CDSEndSignature, end); err != nil {
		return err
	}
	logger.L.Debug("cds: region wiped", "size", size)
	return nil
}

// checkRegionSize rejects regions whose offsets do not fit the allocator.
func checkRegionSize(r region.Region) error {
	size := r.Size()
	if size > math.MaxUint32 {
		return fmt.Errorf("%w: %d-byte region exceeds offset space", alloc.ErrInvalidArgument, size)
	}
	if size < format.CDSReservedSize+alloc.DescriptorSize {
		return fmt.Errorf("%w: %d bytes", ErrRegionTooSmall, size)
	}
	return nil
}

func readFull(r region.Region, p []byte, off int64) error {
	if _, err := r.ReadAt(p, off); err != nil {
		return fmt.Errorf("%w: read %d bytes at 0x%X: %w", alloc.ErrAccess, len(p), off, err)
	}
	return nil
}

func writeFull(r region.Region, p []byte, off int64) error {
	if _, err := r.WriteAt(p, off); err != nil {
		return fmt.Errorf("%w: write %d bytes at 0x%X: %w", alloc.ErrAccess, len(p), off, err)
	}
	return nil
}
