// Package buf contains the bounds helpers shared by the descriptor stores and
// the region backends.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int64.
func AddOverflowSafe(a, b int64) (int64, bool) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, false
	case b < 0 && a < math.MinInt64-b:
		return 0, false
	default:
		return a + b, true
	}
}

// CheckRange validates that n bytes starting at off fit inside a region of
// regionLen bytes. It returns the exclusive end offset on success.
//
// Region backends call this before every ReadAt/WriteAt so that a bad offset
// coming out of corrupted bookkeeping surfaces as an error instead of a panic:
//
//	end, err := buf.CheckRange(r.Size(), off, int64(len(p)))
//	if err != nil {
//	    return 0, fmt.Errorf("region: %w", err)
//	}
func CheckRange(regionLen, off, n int64) (int64, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, n)
	}
	if end > regionLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, regionLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(int64(off), int64(n))
	if !ok || end > int64(len(b)) {
		return nil, false
	}
	return b[off:end], true
}
