package alloc

import (
	"fmt"
	"slices"

	"modernc.org/mathutil"
)

const (
	// MaxBuckets is the largest number of size classes a pool may configure.
	MaxBuckets = 17

	// DefaultAlignment is the block alignment used when Config.Alignment is zero.
	DefaultAlignment = 8
)

// DefaultBucketSizes is the bucket table used when Config.BucketSizes is empty.
var DefaultBucketSizes = []uint32{
	8, 16, 32, 48, 64, 96, 128, 160, 256, 512,
	1024, 2048, 4096, 8192, 16384, 32768, 80000,
}

// Config describes the layout policy of a pool.
type Config struct {
	// Alignment is the byte boundary of every block descriptor. It must be a
	// power of two. Default: DefaultAlignment
	Alignment uint32

	// BucketSizes lists the block capacities. Duplicates are removed and the
	// result is sorted ascending. Default: DefaultBucketSizes
	BucketSizes []uint32
}

// DefaultConfig returns the configuration used when New is given nil.
func DefaultConfig() *Config {
	return &Config{
		Alignment:   DefaultAlignment,
		BucketSizes: slices.Clone(DefaultBucketSizes),
	}
}

// IsPowerOfTwo reports whether n has exactly one bit set.
func IsPowerOfTwo(n uint32) bool {
	return mathutil.PopCountUint32(n) == 1
}

// normalizeBuckets dedups and sorts sizes, rejecting empty tables, zero
// capacities and tables longer than MaxBuckets.
func normalizeBuckets(sizes []uint32) ([]uint32, error) {
	if len(sizes) == 0 {
		sizes = DefaultBucketSizes
	}
	out := slices.Clone(sizes)
	slices.Sort(out)
	out = slices.Compact(out)
	if out[0] == 0 {
		return nil, fmt.Errorf("%w: zero bucket size", ErrInvalidArgument)
	}
	if len(out) > MaxBuckets {
		return nil, fmt.Errorf("%w: %d buckets requested, max %d", ErrInvalidArgument, len(out), MaxBuckets)
	}
	return out, nil
}

// bucketFor returns the index of the smallest bucket whose capacity is at
// least size, or -1 when size exceeds every bucket.
func (p *Pool) bucketFor(size uint32) int {
	// Binary search for the first capacity >= size
	lo, hi := 0, len(p.buckets)
	for lo < hi {
		mid := (lo + hi) / 2
		if p.buckets[mid].capacity < size {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(p.buckets) {
		return -1
	}
	return lo
}

// bucketExact returns the index of the bucket with exactly this capacity, or -1.
func (p *Pool) bucketExact(capacity uint32) int {
	i := p.bucketFor(capacity)
	if i < 0 || p.buckets[i].capacity != capacity {
		return -1
	}
	return i
}
