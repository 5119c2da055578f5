package mempool

import "github.com/joshuapare/flightmem/es/alloc"

// Options configures a Pool.
type Options struct {
	// Alignment of every block. Must be a power of two.
	// Default: alloc.DefaultAlignment
	Alignment uint32

	// BlockSizes lists the bucket capacities.
	// Default: alloc.DefaultBucketSizes
	BlockSizes []uint32

	// UseMutex serializes every operation with a pool-private lock.
	// Default: true
	UseMutex bool
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() *Options {
	return &Options{
		Alignment: alloc.DefaultAlignment,
		UseMutex:  true,
	}
}

func (o *Options) allocConfig() *alloc.Config {
	return &alloc.Config{Alignment: o.Alignment, BucketSizes: o.BlockSizes}
}
