package alloc

import (
	"fmt"

	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
)

// DescriptorSize is the number of bytes every block spends on bookkeeping.
const DescriptorSize = format.DescriptorSize

// bucket is one size class.
type bucket struct {
	capacity uint32
	head     uint32 // data offset of the first free block, 0 = empty

	allocCount   uint32 // blocks created by extending the tail
	releaseCount uint32 // Free calls that put a block on the list
	recycleCount uint32 // blocks taken back off the list
	leakCount    uint32 // blocks stranded on an abandoned list
}

// free is the number of blocks the counters place on the list.
func (b *bucket) free() uint32 {
	return b.releaseCount - b.recycleCount - b.leakCount
}

// Pool is one allocator instance over [start, max) of a backing store.
type Pool struct {
	store     BackingStore
	start     uint32
	max       uint32
	alignment uint32
	buckets   []bucket

	// tail is the high-water mark: every byte in [start, tail) is either a
	// descriptor or block data. Always a multiple of alignment.
	tail uint32

	allocCount       uint32
	validationErrors uint32

	trace bool
}

// New initializes a pool over size bytes of store beginning at start.
//
// Both ends of the region are trimmed inward to the configured alignment.
// The region must hold at least one descriptor plus the smallest bucket.
//
// Parameters:
//   - store: descriptor adapter (DirectStore or IndirectStore)
//   - start, size: the managed region, in store offsets
//   - cfg: alignment and bucket table (nil for DefaultConfig)
func New(store BackingStore, start, size uint32, cfg *Config) (*Pool, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil backing store", ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	alignment := cfg.Alignment
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	if !IsPowerOfTwo(alignment) {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidArgument, alignment)
	}
	sizes, err := normalizeBuckets(cfg.BucketSizes)
	if err != nil {
		return nil, err
	}

	end := uint64(start) + uint64(size)
	if end > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: region 0x%X+%d overflows offset space", ErrInvalidArgument, start, size)
	}
	first := uint64(format.AlignUp(start, alignment))
	limit := end &^ uint64(alignment-1)
	if first+DescriptorSize+uint64(sizes[0]) > limit {
		return nil, fmt.Errorf("%w: region of %d bytes cannot hold one %d-byte block",
			ErrInvalidArgument, size, sizes[0])
	}

	p := &Pool{
		store:     store,
		start:     uint32(first),
		max:       uint32(limit),
		alignment: alignment,
		buckets:   make([]bucket, len(sizes)),
		tail:      uint32(first),
		trace:     logger.TraceAlloc(),
	}
	for i, s := range sizes {
		p.buckets[i].capacity = s
	}
	return p, nil
}

// Start returns the offset of the first descriptor.
func (p *Pool) Start() uint32 { return p.start }

// Max returns the exclusive upper bound of the managed region.
func (p *Pool) Max() uint32 { return p.max }

// Tail returns the current high-water mark.
func (p *Pool) Tail() uint32 { return p.tail }

// Alignment returns the descriptor alignment.
func (p *Pool) Alignment() uint32 { return p.alignment }

// ValidationErrors returns how many inconsistencies the pool has detected.
func (p *Pool) ValidationErrors() uint32 { return p.validationErrors }

// BucketSizes returns the normalized bucket capacities, ascending.
func (p *Pool) BucketSizes() []uint32 {
	out := make([]uint32, len(p.buckets))
	for i := range p.buckets {
		out[i] = p.buckets[i].capacity
	}
	return out
}

// LargestBucket returns the largest request the pool can ever satisfy.
func (p *Pool) LargestBucket() uint32 {
	return p.buckets[len(p.buckets)-1].capacity
}

// BucketFor returns the capacity a request of size bytes would receive, or
// false when size is zero or exceeds the largest bucket.
func (p *Pool) BucketFor(size uint32) (uint32, bool) {
	if size == 0 {
		return 0, false
	}
	i := p.bucketFor(size)
	if i < 0 {
		return 0, false
	}
	return p.buckets[i].capacity, true
}

// descInRange reports whether a descriptor at descOff lies on a block
// boundary inside the allocated part of the pool.
func (p *Pool) descInRange(descOff uint32) bool {
	return descOff >= p.start &&
		uint64(descOff)+DescriptorSize <= uint64(p.tail) &&
		format.IsAligned(descOff-p.start, p.alignment)
}

// checkDescriptor reports why d cannot be a block of this pool, or nil.
// descOff is where d was read from; limit bounds the block's end.
func (p *Pool) checkDescriptor(descOff uint32, d format.Descriptor, limit uint32) (int, error) {
	if d.Token() != format.DescriptorToken {
		return -1, fmt.Errorf("%w: bad token 0x%04X at 0x%X", ErrBlockInvalid, d.Token(), descOff)
	}
	if !d.State().Valid() {
		return -1, fmt.Errorf("%w: bad state %s at 0x%X", ErrBlockInvalid, d.State(), descOff)
	}
	bi := p.bucketExact(d.Capacity())
	if bi < 0 {
		return -1, fmt.Errorf("%w: capacity %d at 0x%X matches no bucket", ErrBlockInvalid, d.Capacity(), descOff)
	}
	if d.Size() == 0 || d.Size() > d.Capacity() {
		return -1, fmt.Errorf("%w: size %d does not fit capacity %d at 0x%X",
			ErrBlockInvalid, d.Size(), d.Capacity(), descOff)
	}
	if uint64(descOff)+DescriptorSize+uint64(d.Capacity()) > uint64(limit) {
		return -1, fmt.Errorf("%w: block at 0x%X runs past 0x%X", ErrBlockInvalid, descOff, limit)
	}
	return bi, nil
}

// noteInvalid counts an inconsistency and logs it.
func (p *Pool) noteInvalid(msg string, err error) {
	p.validationErrors++
	logger.L.Warn(msg, "err", err, "validation_errors", p.validationErrors)
}
