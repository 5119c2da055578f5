package alloc

import (
	"fmt"

	"github.com/joshuapare/flightmem/internal/format"
)

// BucketStats is a snapshot of one bucket's counters.
type BucketStats struct {
	Capacity uint32 // data bytes per block
	Created  uint32 // blocks carved from the tail
	Released uint32 // blocks put on the free list
	Recycled uint32 // blocks taken back off the free list
	Leaked   uint32 // blocks stranded when a corrupt free list was abandoned
}

// Free returns how many blocks can still be recycled from the free list.
func (s BucketStats) Free() uint32 { return s.Released - s.Recycled - s.Leaked }

// Stats is a snapshot of a pool's usage.
type Stats struct {
	PoolSize         uint32 // bytes between start and max
	Used             uint32 // bytes between start and tail
	FreeBytes        uint32 // unused tail space plus free-listed block capacity
	BlocksCreated    uint32
	ValidationErrors uint32
	Buckets          []BucketStats
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	s := Stats{
		PoolSize:         p.max - p.start,
		Used:             p.tail - p.start,
		FreeBytes:        p.max - p.tail,
		BlocksCreated:    p.allocCount,
		ValidationErrors: p.validationErrors,
		Buckets:          make([]BucketStats, len(p.buckets)),
	}
	for i := range p.buckets {
		b := &p.buckets[i]
		bs := BucketStats{
			Capacity: b.capacity,
			Created:  b.allocCount,
			Released: b.releaseCount,
			Recycled: b.recycleCount,
			Leaked:   b.leakCount,
		}
		s.FreeBytes += bs.Free() * b.capacity
		s.Buckets[i] = bs
	}
	return s
}

// BlockInfo describes one block found by Walk.
type BlockInfo struct {
	Offset   uint32 // data offset
	Capacity uint32
	Size     uint32 // requested size (last requested, for free blocks)
	State    format.BlockState
}

// BlockSize returns the requested size of the allocated block at data offset off.
func (p *Pool) BlockSize(off uint32) (uint32, error) {
	info, err := p.CheckBlock(off)
	if err != nil {
		return 0, err
	}
	if info.State != format.StateAllocated {
		err = fmt.Errorf("%w: block at 0x%X is %s", ErrBlockInvalid, off, info.State)
		p.noteInvalid("alloc: size query on unallocated block", err)
		return 0, err
	}
	return info.Size, nil
}

// CheckBlock validates the descriptor of the block at data offset off without
// changing it.
func (p *Pool) CheckBlock(off uint32) (BlockInfo, error) {
	descOff, err := p.locate(off)
	if err != nil {
		return BlockInfo{}, err
	}
	d, err := p.store.Fetch(descOff)
	if err != nil {
		return BlockInfo{}, err
	}
	if _, err := p.checkDescriptor(descOff, d, p.tail); err != nil {
		p.noteInvalid("alloc: block check failed", err)
		return BlockInfo{}, err
	}
	return BlockInfo{Offset: off, Capacity: d.Capacity(), Size: d.Size(), State: d.State()}, nil
}

// Walk visits every block between start and tail in address order. It stops
// with ErrBlockInvalid at the first descriptor it cannot trust, or with the
// first error fn returns.
func (p *Pool) Walk(fn func(BlockInfo) error) error {
	off := p.start
	for off < p.tail {
		d, err := p.store.Fetch(off)
		if err != nil {
			return err
		}
		if _, err := p.checkDescriptor(off, d, p.tail); err != nil {
			p.noteInvalid("alloc: walk stopped", err)
			return err
		}
		info := BlockInfo{
			Offset:   off + DescriptorSize,
			Capacity: d.Capacity(),
			Size:     d.Size(),
			State:    d.State(),
		}
		if err := fn(info); err != nil {
			return err
		}
		off = format.AlignUp(off+DescriptorSize+info.Capacity, p.alignment)
	}
	return nil
}

// FreeList returns the data offsets on the free list of the bucket with the
// given capacity, head first. A link that leaves the pool, a descriptor that
// is not a free block of this bucket, or a cycle fails with ErrBlockInvalid.
func (p *Pool) FreeList(capacity uint32) ([]uint32, error) {
	bi := p.bucketExact(capacity)
	if bi < 0 {
		return nil, fmt.Errorf("%w: no bucket of capacity %d", ErrInvalidArgument, capacity)
	}
	// No list can hold more blocks than fit between start and tail.
	maxLen := (p.tail-p.start)/(DescriptorSize+capacity) + 1

	var out []uint32
	for link := p.buckets[bi].head; link != 0; {
		if uint32(len(out)) >= maxLen {
			return out, fmt.Errorf("%w: free list of bucket %d does not terminate", ErrBlockInvalid, capacity)
		}
		if link < DescriptorSize || !p.descInRange(link-DescriptorSize) {
			return out, fmt.Errorf("%w: free link 0x%X outside pool", ErrBlockInvalid, link)
		}
		d, err := p.store.Fetch(link - DescriptorSize)
		if err != nil {
			return out, err
		}
		if !d.Intact() || d.State() != format.StateFree || d.Capacity() != capacity {
			return out, fmt.Errorf("%w: %s on free list of bucket %d", ErrBlockInvalid, d, capacity)
		}
		out = append(out, link)
		link = d.Next()
	}
	return out, nil
}

// Validate checks the structural sanity of the in-memory pool header. It
// touches no descriptors.
func (p *Pool) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil pool", ErrInvalidPool)
	case p.store == nil:
		return fmt.Errorf("%w: no backing store", ErrInvalidPool)
	case !IsPowerOfTwo(p.alignment):
		return fmt.Errorf("%w: alignment %d", ErrInvalidPool, p.alignment)
	case !format.IsAligned(p.start, p.alignment) || !format.IsAligned(p.max, p.alignment):
		return fmt.Errorf("%w: region [0x%X, 0x%X) not aligned to %d", ErrInvalidPool, p.start, p.max, p.alignment)
	case p.tail < p.start || p.tail > p.max:
		return fmt.Errorf("%w: tail 0x%X outside [0x%X, 0x%X]", ErrInvalidPool, p.tail, p.start, p.max)
	case !format.IsAligned(p.tail, p.alignment):
		return fmt.Errorf("%w: tail 0x%X not aligned to %d", ErrInvalidPool, p.tail, p.alignment)
	case len(p.buckets) == 0 || len(p.buckets) > MaxBuckets:
		return fmt.Errorf("%w: %d buckets", ErrInvalidPool, len(p.buckets))
	}
	for i := range p.buckets {
		b := &p.buckets[i]
		if b.capacity == 0 || (i > 0 && b.capacity <= p.buckets[i-1].capacity) {
			return fmt.Errorf("%w: bucket table not strictly ascending at %d", ErrInvalidPool, i)
		}
		if b.head != 0 && (b.head < DescriptorSize || !p.descInRange(b.head-DescriptorSize)) {
			return fmt.Errorf("%w: bucket %d head 0x%X outside pool", ErrInvalidPool, b.capacity, b.head)
		}
		if uint64(b.recycleCount)+uint64(b.leakCount) > uint64(b.releaseCount) {
			return fmt.Errorf("%w: bucket %d recycled more than released", ErrInvalidPool, b.capacity)
		}
		if b.head == 0 && b.free() != 0 {
			return fmt.Errorf("%w: bucket %d counts %d free blocks on an empty list",
				ErrInvalidPool, b.capacity, b.free())
		}
	}
	return nil
}
