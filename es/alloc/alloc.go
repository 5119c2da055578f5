package alloc

import (
	"fmt"

	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
)

// Free-list links (bucket heads and descriptor next fields) hold data
// offsets, never descriptor offsets, so a link of zero cannot collide with a
// block whose descriptor sits at offset zero.

// Allocate reserves a block of at least size bytes and returns its data
// offset. The block comes from the matching bucket's free list when that list
// has a trustworthy head, otherwise from extending the tail.
func (p *Pool) Allocate(size uint32) (uint32, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: zero-byte request", ErrInvalidSize)
	}
	bi := p.bucketFor(size)
	if bi < 0 {
		return 0, fmt.Errorf("%w: %d bytes exceeds largest bucket %d", ErrInvalidSize, size, p.LargestBucket())
	}
	b := &p.buckets[bi]

	if b.head != 0 {
		off, ok, err := p.recycle(b, size)
		if err != nil {
			return 0, err
		}
		if ok {
			return off, nil
		}
	}

	return p.extend(b, size)
}

// recycle pops the head of b's free list. ok is false when the head could not
// be trusted; the list is then abandoned and the caller should extend.
func (p *Pool) recycle(b *bucket, size uint32) (uint32, bool, error) {
	head := b.head
	descOff := head - DescriptorSize
	if head < DescriptorSize || !p.descInRange(descOff) {
		p.abandon(b, "alloc: free list head outside pool, abandoning list",
			fmt.Errorf("%w: head 0x%X bucket %d", ErrBlockInvalid, head, b.capacity))
		return 0, false, nil
	}

	d, err := p.store.Fetch(descOff)
	if err != nil {
		return 0, false, err
	}
	if !d.Intact() || d.State() != format.StateFree || d.Capacity() != b.capacity {
		p.abandon(b, "alloc: corrupt free list head, abandoning list",
			fmt.Errorf("%w: %s at 0x%X bucket %d", ErrBlockInvalid, d, descOff, b.capacity))
		return 0, false, nil
	}

	next := d.Next()
	d.SetState(format.StateAllocated)
	d.SetSize(size)
	d.SetNext(0)
	if err := p.store.Commit(descOff, d); err != nil {
		return 0, false, err
	}
	b.head = next
	b.recycleCount++
	if next == 0 && b.free() != 0 {
		p.abandon(b, "alloc: free list ends early, abandoning remainder",
			fmt.Errorf("%w: %d blocks unreachable in bucket %d", ErrBlockInvalid, b.free(), b.capacity))
	}

	if p.trace {
		logger.L.Debug("alloc: recycled", "offset", head, "size", size, "bucket", b.capacity)
	}
	return head, true, nil
}

// abandon drops b's free list. Every block the counters still place on it
// becomes leaked space.
func (p *Pool) abandon(b *bucket, msg string, err error) {
	p.noteInvalid(msg, err)
	b.leakCount += b.free()
	b.head = 0
}

// extend carves a new block for b at the tail.
func (p *Pool) extend(b *bucket, size uint32) (uint32, error) {
	candidate := uint64(format.AlignUp(p.tail, p.alignment))
	needed := candidate + DescriptorSize + uint64(b.capacity)
	if needed > uint64(p.max) {
		return 0, fmt.Errorf("%w: %d-byte block needs 0x%X, pool ends at 0x%X",
			ErrNoSpace, b.capacity, needed, p.max)
	}

	descOff := uint32(candidate)
	d, err := p.store.Fetch(descOff)
	if err != nil {
		return 0, err
	}
	d.Init(b.capacity, size)
	if err := p.store.Commit(descOff, d); err != nil {
		return 0, err
	}

	// max is aligned, so the rounded tail never passes it.
	p.tail = format.AlignUp(uint32(needed), p.alignment)
	b.allocCount++
	p.allocCount++

	off := descOff + DescriptorSize
	if p.trace {
		logger.L.Debug("alloc: extended", "offset", off, "size", size, "bucket", b.capacity, "tail", p.tail)
	}
	return off, nil
}

// Free returns the block at data offset off to its bucket's free list and
// reports the size originally requested for it.
//
// A descriptor that is not an intact, allocated block of this pool fails with
// ErrBlockInvalid and leaves the pool untouched; freeing the same offset twice
// is caught this way.
func (p *Pool) Free(off uint32) (uint32, error) {
	descOff, err := p.locate(off)
	if err != nil {
		return 0, err
	}

	d, err := p.store.Fetch(descOff)
	if err != nil {
		return 0, err
	}
	bi, err := p.checkDescriptor(descOff, d, p.tail)
	if err == nil && d.State() != format.StateAllocated {
		err = fmt.Errorf("%w: block at 0x%X is %s", ErrBlockInvalid, off, d.State())
	}
	if err != nil {
		p.noteInvalid("alloc: rejected free", err)
		return 0, err
	}

	b := &p.buckets[bi]
	size := d.Size()
	d.SetNext(b.head)
	d.SetState(format.StateFree)
	if err := p.store.Commit(descOff, d); err != nil {
		return 0, err
	}
	b.head = off
	b.releaseCount++

	if p.trace {
		logger.L.Debug("alloc: released", "offset", off, "size", size, "bucket", b.capacity)
	}
	return size, nil
}

// locate maps a data offset to its descriptor offset, rejecting offsets that
// cannot name a block of this pool.
func (p *Pool) locate(off uint32) (uint32, error) {
	if off < p.start+DescriptorSize || off >= p.tail {
		return 0, fmt.Errorf("%w: offset 0x%X outside [0x%X, 0x%X)", ErrBufferNotInPool, off, p.start, p.tail)
	}
	descOff := off - DescriptorSize
	if !p.descInRange(descOff) {
		return 0, fmt.Errorf("%w: offset 0x%X is not on a block boundary", ErrBufferNotInPool, off)
	}
	return descOff, nil
}
