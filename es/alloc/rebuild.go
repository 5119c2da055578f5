package alloc

import (
	"fmt"

	"modernc.org/mathutil"

	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
)

// RebuildResult summarizes a Rebuild pass.
type RebuildResult struct {
	Blocks     int    // descriptors accepted
	FreeBlocks int    // of which were relinked onto free lists
	Tail       uint32 // resulting tail
	Complete   bool   // true when the walk reached knownTail
	StopErr    error  // why the walk ended early, nil when Complete
}

// Rebuild reconstructs the in-memory bookkeeping of a pool whose backing
// bytes survived but whose Pool header did not, such as a persistent region
// after a processor reset.
//
// Descriptors are read in address order from start up to knownTail. Free
// blocks are pushed onto the head of their bucket's list (membership is
// recovered, order is not) and every accepted block counts as created. The
// walk stops at the first descriptor that is unreadable or fails validation
// and the tail is set to the end of the last accepted block; nothing past
// that point is recovered.
//
// Recycle history cannot be recovered: afterwards each bucket's release
// counter equals the number of blocks found free, and its recycle counter is
// zero.
func (p *Pool) Rebuild(knownTail uint32) RebuildResult {
	for i := range p.buckets {
		p.buckets[i] = bucket{capacity: p.buckets[i].capacity}
	}
	p.allocCount = 0
	p.tail = p.start

	limit := mathutil.MinUint32(knownTail, p.max)
	res := RebuildResult{Complete: true}
	off := p.start
	for off < limit {
		err := p.rebuildOne(off, limit, &res)
		if err != nil {
			res.Complete = false
			res.StopErr = err
			p.noteInvalid("alloc: rebuild stopped early", err)
			break
		}
		off = p.tail
	}

	res.Tail = p.tail
	logger.L.Debug("alloc: rebuild finished",
		"blocks", res.Blocks, "free", res.FreeBlocks, "tail", p.tail, "complete", res.Complete)
	return res
}

// rebuildOne accepts the block whose descriptor is at off and advances the tail past it.
func (p *Pool) rebuildOne(off, limit uint32, res *RebuildResult) error {
	if uint64(off)+DescriptorSize > uint64(limit) {
		return fmt.Errorf("%w: partial descriptor at 0x%X before 0x%X", ErrBlockInvalid, off, limit)
	}
	d, err := p.store.Fetch(off)
	if err != nil {
		return err
	}
	bi, err := p.checkDescriptor(off, d, limit)
	if err != nil {
		return err
	}

	b := &p.buckets[bi]
	if d.State() == format.StateFree {
		d.SetNext(b.head)
		if err := p.store.Commit(off, d); err != nil {
			return err
		}
		b.head = off + DescriptorSize
		b.releaseCount++
		res.FreeBlocks++
	}
	b.allocCount++
	p.allocCount++
	res.Blocks++
	p.tail = format.AlignUp(off+DescriptorSize+b.capacity, p.alignment)
	return nil
}
