// Package alloc implements the bucketized block allocator shared by the local
// memory pools and the critical data store.
//
// # Overview
//
// A Pool manages a contiguous range of byte offsets [start, max) in some
// backing store. Requests are rounded up to the smallest configured bucket
// whose capacity fits, and every block is laid out as
//
//	[Block Descriptor (16 bytes)][capacity bytes of data]
//
// Blocks are created by extending a high-water mark (the tail) and are never
// coalesced or split. A freed block goes onto its bucket's free list and is
// handed out again, unchanged in size, by the next request for that bucket.
//
// # Backing Stores
//
// The allocator only ever reads and writes descriptors through a
// BackingStore:
//
//   - DirectStore: the pool lives in a []byte the caller owns. Fetch returns
//     a view over that memory and Commit is a no-op.
//   - IndirectStore: the pool lives behind ReadAt/WriteAt primitives, such as
//     a persistent region. Fetch copies into a scratch descriptor and Commit
//     writes it back.
//
// # Corruption Handling
//
// Every descriptor carries an integrity token and a two-valued state tag.
// The allocator never guesses when either looks wrong:
//
//   - Free rejects the call with ErrBlockInvalid and changes nothing.
//   - A corrupt free-list head is abandoned (the space leaks) and the request
//     is served by extending the tail instead.
//   - Rebuild stops at the first descriptor it cannot trust.
//
// Each of these increments the pool's validation error counter.
//
// # Usage Example
//
//	mem := make([]byte, 64*1024)
//	p, err := alloc.New(alloc.NewDirectStore(mem), 0, uint32(len(mem)), nil)
//	if err != nil {
//	    return err
//	}
//
//	off, err := p.Allocate(100) // served from the 128-byte bucket
//	if err != nil {
//	    return err
//	}
//	payload := mem[off : off+100]
//
//	// Later, release it for reuse by the next 97..128 byte request
//	_, err = p.Free(off)
//
// # Thread Safety
//
// Pool instances are not thread-safe. Callers must serialize every Allocate,
// Free and Rebuild on the same pool; separate pools share no state.
package alloc
