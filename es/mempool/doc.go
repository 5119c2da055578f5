// Package mempool provides local memory pools: a block allocator running in
// direct mode over a caller-supplied buffer, handing out opaque Buffer
// handles instead of addresses.
//
// A Pool created with UseMutex serializes every operation with its own lock
// and may be shared between goroutines. A Pool created without it must be
// confined to one goroutine, or serialized by the caller.
//
// A Table keeps up to MaxPools pools and names them with PoolIDs so that
// callers can pass pool references around without holding pointers:
//
//	tbl, _ := mempool.NewTable(nil)
//	id, err := tbl.Create(make([]byte, 16*1024))
//	if err != nil {
//	    return err
//	}
//	b, err := tbl.GetBuf(id, 200)
//	...
//	_, err = tbl.PutBuf(id, b)
package mempool
