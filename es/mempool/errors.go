package mempool

import "errors"

var (
	// ErrInvalidHandle indicates a PoolID or Buffer that does not name a live
	// pool or a buffer of this pool.
	ErrInvalidHandle = errors.New("mempool: invalid handle")

	// ErrPoolTableFull indicates the table already holds MaxPools pools.
	ErrPoolTableFull = errors.New("mempool: pool table full")

	// ErrPoolBusy indicates a delete of a pool with buffers still checked out.
	ErrPoolBusy = errors.New("mempool: pool has outstanding buffers")
)
