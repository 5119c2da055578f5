package mempool

import (
	"fmt"
	"sync"

	"github.com/joshuapare/flightmem/internal/logger"
	"github.com/joshuapare/flightmem/internal/resid"
)

// DefaultMaxPools is the table capacity used when TableOptions.MaxPools is zero.
const DefaultMaxPools = 10

// PoolID names a pool in a Table.
type PoolID = resid.ID

// TableOptions configures a Table.
type TableOptions struct {
	// MaxPools is the number of pools the table can hold.
	// Default: DefaultMaxPools
	MaxPools int
}

// Table owns a fixed number of pools addressed by PoolID. Table operations
// are safe for concurrent use; buffer operations additionally take the
// pool's own lock when it has one.
type Table struct {
	mu    sync.Mutex
	pools *resid.Table[*Pool]
}

// NewTable returns an empty table.
func NewTable(opts *TableOptions) (*Table, error) {
	n := DefaultMaxPools
	if opts != nil && opts.MaxPools != 0 {
		n = opts.MaxPools
	}
	pools, err := resid.NewTable[*Pool](resid.TypeMemPool, n)
	if err != nil {
		return nil, fmt.Errorf("mempool: %w", err)
	}
	return &Table{pools: pools}, nil
}

// Create makes a pool with default block sizes that serializes its own operations.
func (t *Table) Create(mem []byte) (PoolID, error) {
	return t.CreateEx(mem, nil, true)
}

// CreateNoLock makes a pool with default block sizes and no lock.
func (t *Table) CreateNoLock(mem []byte) (PoolID, error) {
	return t.CreateEx(mem, nil, false)
}

// CreateEx makes a pool with explicit block sizes (nil for defaults).
func (t *Table) CreateEx(mem []byte, blockSizes []uint32, useMutex bool) (PoolID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pools.Len() == t.pools.Cap() {
		return resid.Undefined, fmt.Errorf("%w: %d pools", ErrPoolTableFull, t.pools.Cap())
	}
	opts := DefaultOptions()
	opts.BlockSizes = blockSizes
	opts.UseMutex = useMutex
	p, err := New(mem, opts)
	if err != nil {
		return resid.Undefined, err
	}
	id, err := t.pools.Add(p)
	if err != nil {
		return resid.Undefined, fmt.Errorf("%w: %w", ErrPoolTableFull, err)
	}
	logger.L.Debug("mempool: registered", "pool", id.String())
	return id, nil
}

// Lookup returns the pool named by id.
func (t *Table) Lookup(id PoolID) (*Pool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pools.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	return p, nil
}

// Delete removes the pool named by id. A pool with buffers still checked
// out is refused with ErrPoolBusy.
func (t *Table) Delete(id PoolID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pools.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	if n := p.Stats().Outstanding; n > 0 {
		return fmt.Errorf("%w: %s has %d", ErrPoolBusy, id, n)
	}
	return t.pools.Remove(id)
}

// GetBuf allocates a buffer from the pool named by id.
func (t *Table) GetBuf(id PoolID, size int) (Buffer, error) {
	p, err := t.Lookup(id)
	if err != nil {
		return Buffer{}, err
	}
	return p.GetBuf(size)
}

// PutBuf releases a buffer to the pool named by id.
func (t *Table) PutBuf(id PoolID, b Buffer) (int, error) {
	p, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	return p.PutBuf(b)
}

// Stats returns the counters of the pool named by id.
func (t *Table) Stats(id PoolID) (Stats, error) {
	p, err := t.Lookup(id)
	if err != nil {
		return Stats{}, err
	}
	return p.Stats(), nil
}

// List returns the IDs of all live pools.
func (t *Table) List() []PoolID {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]PoolID, 0, t.pools.Len())
	t.pools.Each(func(id PoolID, _ *Pool) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
