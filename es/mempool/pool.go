package mempool

import (
	"fmt"
	"math"
	"sync"

	"github.com/joshuapare/flightmem/es/alloc"
	"github.com/joshuapare/flightmem/internal/logger"
)

// Buffer is an opaque handle to one block of a Pool. The zero Buffer is
// never valid.
type Buffer struct {
	owner *Pool
	off   uint32
}

// IsZero reports whether b is the zero Buffer.
func (b Buffer) IsZero() bool { return b.owner == nil }

// Pool is a local memory pool.
type Pool struct {
	mu     sync.Mutex
	locked bool

	mem         []byte
	alloc       *alloc.Pool
	outstanding int
}

// New creates a pool over mem. mem must not be used by the caller afterwards
// except through Bytes.
func New(mem []byte, opts *Options) (*Pool, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if uint64(len(mem)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d-byte buffer exceeds offset space", alloc.ErrInvalidArgument, len(mem))
	}
	a, err := alloc.New(alloc.NewDirectStore(mem), 0, uint32(len(mem)), opts.allocConfig())
	if err != nil {
		return nil, fmt.Errorf("mempool: %w", err)
	}
	logger.L.Debug("mempool: created", "size", len(mem), "buckets", len(a.BucketSizes()), "mutex", opts.UseMutex)
	return &Pool{locked: opts.UseMutex, mem: mem, alloc: a}, nil
}

func (p *Pool) lock() {
	if p.locked {
		p.mu.Lock()
	}
}

func (p *Pool) unlock() {
	if p.locked {
		p.mu.Unlock()
	}
}

// Locked reports whether the pool serializes its own operations.
func (p *Pool) Locked() bool { return p.locked }

// GetBuf allocates a buffer of at least size bytes.
func (p *Pool) GetBuf(size int) (Buffer, error) {
	if size <= 0 || uint64(size) > math.MaxUint32 {
		return Buffer{}, fmt.Errorf("%w: %d bytes", alloc.ErrInvalidSize, size)
	}
	p.lock()
	defer p.unlock()

	off, err := p.alloc.Allocate(uint32(size))
	if err != nil {
		return Buffer{}, err
	}
	p.outstanding++
	return Buffer{owner: p, off: off}, nil
}

// PutBuf releases b and returns the size it was requested with.
func (p *Pool) PutBuf(b Buffer) (int, error) {
	if err := p.owns(b); err != nil {
		return 0, err
	}
	p.lock()
	defer p.unlock()

	size, err := p.alloc.Free(b.off)
	if err != nil {
		return 0, err
	}
	p.outstanding--
	return int(size), nil
}

// Bytes returns the requested-size view of b's data.
func (p *Pool) Bytes(b Buffer) ([]byte, error) {
	if err := p.owns(b); err != nil {
		return nil, err
	}
	p.lock()
	defer p.unlock()

	size, err := p.alloc.BlockSize(b.off)
	if err != nil {
		return nil, err
	}
	end := b.off + size
	return p.mem[b.off:end:end], nil
}

// BufInfo returns the size b was requested with.
func (p *Pool) BufInfo(b Buffer) (int, error) {
	if err := p.owns(b); err != nil {
		return 0, err
	}
	p.lock()
	defer p.unlock()

	size, err := p.alloc.BlockSize(b.off)
	return int(size), err
}

func (p *Pool) owns(b Buffer) error {
	if b.owner != p {
		return fmt.Errorf("%w: buffer belongs to another pool", ErrInvalidHandle)
	}
	return nil
}

// Stats is a snapshot of a pool's usage.
type Stats struct {
	alloc.Stats
	Outstanding int // buffers handed out and not yet released
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.lock()
	defer p.unlock()
	return Stats{Stats: p.alloc.Stats(), Outstanding: p.outstanding}
}

// Validate checks the structural sanity of the pool header.
func (p *Pool) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrInvalidHandle)
	}
	p.lock()
	defer p.unlock()
	return p.alloc.Validate()
}
