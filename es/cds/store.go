package cds

import (
	"fmt"
	"sync"

	"github.com/joshuapare/flightmem/es/alloc"
	"github.com/joshuapare/flightmem/es/region"
	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
	"github.com/joshuapare/flightmem/internal/resid"
)

// Store is an open critical data store.
type Store struct {
	mu     sync.Mutex
	region region.Region
	opts   Options

	pool   *alloc.Pool
	regOff uint32 // data offset of the registry block

	rows    []format.RegistryRow
	ids     []Handle // handle issued for each in-use row
	handles *resid.Table[int]

	restored      bool
	payloadErrors uint32
}

// Open attaches to the persistent region r. Depending on opts.Reset the
// previous contents are restored or the region is wiped; a restore that
// fails for any reason also wipes. Restored reports which happened.
func Open(r region.Region, opts *Options) (*Store, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil region", alloc.ErrInvalidArgument)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.MaxEntries == 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if err := checkRegionSize(r); err != nil {
		return nil, err
	}
	handles, err := resid.NewTable[int](resid.TypeCDSBlock, o.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("%w: max entries %d: %w", alloc.ErrInvalidArgument, o.MaxEntries, err)
	}

	s := &Store{
		region:  r,
		opts:    o,
		rows:    make([]format.RegistryRow, o.MaxEntries),
		ids:     make([]Handle, o.MaxEntries),
		handles: handles,
	}
	if err := s.checkGeometry(); err != nil {
		return nil, err
	}

	if o.Reset == ResetProcessor {
		err := s.restore()
		if err == nil {
			s.restored = true
			logger.L.Debug("cds: restored", "entries", s.handles.Len(), "tail", s.pool.Tail())
			return s, nil
		}
		if o.StrictRestore {
			return nil, fmt.Errorf("%w: %w", ErrRegionInvalid, err)
		}
		logger.L.Warn("cds: restore failed, reinitializing region", "err", err)
	}
	if err := s.reinitialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) newPool() (*alloc.Pool, error) {
	size := uint32(s.region.Size()) - format.CDSReservedSize
	p, err := alloc.New(alloc.NewIndirectStore(s.region), format.SignatureSize, size,
		&alloc.Config{BucketSizes: s.opts.BlockSizes})
	if err != nil {
		return nil, fmt.Errorf("cds: %w", err)
	}
	return p, nil
}

// checkGeometry verifies that the registry block fits a bucket and that the
// region can hold it.
func (s *Store) checkGeometry() error {
	p, err := s.newPool()
	if err != nil {
		return err
	}
	need := s.registryBlockSize()
	capacity, ok := p.BucketFor(need)
	if !ok {
		return fmt.Errorf("%w: %d-byte registry exceeds largest bucket %d",
			alloc.ErrInvalidArgument, need, p.LargestBucket())
	}
	if uint64(p.Start())+alloc.DescriptorSize+uint64(capacity) > uint64(p.Max()) {
		return fmt.Errorf("%w: %d bytes cannot hold a %d-entry registry",
			ErrRegionTooSmall, s.region.Size(), len(s.rows))
	}
	return nil
}

// restore rebuilds the allocator and registry from the region contents.
func (s *Store) restore() error {
	if err := Validate(s.region); err != nil {
		return err
	}
	p, err := s.newPool()
	if err != nil {
		return err
	}
	s.pool = p
	s.regOff = p.Start() + alloc.DescriptorSize

	var raw [format.DescriptorSize]byte
	if err := readFull(s.region, raw[:], int64(p.Start())); err != nil {
		return err
	}
	d, err := format.ParseDescriptor(raw[:])
	if err != nil {
		return err
	}
	if !d.Intact() || d.State() != format.StateAllocated || d.Size() != s.registryBlockSize() {
		return fmt.Errorf("%w: registry descriptor %s", ErrRegionInvalid, d)
	}

	h, rows, err := s.loadRegistry()
	if err != nil {
		return err
	}
	if h.Tail <= s.regOff || h.Tail > p.Max() {
		return fmt.Errorf("%w: recorded tail 0x%X outside pool", ErrRegionInvalid, h.Tail)
	}

	res := p.Rebuild(h.Tail)
	if res.Blocks == 0 {
		return fmt.Errorf("%w: rebuild recovered nothing: %w", ErrRegionInvalid, res.StopErr)
	}
	if !res.Complete {
		logger.L.Warn("cds: partial rebuild", "blocks", res.Blocks, "tail", res.Tail, "err", res.StopErr)
	}

	dropped := s.adoptRows(rows)
	if dropped > 0 || !res.Complete || int(h.Count) != s.handles.Len() {
		return s.saveRegistry()
	}
	return nil
}

// reinitialize wipes the region and lays down an empty registry.
func (s *Store) reinitialize() error {
	if err := Wipe(s.region); err != nil {
		return err
	}
	p, err := s.newPool()
	if err != nil {
		return err
	}
	s.pool = p
	s.resetRows()
	s.restored = false

	off, err := p.Allocate(s.registryBlockSize())
	if err != nil {
		return fmt.Errorf("cds: allocate registry: %w", err)
	}
	s.regOff = off
	return s.saveRegistry()
}

// Reinitialize discards every registered block and starts over with an
// empty registry. Outstanding handles become invalid.
func (s *Store) Reinitialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinitialize()
}

// Restored reports whether Open kept the previous region contents.
func (s *Store) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// Validate checks the region signatures, the allocator header and the
// registry block descriptor.
func (s *Store) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := Validate(s.region); err != nil {
		return err
	}
	if err := s.pool.Validate(); err != nil {
		return err
	}
	if _, err := s.pool.CheckBlock(s.regOff); err != nil {
		return fmt.Errorf("cds: registry block: %w", err)
	}
	return nil
}

// Flush makes pending region writes durable when the region buffers them.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.region.(region.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Stats is a snapshot of the store.
type Stats struct {
	alloc.Stats
	RegionSize    int64
	Entries       int
	MaxEntries    int
	MaxBlockSize  uint32 // largest payload a block can carry
	PayloadErrors uint32 // reads refused with ErrPayloadCorrupted
	Restored      bool
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Stats:         s.pool.Stats(),
		RegionSize:    s.region.Size(),
		Entries:       s.handles.Len(),
		MaxEntries:    len(s.rows),
		MaxBlockSize:  s.maxPayload(),
		PayloadErrors: s.payloadErrors,
		Restored:      s.restored,
	}
}
