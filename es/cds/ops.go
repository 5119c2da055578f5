package cds

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
	"github.com/joshuapare/flightmem/internal/resid"
)

// Register reserves a block of size bytes named app.name and returns its
// handle. New blocks read back as zeros.
//
// Registering an existing name with the same size returns the existing
// handle together with ErrDuplicateName. A different size replaces the block:
// a new one is allocated, the registry row is pointed at it, and the old
// block is freed. The handle stays the same and the contents do not carry
// over.
func (s *Store) Register(app, name string, size int, critical bool) (Handle, error) {
	full, err := joinName(app, name)
	if err != nil {
		return resid.Undefined, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if size <= 0 || uint64(size) > uint64(s.maxPayload()) {
		return resid.Undefined, fmt.Errorf("%w: %d bytes for %s (max %d)", ErrInvalidSize, size, full, s.maxPayload())
	}
	flags := format.RowInUse
	if critical {
		flags |= format.RowCriticalTable
	}

	if i := s.find(full); i >= 0 {
		if s.rows[i].Size == uint32(size) {
			return s.ids[i], fmt.Errorf("%w: %s", ErrDuplicateName, full)
		}
		if err := s.replace(i, uint32(size), flags); err != nil {
			return resid.Undefined, err
		}
		return s.ids[i], nil
	}

	i := s.freeRow()
	if i < 0 {
		return resid.Undefined, fmt.Errorf("%w: %d entries", ErrRegistryFull, len(s.rows))
	}
	off, err := s.newBlock(uint32(size))
	if err != nil {
		return resid.Undefined, err
	}
	id, err := s.handles.Add(i)
	if err != nil {
		_, _ = s.pool.Free(off)
		return resid.Undefined, fmt.Errorf("%w: %w", ErrRegistryFull, err)
	}
	s.rows[i] = format.RegistryRow{Name: full, Offset: off, Size: uint32(size), Flags: flags}
	s.ids[i] = id

	if err := s.saveRegistry(); err != nil {
		s.rows[i] = format.RegistryRow{}
		s.ids[i] = resid.Undefined
		_ = s.handles.Remove(id)
		_, _ = s.pool.Free(off)
		return resid.Undefined, err
	}
	logger.L.Debug("cds: registered", "name", full, "size", size, "offset", off, "critical", critical)
	return id, nil
}

// replace moves row i onto a fresh block of size bytes.
func (s *Store) replace(i int, size, flags uint32) error {
	old := s.rows[i]
	off, err := s.newBlock(size)
	if err != nil {
		return err
	}
	s.rows[i].Offset = off
	s.rows[i].Size = size
	s.rows[i].Flags = flags
	if err := s.saveRegistry(); err != nil {
		s.rows[i] = old
		_, _ = s.pool.Free(off)
		return err
	}
	if _, err := s.pool.Free(old.Offset); err != nil {
		logger.L.Warn("cds: old block not freed, space leaked", "name", old.Name, "offset", old.Offset, "err", err)
	}
	logger.L.Debug("cds: resized", "name", old.Name, "from", old.Size, "to", size, "offset", off)
	return nil
}

// newBlock allocates a block for a size-byte payload and fills it with zeros
// under a valid CRC.
func (s *Store) newBlock(size uint32) (uint32, error) {
	off, err := s.pool.Allocate(size + format.BlockHeaderSize)
	if err != nil {
		return 0, err
	}
	if err := s.writeBlock(off, make([]byte, size)); err != nil {
		_, _ = s.pool.Free(off)
		return 0, err
	}
	return off, nil
}

// Write replaces the contents of the block named by h. data must be exactly
// the registered size.
func (s *Store) Write(h Handle, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rowFor(h)
	if err != nil {
		return err
	}
	row := s.rows[i]
	if len(data) != int(row.Size) {
		return fmt.Errorf("%w: %d bytes for %s of %d", ErrSizeMismatch, len(data), row.Name, row.Size)
	}
	return s.writeBlock(row.Offset, data)
}

// Read copies the contents of the block named by h into dst and returns the
// number of bytes copied. dst must hold at least the registered size. A
// payload whose CRC does not match fails with ErrPayloadCorrupted and dst is
// left untouched.
func (s *Store) Read(h Handle, dst []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rowFor(h)
	if err != nil {
		return 0, err
	}
	row := s.rows[i]
	if len(dst) < int(row.Size) {
		return 0, fmt.Errorf("%w: %d-byte buffer for %s of %d", ErrSizeMismatch, len(dst), row.Name, row.Size)
	}
	payload, err := s.readBlock(row.Offset, int(row.Size))
	if err != nil {
		return 0, fmt.Errorf("cds: read %s: %w", row.Name, err)
	}
	return copy(dst, payload), nil
}

// Delete removes the block named fullName ("App.Name").
//
// It is refused while the owning application is active, and for blocks
// registered as critical tables unless viaTableOwner is set. When the
// allocator rejects the block as corrupt the row is still removed, the
// space leaks, and the allocator error is returned.
func (s *Store) Delete(fullName string, viaTableOwner bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(fullName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, fullName)
	}
	app, _, err := splitName(fullName)
	if err != nil {
		return err
	}
	if s.opts.Apps != nil && s.opts.Apps.IsActive(app) {
		return fmt.Errorf("%w: %s owns %s", ErrOwnerActive, app, fullName)
	}
	row := s.rows[i]
	if row.CriticalTable() && !viaTableOwner {
		return fmt.Errorf("%w: %s", ErrCriticalTable, fullName)
	}

	_, freeErr := s.pool.Free(row.Offset)
	_ = s.handles.Remove(s.ids[i])
	s.rows[i] = format.RegistryRow{}
	s.ids[i] = resid.Undefined
	if err := s.saveRegistry(); err != nil {
		return err
	}
	if freeErr != nil {
		return fmt.Errorf("cds: %s removed, block leaked: %w", fullName, freeErr)
	}
	logger.L.Debug("cds: deleted", "name", fullName, "offset", row.Offset)
	return nil
}

// Lookup returns the handle of the block named fullName.
func (s *Store) Lookup(fullName string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(fullName)
	if i < 0 {
		return resid.Undefined, fmt.Errorf("%w: %s", ErrNotFound, fullName)
	}
	return s.ids[i], nil
}

// Name returns the full name of the block named by h.
func (s *Store) Name(h Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.rowFor(h)
	if err != nil {
		return "", err
	}
	return s.rows[i].Name, nil
}

// Size returns the registered size of the block named by h.
func (s *Store) Size(h Handle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.rowFor(h)
	if err != nil {
		return 0, err
	}
	return int(s.rows[i].Size), nil
}

// Entry describes one registered block.
type Entry struct {
	Handle        Handle
	Name          string
	Size          int
	Offset        uint32
	CriticalTable bool
}

// List returns every registered block, sorted by name.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, s.handles.Len())
	for i, r := range s.rows {
		if !r.InUse() {
			continue
		}
		out = append(out, Entry{
			Handle:        s.ids[i],
			Name:          r.Name,
			Size:          int(r.Size),
			Offset:        r.Offset,
			CriticalTable: r.CriticalTable(),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
