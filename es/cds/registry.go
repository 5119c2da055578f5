package cds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
	"github.com/joshuapare/flightmem/internal/resid"
)

// Handle names a registered block. Handles are only meaningful to the Store
// that issued them and do not survive a reset; use Lookup after Open.
type Handle = resid.ID

// registryBlockSize is the allocation size of the registry block.
func (s *Store) registryBlockSize() uint32 {
	return uint32(format.BlockHeaderSize + format.RegistryPayloadSize(len(s.rows)))
}

// saveRegistry rewrites the registry block from the in-memory rows.
func (s *Store) saveRegistry() error {
	payload := make([]byte, format.RegistryPayloadSize(len(s.rows)))
	count := 0
	for i, r := range s.rows {
		if err := format.PutRow(payload, i, r); err != nil {
			return fmt.Errorf("cds: %w", err)
		}
		if r.InUse() {
			count++
		}
	}
	format.RegistryHeader{
		Tail:     s.pool.Tail(),
		Capacity: uint32(len(s.rows)),
		Count:    uint32(count),
	}.Encode(payload)
	return s.writeBlock(s.regOff, payload)
}

// loadRegistry reads and checks the registry block and returns its header
// and rows. It does not touch the allocator.
func (s *Store) loadRegistry() (format.RegistryHeader, []format.RegistryRow, error) {
	payload, err := s.readBlock(s.regOff, format.RegistryPayloadSize(len(s.rows)))
	if err != nil {
		return format.RegistryHeader{}, nil, err
	}
	h, err := format.ParseRegistryHeader(payload)
	if err != nil {
		return h, nil, fmt.Errorf("%w: %w", ErrRegionInvalid, err)
	}
	if int(h.Capacity) != len(s.rows) {
		return h, nil, fmt.Errorf("%w: registry holds %d rows, configured for %d",
			ErrRegionInvalid, h.Capacity, len(s.rows))
	}
	rows := make([]format.RegistryRow, len(s.rows))
	for i := range rows {
		if rows[i], err = format.RowAt(payload, i); err != nil {
			return h, nil, fmt.Errorf("%w: %w", ErrRegionInvalid, err)
		}
	}
	return h, rows, nil
}

// adoptRows installs rows restored from the region, dropping any whose block
// the rebuilt allocator does not vouch for. It reports how many were dropped.
func (s *Store) adoptRows(rows []format.RegistryRow) int {
	s.resetRows()
	dropped := 0
	for i, r := range rows {
		if !r.InUse() {
			continue
		}
		if err := s.checkRow(r, i); err != nil {
			dropped++
			logger.L.Warn("cds: dropping registry row", "name", r.Name, "offset", r.Offset, "err", err)
			continue
		}
		id, err := s.handles.Add(i)
		if err != nil {
			dropped++
			continue
		}
		s.rows[i] = r
		s.ids[i] = id
	}
	return dropped
}

func (s *Store) checkRow(r format.RegistryRow, i int) error {
	if r.Offset == s.regOff {
		return fmt.Errorf("%w: row %d aliases the registry", ErrRegionInvalid, i)
	}
	if _, _, err := splitName(r.Name); err != nil {
		return err
	}
	if s.find(r.Name) >= 0 {
		return fmt.Errorf("%w: row %d repeats %q", ErrRegionInvalid, i, r.Name)
	}
	info, err := s.pool.CheckBlock(r.Offset)
	if err != nil {
		return err
	}
	if info.State != format.StateAllocated || info.Size != r.Size+format.BlockHeaderSize {
		return fmt.Errorf("%w: row %d size %d, block holds %d (%s)",
			ErrRegionInvalid, i, r.Size, info.Size, info.State)
	}
	return nil
}

func (s *Store) resetRows() {
	clear(s.rows)
	clear(s.ids)
	s.handles.Clear()
}

// find returns the row index holding fullName, or -1.
func (s *Store) find(fullName string) int {
	for i := range s.rows {
		if s.rows[i].InUse() && s.rows[i].Name == fullName {
			return i
		}
	}
	return -1
}

// freeRow returns the index of an unused row, or -1.
func (s *Store) freeRow() int {
	for i := range s.rows {
		if !s.rows[i].InUse() {
			return i
		}
	}
	return -1
}

// rowFor resolves a handle to its row index.
func (s *Store) rowFor(h Handle) (int, error) {
	i, err := s.handles.Get(h)
	if err != nil {
		if errors.Is(err, resid.ErrInvalidID) {
			return -1, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return -1, err
	}
	return i, nil
}

// splitName returns the owning application and block name of a full name.
func splitName(fullName string) (string, string, error) {
	app, name, ok := strings.Cut(fullName, ".")
	if !ok || app == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q is not App.Name", ErrInvalidName, fullName)
	}
	return app, name, nil
}

// joinName builds and checks the full name of a block.
func joinName(app, name string) (string, error) {
	if app == "" || name == "" || strings.Contains(app, ".") {
		return "", fmt.Errorf("%w: app %q name %q", ErrInvalidName, app, name)
	}
	full := app + "." + name
	if _, err := format.EncodeName(full); err != nil {
		switch {
		case errors.Is(err, format.ErrNameTooLong):
			return "", fmt.Errorf("%w: %w", ErrNameTooLong, err)
		default:
			return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
		}
	}
	return full, nil
}

// maxPayload is the largest payload a block can carry.
func (s *Store) maxPayload() uint32 {
	return s.pool.LargestBucket() - format.BlockHeaderSize
}
