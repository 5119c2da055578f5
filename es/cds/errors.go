package cds

import (
	"errors"
	"fmt"

	"github.com/joshuapare/flightmem/es/alloc"
)

var (
	// ErrPayloadCorrupted indicates a block whose payload no longer matches
	// its stored CRC. The bytes are not returned.
	ErrPayloadCorrupted = errors.New("cds: payload corrupted")

	// ErrDuplicateName is returned when a name is registered again with the
	// same size. The existing handle is returned alongside it.
	ErrDuplicateName = errors.New("cds: name already registered")

	// ErrNameTooLong indicates a full name longer than format.MaxNameLen bytes.
	ErrNameTooLong = errors.New("cds: name too long")

	// ErrInvalidName indicates an empty, dotted or unencodable name part.
	ErrInvalidName = errors.New("cds: invalid name")

	// ErrNotFound indicates a name or handle with no registry row.
	ErrNotFound = errors.New("cds: not found")

	// ErrOwnerActive refuses a delete while the owning application runs.
	ErrOwnerActive = errors.New("cds: owning application is active")

	// ErrCriticalTable refuses a delete of a table-owned block outside the
	// table owner's own delete path.
	ErrCriticalTable = errors.New("cds: block belongs to a critical table")

	// ErrRegistryFull indicates every registry row is in use.
	ErrRegistryFull = errors.New("cds: registry full")

	// ErrInvalidSize indicates a block size of zero or one that cannot fit
	// the largest bucket together with the block header.
	ErrInvalidSize = fmt.Errorf("cds: %w", alloc.ErrInvalidSize)

	// ErrSizeMismatch indicates a write or read buffer that does not match
	// the registered size.
	ErrSizeMismatch = errors.New("cds: size mismatch")

	// ErrRegionInvalid indicates region contents that cannot be restored.
	ErrRegionInvalid = errors.New("cds: region contents invalid")

	// ErrRegionTooSmall indicates a region that cannot hold the signatures
	// and the registry block.
	ErrRegionTooSmall = errors.New("cds: region too small")
)
