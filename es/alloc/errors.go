package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a bad alignment, bucket table or region.
	ErrInvalidArgument = errors.New("alloc: invalid argument")

	// ErrInvalidSize indicates a request of zero bytes or larger than the
	// largest bucket.
	ErrInvalidSize = fmt.Errorf("%w: invalid block size", ErrInvalidArgument)

	// ErrNoSpace indicates the region cannot hold another block of the
	// requested bucket.
	ErrNoSpace = errors.New("alloc: no space left in pool")

	// ErrBufferNotInPool indicates an offset outside the allocated part of the
	// pool or not on a block boundary.
	ErrBufferNotInPool = errors.New("alloc: buffer not in pool")

	// ErrBlockInvalid indicates a descriptor whose token, state or size
	// fields are inconsistent.
	ErrBlockInvalid = errors.New("alloc: block descriptor invalid")

	// ErrAccess indicates the backing store failed to read or write a descriptor.
	ErrAccess = errors.New("alloc: backing store access failed")

	// ErrInvalidPool indicates the in-memory pool header failed validation.
	ErrInvalidPool = errors.New("alloc: pool state invalid")
)
