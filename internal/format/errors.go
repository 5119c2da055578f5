package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrNameEncoding indicates a name cannot be stored in a registry row.
	ErrNameEncoding = errors.New("format: name not representable")
	// ErrNameTooLong indicates a name does not fit the registry name field.
	ErrNameTooLong = errors.New("format: name too long")
)
