package format

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// RegistryHeader is the fixed header of the CDS registry payload.
type RegistryHeader struct {
	Tail     uint32 // allocator tail when the registry was written
	Capacity uint32 // number of row slots following the header
	Count    uint32 // rows currently in use
}

// RegistryPayloadSize returns the payload size of a registry with capacity rows.
func RegistryPayloadSize(capacity int) int {
	return RegistryHeaderSize + capacity*RegistryRowSize
}

// ParseRegistryHeader validates the magic and decodes the registry header.
func ParseRegistryHeader(b []byte) (RegistryHeader, error) {
	if len(b) < RegistryHeaderSize {
		return RegistryHeader{}, fmt.Errorf("registry: %w", ErrTruncated)
	}
	if magic := ReadU32(b, RegMagicOffset); magic != RegistryMagic {
		return RegistryHeader{}, fmt.Errorf("registry magic 0x%08X: %w", magic, ErrSignatureMismatch)
	}
	h := RegistryHeader{
		Tail:     ReadU32(b, RegTailOffset),
		Capacity: ReadU32(b, RegCapacityOffset),
		Count:    ReadU32(b, RegCountOffset),
	}
	if RegistryPayloadSize(int(h.Capacity)) > len(b) {
		return RegistryHeader{}, fmt.Errorf("registry capacity %d: %w", h.Capacity, ErrTruncated)
	}
	return h, nil
}

// Encode writes h into the first RegistryHeaderSize bytes of b.
func (h RegistryHeader) Encode(b []byte) {
	PutU32(b, RegMagicOffset, RegistryMagic)
	PutU32(b, RegTailOffset, h.Tail)
	PutU32(b, RegCapacityOffset, h.Capacity)
	PutU32(b, RegCountOffset, h.Count)
}

// RegistryRow is one name-to-block mapping.
type RegistryRow struct {
	Name   string
	Offset uint32 // allocator data offset of the block
	Size   uint32 // payload size, excluding the block header
	Flags  uint32
}

// InUse reports whether the row is populated.
func (r RegistryRow) InUse() bool { return r.Flags&RowInUse != 0 }

// CriticalTable reports whether the block belongs to the table services.
func (r RegistryRow) CriticalTable() bool { return r.Flags&RowCriticalTable != 0 }

// RowAt decodes row i of the registry payload b.
func RowAt(b []byte, i int) (RegistryRow, error) {
	off := RegistryHeaderSize + i*RegistryRowSize
	if off < RegistryHeaderSize || off+RegistryRowSize > len(b) {
		return RegistryRow{}, fmt.Errorf("registry row %d: %w", i, ErrTruncated)
	}
	row := b[off : off+RegistryRowSize]
	name, err := DecodeName(row[RowNameOffset : RowNameOffset+RegistryNameSize])
	if err != nil {
		return RegistryRow{}, fmt.Errorf("registry row %d: %w", i, err)
	}
	return RegistryRow{
		Name:   name,
		Offset: ReadU32(row, RowOffsetOffset),
		Size:   ReadU32(row, RowSizeOffset),
		Flags:  ReadU32(row, RowFlagsOffset),
	}, nil
}

// PutRow encodes r as row i of the registry payload b.
func PutRow(b []byte, i int, r RegistryRow) error {
	off := RegistryHeaderSize + i*RegistryRowSize
	if off < RegistryHeaderSize || off+RegistryRowSize > len(b) {
		return fmt.Errorf("registry row %d: %w", i, ErrTruncated)
	}
	row := b[off : off+RegistryRowSize]
	clear(row)
	if r.InUse() {
		name, err := EncodeName(r.Name)
		if err != nil {
			return err
		}
		copy(row[RowNameOffset:], name)
	}
	PutU32(row, RowOffsetOffset, r.Offset)
	PutU32(row, RowSizeOffset, r.Size)
	PutU32(row, RowFlagsOffset, r.Flags)
	return nil
}

// EncodeName converts name to the Windows-1252 bytes stored in a row. Names
// that contain NUL or fall outside the code page fail with ErrNameEncoding;
// names longer than MaxNameLen fail with ErrNameTooLong.
func EncodeName(name string) ([]byte, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return nil, fmt.Errorf("name %q contains NUL: %w", name, ErrNameEncoding)
	}
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("name %q: %w", name, ErrNameEncoding)
	}
	if len(encoded) > MaxNameLen {
		return nil, fmt.Errorf("name %q is %d bytes (max %d): %w", name, len(encoded), MaxNameLen, ErrNameTooLong)
	}
	return encoded, nil
}

// DecodeName converts a NUL padded name field back to a Go string.
func DecodeName(field []byte) (string, error) {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	if isASCII(field) {
		return string(field), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(field)
	if err != nil {
		return "", fmt.Errorf("failed to decode Windows-1252 name: %w", err)
	}
	return string(decoded), nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
