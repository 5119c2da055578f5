// Package resid issues opaque resource identifiers and keeps the fixed-size
// tables that map them back to objects.
//
// An ID packs a resource type into the high 16 bits and a serial number into
// the low 16 bits. Serials advance monotonically per table, so an ID that was
// released and whose slot was reused by a newer resource no longer resolves.
// Callers must treat IDs as opaque; nothing in an ID is an address or offset.
package resid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an ID does not name a live entry.
	ErrInvalidID = errors.New("resid: invalid resource id")

	// ErrTableFull is returned when every slot of a table is in use.
	ErrTableFull = errors.New("resid: table full")
)

const (
	serialBits = 16
	serialMask = 1<<serialBits - 1

	// MaxCapacity is the largest table a single type can have.
	MaxCapacity = serialMask + 1
)

// Type identifies the kind of resource an ID names.
type Type uint16

const (
	TypeUndefined Type = iota
	TypeMemPool
	TypeCDSBlock
)

func (t Type) String() string {
	switch t {
	case TypeMemPool:
		return "mempool"
	case TypeCDSBlock:
		return "cdsblock"
	default:
		return fmt.Sprintf("type(%d)", uint16(t))
	}
}

// ID is an opaque resource identifier. The zero ID is never issued.
type ID uint32

// Undefined is the zero ID.
const Undefined ID = 0

// Make composes an ID from a type and serial.
func Make(t Type, serial uint32) ID {
	return ID(uint32(t)<<serialBits | serial&serialMask)
}

// Type returns the resource type encoded in id.
func (id ID) Type() Type { return Type(uint32(id) >> serialBits) }

// Serial returns the serial number encoded in id.
func (id ID) Serial() uint32 { return uint32(id) & serialMask }

// Defined reports whether id could name a resource at all.
func (id ID) Defined() bool { return id.Type() != TypeUndefined }

func (id ID) String() string {
	return fmt.Sprintf("%s:0x%08X", id.Type(), uint32(id))
}
