package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Go's encoding/binary is already inlined well by the compiler, so these are
// thin offset-taking wrappers that keep the decoders readable.

// PutU16 writes a uint16 value to the buffer at the specified offset in little-endian format.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU16 reads a uint16 value from the buffer at the specified offset in little-endian format.
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}
