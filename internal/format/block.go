package format

import "fmt"

// BlockHeader is the integrity header stored in front of every CDS payload.
// It protects the payload only; the allocator's descriptor protects its own
// bookkeeping separately.
type BlockHeader struct {
	CRC uint16
}

// ParseBlockHeader decodes the header at the start of b.
func ParseBlockHeader(b []byte) (BlockHeader, error) {
	if len(b) < BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("block header: %w", ErrTruncated)
	}
	return BlockHeader{CRC: ReadU16(b, BlockCRCOffset)}, nil
}

// Encode writes h into the first BlockHeaderSize bytes of b.
func (h BlockHeader) Encode(b []byte) {
	PutU16(b, BlockCRCOffset, h.CRC)
	PutU16(b, BlockCRCOffset+2, 0)
}
