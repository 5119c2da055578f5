package cds

import (
	"fmt"

	"github.com/joshuapare/flightmem/internal/checksum"
	"github.com/joshuapare/flightmem/internal/format"
	"github.com/joshuapare/flightmem/internal/logger"
)

// crcSeed is the register preset used for every payload CRC.
const crcSeed = 0

// writeBlock stores payload with a fresh CRC header at data offset off, in a
// single region write.
func (s *Store) writeBlock(off uint32, payload []byte) error {
	b := make([]byte, format.BlockHeaderSize+len(payload))
	format.BlockHeader{CRC: checksum.Checksum16(payload, crcSeed)}.Encode(b)
	copy(b[format.BlockHeaderSize:], payload)
	return writeFull(s.region, b, int64(off))
}

// readBlock reads the header and n payload bytes at data offset off and
// verifies the CRC. On mismatch nothing is returned.
func (s *Store) readBlock(off uint32, n int) ([]byte, error) {
	b := make([]byte, format.BlockHeaderSize+n)
	if err := readFull(s.region, b, int64(off)); err != nil {
		return nil, err
	}
	h, err := format.ParseBlockHeader(b)
	if err != nil {
		return nil, err
	}
	payload := b[format.BlockHeaderSize:]
	if got := checksum.Checksum16(payload, crcSeed); got != h.CRC {
		s.payloadErrors++
		err := fmt.Errorf("%w: block 0x%X crc 0x%04X, stored 0x%04X", ErrPayloadCorrupted, off, got, h.CRC)
		logger.L.Warn("cds: payload crc mismatch", "offset", off, "err", err)
		return nil, err
	}
	return payload, nil
}
