// Package format houses the on-media layout of the block allocator and the
// critical data store: block descriptors, region signatures, per-block
// integrity headers and registry rows. Every structure is little-endian and
// decoded explicitly from bytes; nothing is reinterpreted in place.
package format

var (
	// CDSBeginSignature marks the first bytes of a critical data store region.
	CDSBeginSignature = []byte{'_', 'C', 'D', 'S', 'B', 'e', 'g', '_'}

	// CDSEndSignature marks the last bytes of a critical data store region.
	CDSEndSignature = []byte{'_', 'C', 'D', 'S', 'E', 'n', 'd', '_'}
)

const (
	// DescriptorSize is the size of the block descriptor preceding every
	// block payload.
	//
	// Layout (little-endian):
	//
	//	Offset  Size  Field
	//	0x00    2     Integrity token (DescriptorToken)
	//	0x02    2     State tag (StateAllocated or StateFree)
	//	0x04    4     Block capacity (owning bucket size)
	//	0x08    4     Requested size
	//	0x0C    4     Next free block offset (0 terminates the list)
	DescriptorSize = 0x10

	DescTokenOffset    = 0x00
	DescStateOffset    = 0x02
	DescCapacityOffset = 0x04
	DescSizeOffset     = 0x08
	DescNextOffset     = 0x0C

	// DescriptorToken is the constant bit pattern stored in every descriptor.
	DescriptorToken uint16 = 0x5A5A

	// SignatureSize is the length of each CDS region signature.
	SignatureSize = 8

	// CDSReservedSize is the space taken by both signatures.
	CDSReservedSize = 2 * SignatureSize

	// BlockHeaderSize is the per-block integrity header stored between the
	// descriptor and the payload of every CDS block.
	//
	//	Offset  Size  Field
	//	0x00    2     CRC-16 of the payload
	//	0x02    2     Reserved (zero)
	BlockHeaderSize = 4

	BlockCRCOffset = 0x00

	// RegistryMagic identifies the registry block ("CDSR").
	RegistryMagic uint32 = 0x52534443

	// RegistryHeaderSize is the fixed header at the start of the registry payload.
	//
	//	Offset  Size  Field
	//	0x00    4     RegistryMagic
	//	0x04    4     Allocator tail position when the registry was last written
	//	0x08    4     Row capacity
	//	0x0C    4     Rows in use
	RegistryHeaderSize = 0x10

	RegMagicOffset    = 0x00
	RegTailOffset     = 0x04
	RegCapacityOffset = 0x08
	RegCountOffset    = 0x0C

	// RegistryNameSize is the fixed width of the name field in a registry row.
	// Names are NUL padded, so the longest storable name is one byte shorter.
	RegistryNameSize = 40

	// MaxNameLen is the longest full name ("App.Name") a row can hold.
	MaxNameLen = RegistryNameSize - 1

	// RegistryRowSize is the size of one registry row.
	//
	//	Offset  Size  Field
	//	0x00    40    Name (Windows-1252, NUL padded)
	//	0x28    4     Block data offset
	//	0x2C    4     Payload size
	//	0x30    4     Flags (RowInUse, RowCriticalTable)
	RegistryRowSize = 0x34

	RowNameOffset   = 0x00
	RowOffsetOffset = 0x28
	RowSizeOffset   = 0x2C
	RowFlagsOffset  = 0x30

	// RowInUse marks a populated row.
	RowInUse uint32 = 1 << 0
	// RowCriticalTable marks a block owned by the table services.
	RowCriticalTable uint32 = 1 << 1
)
