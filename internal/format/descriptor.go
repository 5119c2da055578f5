package format

import "fmt"

// BlockState is the state tag of a block descriptor. The two legal values
// are far apart in Hamming distance so a flipped bit never turns one into the
// other.
type BlockState uint16

const (
	StateAllocated BlockState = 0xAAAA
	StateFree      BlockState = 0xDDDD
)

// Valid reports whether s is one of the two legal tags.
func (s BlockState) Valid() bool {
	return s == StateAllocated || s == StateFree
}

func (s BlockState) String() string {
	switch s {
	case StateAllocated:
		return "allocated"
	case StateFree:
		return "free"
	default:
		return fmt.Sprintf("invalid(0x%04X)", uint16(s))
	}
}

// Descriptor is a view over the DescriptorSize bytes of a block descriptor.
// For a directly addressable pool the view aliases pool memory, so setters
// mutate the pool in place; for an indirect pool it aliases a scratch buffer
// that must be committed back.
type Descriptor []byte

// ParseDescriptor returns a descriptor view over the first DescriptorSize
// bytes of b.
func ParseDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorSize {
		return nil, fmt.Errorf("descriptor: %w", ErrTruncated)
	}
	return Descriptor(b[:DescriptorSize:DescriptorSize]), nil
}

func (d Descriptor) Token() uint16 { return ReadU16(d, DescTokenOffset) }
func (d Descriptor) State() BlockState { return BlockState(ReadU16(d, DescStateOffset)) }
func (d Descriptor) Capacity() uint32 { return ReadU32(d, DescCapacityOffset) }
func (d Descriptor) Size() uint32 { return ReadU32(d, DescSizeOffset) }
func (d Descriptor) Next() uint32 { return ReadU32(d, DescNextOffset) }
func (d Descriptor) SetState(s BlockState) { PutU16(d, DescStateOffset, uint16(s)) }
func (d Descriptor) SetSize(n uint32) { PutU32(d, DescSizeOffset, n) }
func (d Descriptor) SetNext(off uint32) { PutU32(d, DescNextOffset, off) }

// Init writes a fresh allocated descriptor.
func (d Descriptor) Init(capacity, size uint32) {
	PutU16(d, DescTokenOffset, DescriptorToken)
	d.SetState(StateAllocated)
	PutU32(d, DescCapacityOffset, capacity)
	d.SetSize(size)
	d.SetNext(0)
}

// Intact reports whether the integrity token and the state tag are both legal.
// It says nothing about whether capacity and size agree with a bucket table.
func (d Descriptor) Intact() bool {
	return d.Token() == DescriptorToken && d.State().Valid()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("desc{token=0x%04X state=%s cap=%d size=%d next=0x%X}",
		d.Token(), d.State(), d.Capacity(), d.Size(), d.Next())
}
