// Package cds implements the critical data store: named blocks in a
// persistent region that survive processor resets.
//
// The region is laid out as
//
//	[_CDSBeg_][registry block][user blocks ...][_CDSEnd_]
//
// and everything between the two signatures is managed by one es/alloc Pool
// reached through an IndirectStore, so every descriptor access is a ReadAt or
// WriteAt on the region. Each block's data starts with a 4-byte header
// holding a CRC-16 of the payload that follows it. The CRC protects the
// payload; the allocator's descriptor token protects only the bookkeeping.
//
// The registry maps full names ("App.Name") to blocks and is itself stored
// in the first block of the pool. It records the allocator tail so that a
// processor reset can rebuild the allocator from the descriptors on the
// region.
//
// Open decides what to keep:
//   - ResetProcessor: signatures, registry CRC and descriptors are checked
//     and the previous contents are restored. Any failure wipes the region.
//   - ResetPowerOn: the region is always wiped.
//
// A Store is safe for concurrent use; one mutex serializes all operations.
package cds
