package format

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 16) = 16
func AlignUp(n, align uint32) uint32 {
	mask := align - 1
	return (n + mask) &^ mask
}

// IsAligned reports whether n is a multiple of align (a power of two).
func IsAligned(n, align uint32) bool {
	return n&(align-1) == 0
}
