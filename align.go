package arena

import "unsafe"

// MaxAlign is the alignment of blocks returned by AllocBytes (pointer size).
const MaxAlign = unsafe.Sizeof(uintptr(0))

func isPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// alignUp rounds off up to a multiple of align. align must be a power of two.
func alignUp(off, align uintptr) uintptr {
	mask := align - 1
	return (off + mask) &^ mask
}

// alignedOffset returns the smallest offset >= used such that base+offset
// is a multiple of align. The buffer start is not assumed to be aligned.
func alignedOffset(base, used, align uintptr) uintptr {
	return alignUp(base+used, align) - base
}

// fits reports whether size bytes starting at off stay within capacity.
// Written to avoid overflow for huge sizes.
func fits(off, size, capacity uintptr) bool {
	return off <= capacity && size <= capacity-off
}
