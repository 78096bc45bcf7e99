package arena

import (
	"reflect"
	"unsafe"
)

// zeroBlock is the address handed out for zero-sized allocations.
var zeroBlock uint64

// Alloc returns a pointer to a T placed inside the arena, aligned for T.
// Under ZeroOnAlloc the value is zeroed; under LeaveAsIs it holds whatever
// bytes the buffer had. The pointer stays valid until the arena is
// released, reset, or a rollback covers it.
//
// T must not contain Go pointers (strings, slices, maps, interfaces and so
// on); such types fail with ErrPointerType. Zero-sized types consume no
// capacity.
func Alloc[T any](a *Arena) (*T, error) {
	a.panicIfReleased()
	if err := a.checkType(reflect.TypeFor[T]()); err != nil {
		return nil, err
	}

	var zero T
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if size == 0 {
		return (*T)(unsafe.Pointer(&zeroBlock)), nil
	}
	b, err := a.AllocAligned(size, align)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocSlice allocates n contiguous elements of type T inside the arena.
// Element contents follow the arena's ZeroPolicy. Returns nil, nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	a.panicIfReleased()
	if n <= 0 {
		return nil, nil
	}
	if err := a.checkType(reflect.TypeFor[T]()); err != nil {
		return nil, err
	}

	var zero T
	elemSize, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if elemSize == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&zeroBlock)), n), nil
	}
	if uintptr(n) > ^uintptr(0)/elemSize {
		return nil, a.sliceOverflow(n, elemSize, align)
	}
	b, err := a.AllocAligned(elemSize*uintptr(n), align)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// NewValue allocates a T and initialises it to v. It is Alloc followed by a
// store, for callers that want a value in place regardless of ZeroPolicy.
func NewValue[T any](a *Arena, v T) (*T, error) {
	p, err := Alloc[T](a)
	if err != nil {
		return nil, err
	}
	*p = v
	return p, nil
}
