package arena

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory is returned when an allocation, padding included,
	// does not fit in the remaining capacity. The arena is left unchanged.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrPointerType is returned when a type whose layout holds Go pointers
	// is allocated. The backing buffer is a []byte the garbage collector
	// does not scan, so such values would dangle.
	ErrPointerType = errors.New("arena: type contains pointers")

	// ErrInvalidAlignment is returned by AllocAligned for an alignment that
	// is not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")

	// ErrRegionClosed is returned when Commit or Rollback is called on a
	// region that was already committed or rolled back.
	ErrRegionClosed = errors.New("arena: temporary region already closed")

	// ErrRegionNotInnermost is returned when a region is closed while a
	// region opened after it is still open.
	ErrRegionNotInnermost = errors.New("arena: temporary region is not the innermost open region")

	// ErrRegionsOpen is returned by Reset while temporary regions are open.
	ErrRegionsOpen = errors.New("arena: temporary regions still open")
)

// IsUsageError reports whether err signals misuse of the arena API by the
// caller rather than a resource condition.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrRegionClosed) ||
		errors.Is(err, ErrRegionNotInnermost) ||
		errors.Is(err, ErrRegionsOpen) ||
		errors.Is(err, ErrInvalidAlignment)
}
