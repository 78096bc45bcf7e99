// Package arena implements a fixed-capacity linear (bump) allocator over a
// caller-supplied byte buffer, with nested temporary regions that can be
// committed or rolled back as a unit.
package arena

import (
	"fmt"
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Arena is a bump allocator over a fixed buffer. Not goroutine-safe.
type Arena struct {
	base     []byte // borrowed, clipped to capacity
	capacity int
	used     int // offset of the next free byte
	peak     int

	regions  []*TemporaryRegion // open regions, innermost last
	released bool

	stats  counters
	zero   ZeroPolicy
	name   string
	logger log.Logger
	inst   *instruments
}

type counters struct {
	allocations       uint64
	failedAllocations uint64
	commits           uint64
	rollbacks         uint64
}

// New creates an Arena that carves allocations out of buf[:capacity].
// The arena borrows buf: the caller keeps ownership and must not write to
// it through any other path while the arena is in use.
//
// New panics if capacity is negative or buf is shorter than capacity.
func New(buf []byte, capacity int, opts ...Option) *Arena {
	if capacity < 0 {
		panic(fmt.Sprintf("arena: negative capacity %d", capacity))
	}
	if len(buf) < capacity {
		panic(fmt.Sprintf("arena: buffer of %d bytes is shorter than capacity %d", len(buf), capacity))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Arena{
		base:     buf[:capacity:capacity],
		capacity: capacity,
		zero:     o.zero,
		name:     o.name,
		logger:   log.With(o.logger, "arena", o.name),
	}
	if o.metrics != nil {
		a.inst = o.metrics.forArena(o.name, capacity)
	}
	return a
}

// NewFromBuffer is New with the capacity set to len(buf).
func NewFromBuffer(buf []byte, opts ...Option) *Arena {
	return New(buf, len(buf), opts...)
}

// AllocBytes returns n bytes aligned to MaxAlign.
// Returns nil, nil if n <= 0.
func (a *Arena) AllocBytes(n int) ([]byte, error) {
	if n <= 0 {
		a.panicIfReleased()
		return nil, nil
	}
	return a.AllocAligned(uintptr(n), MaxAlign)
}

// AllocAligned reserves size bytes whose address is a multiple of align.
// It fails with ErrOutOfMemory, leaving the arena untouched, when the block
// and its padding do not fit. A zero size returns nil, nil.
func (a *Arena) AllocAligned(size, align uintptr) ([]byte, error) {
	a.panicIfReleased()
	if !isPowerOfTwo(align) {
		err := errors.Wrapf(ErrInvalidAlignment, "align %d", align)
		level.Error(a.logger).Log("msg", "invalid allocation alignment", "err", err)
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}

	off := alignedOffset(a.baseAddr(), uintptr(a.used), align)
	if !fits(off, size, uintptr(a.capacity)) {
		return nil, a.outOfMemory(size, align)
	}

	end := off + size
	b := a.base[off:end:end]
	if a.zero == ZeroOnAlloc {
		clear(b)
	}
	a.used = int(end)
	if a.used > a.peak {
		a.peak = a.used
	}
	a.stats.allocations++
	if a.inst != nil {
		a.inst.allocations.Inc()
	}
	a.observe()
	return b, nil
}

// Reset discards every allocation. It is refused with ErrRegionsOpen while
// a temporary region is open, since the region checkpoints would then point
// past the cursor.
func (a *Arena) Reset() error {
	a.panicIfReleased()
	if len(a.regions) > 0 {
		err := errors.Wrapf(ErrRegionsOpen, "reset with %d open", len(a.regions))
		level.Error(a.logger).Log("msg", "refusing to reset arena", "err", err)
		return err
	}
	a.used = 0
	a.observe()
	return nil
}

// Release drops the arena's reference to the backing buffer and makes the
// arena unusable. Any subsequent allocation or region operation panics.
// The buffer itself stays owned by the caller.
func (a *Arena) Release() {
	a.base = nil
	a.capacity = 0
	a.used = 0
	a.regions = nil
	a.released = true
	a.observe()
}

func (a *Arena) outOfMemory(size, align uintptr) error {
	return a.allocFailed(errors.Wrapf(ErrOutOfMemory, "requested %d bytes (align %d) with %d of %d remaining",
		size, align, a.RemainingCapacity(), a.capacity))
}

// sliceOverflow reports a slice request whose byte size does not fit in a
// uintptr.
func (a *Arena) sliceOverflow(n int, elemSize, align uintptr) error {
	return a.allocFailed(errors.Wrapf(ErrOutOfMemory, "requested %d elements of %d bytes (align %d), size overflows",
		n, elemSize, align))
}

func (a *Arena) allocFailed(err error) error {
	a.stats.failedAllocations++
	if a.inst != nil {
		a.inst.failures.Inc()
	}
	level.Warn(a.logger).Log("msg", "allocation failed", "err", err)
	return err
}

func (a *Arena) baseAddr() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.base)))
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.released {
		panic("arena: use after Release()")
	}
}
