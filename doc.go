// Package arena implements a fixed-capacity linear (bump) allocator.
//
// # Overview
//
// An Arena carves typed values out of one byte buffer that the caller
// reserves up front. Allocation only advances a cursor, so it is O(1) and
// never fragments. There is no per-object free; memory comes back in bulk
// through temporary regions, Reset, or by dropping the arena. This suits
// frame-scoped or step-scoped work in games, simulations and embedded
// systems where steady-state allocation must not touch the Go heap.
//
// # Basic Usage
//
//	buf := make([]byte, 1<<20) // owned by the caller
//	a := arena.NewFromBuffer(buf)
//
//	e, err := arena.Alloc[Entity](a)
//	if errors.Is(err, arena.ErrOutOfMemory) {
//		// free something via Rollback, or give up
//	}
//	e.Age = 29
//
//	ids, err := arena.AllocSlice[uint32](a, 128)
//
// # Temporary Regions
//
// A TemporaryRegion checkpoints the cursor. Rollback returns every byte
// allocated since the checkpoint; Commit keeps them. Regions nest and must
// be closed innermost first; closing out of order or twice returns a usage
// error and leaves the arena untouched.
//
//	r := a.OpenTemporaryRegion()
//	scratch, _ := arena.AllocSlice[float32](a, 4096)
//	// ... use scratch ...
//	_ = r.Rollback() // scratch is now invalid
//
// WithTemporaryRegion wraps the same pattern around a function, committing
// on success and rolling back on error or panic.
//
// # Memory Layout
//
// Every allocation is aligned for its type relative to the real address of
// the buffer, so a buffer that starts at an odd address still yields
// correctly aligned values. Padding counts toward Used.
//
// # Important Notes
//
//   - The arena is not safe for concurrent use.
//   - Allocated types must be pointer-free: the buffer is a []byte and the
//     garbage collector does not look inside it. Types holding pointers,
//     strings, slices, maps, interfaces, channels or funcs are rejected
//     with ErrPointerType.
//   - Pointers into a rolled-back region must not be used; nothing detects
//     it.
//   - By default each block is zeroed (ZeroOnAlloc). WithZeroPolicy(LeaveAsIs)
//     skips that, and reused bytes then keep their stale contents.
//
// # Metrics and Monitoring
//
//	fmt.Println(a.Metrics()) // used=64 B capacity=1.0 MiB ...
//
// NewMetrics creates Prometheus instruments that arenas update when built
// with WithMetrics.
package arena
