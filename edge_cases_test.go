package arena_test

import (
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arena/v2"
)

// TestEdgeCases covers lifecycle and boundary behaviour through the public API.
func TestEdgeCases(t *testing.T) {
	t.Run("UseAfterRelease", func(t *testing.T) {
		a := arena.NewFromBuffer(make([]byte, 1024))
		r := a.OpenTemporaryRegion()
		a.Release()

		tests := map[string]func(){
			"AllocBytes":          func() { _, _ = a.AllocBytes(100) },
			"AllocBytesZero":      func() { _, _ = a.AllocBytes(0) },
			"AllocAligned":        func() { _, _ = a.AllocAligned(8, 8) },
			"Reset":               func() { _ = a.Reset() },
			"Alloc":               func() { _, _ = arena.Alloc[int](a) },
			"AllocSlice":          func() { _, _ = arena.AllocSlice[int](a, 10) },
			"OpenTemporaryRegion": func() { a.OpenTemporaryRegion() },
			"Rollback":            func() { _ = r.Rollback() },
		}
		for name, fn := range tests {
			assert.Panics(t, fn, name)
		}
	})

	t.Run("MultipleReleases", func(t *testing.T) {
		a := arena.NewFromBuffer(make([]byte, 1024))
		a.Release()
		// Multiple releases should be safe
		a.Release()
		a.Release()
	})

	t.Run("ExactCapacityAllocation", func(t *testing.T) {
		a := arena.NewFromBuffer(make([]byte, 1024))

		buf, err := a.AllocBytes(1024)
		require.NoError(t, err)
		assert.Len(t, buf, 1024)

		_, err = a.AllocBytes(1)
		require.ErrorIs(t, err, arena.ErrOutOfMemory)
		assert.Equal(t, 0, a.RemainingCapacity())
	})

	t.Run("CapacitySmallerThanBuffer", func(t *testing.T) {
		buf := make([]byte, 128)
		a := arena.New(buf, 64)

		b, err := a.AllocBytes(64)
		require.NoError(t, err)
		assert.Equal(t, 64, cap(b), "blocks never reach past capacity")
		_, err = a.AllocBytes(1)
		require.ErrorIs(t, err, arena.ErrOutOfMemory)
	})

	t.Run("OverAlignedRequest", func(t *testing.T) {
		a := arena.NewFromBuffer(make([]byte, 256))
		_, err := a.AllocBytes(1)
		require.NoError(t, err)

		b, err := a.AllocAligned(16, 64)
		require.NoError(t, err)
		assert.Zero(t, uintptr(unsafe.Pointer(&b[0]))%64)
	})
}

// TestMemoryCorruption checks allocations never overlap
func TestMemoryCorruption(t *testing.T) {
	a := arena.NewFromBuffer(make([]byte, 100*64))

	ptrs := make([]*[64]byte, 100)
	for i := range ptrs {
		p, err := arena.Alloc[[64]byte](a)
		require.NoError(t, err)
		ptrs[i] = p
		// Fill with pattern
		for j := range ptrs[i] {
			ptrs[i][j] = byte(i)
		}
	}

	for i, ptr := range ptrs {
		for j, b := range ptr {
			require.Equal(t, byte(i), b, "memory corruption at ptr[%d][%d]", i, j)
		}
	}
	assert.Equal(t, 0, a.RemainingCapacity())
}

// TestRandomRegionSequences drives random allocations and region operations
// against a stack of expected checkpoints.
func TestRandomRegionSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	a := arena.NewFromBuffer(make([]byte, 8192))

	type open struct {
		r        *arena.TemporaryRegion
		expected int
	}
	var stack []open

	for step := 0; step < 5000; step++ {
		switch op := rng.IntN(10); {
		case op < 5:
			before := a.Used()
			size := uintptr(1 + rng.IntN(200))
			align := uintptr(1) << rng.IntN(5)
			b, err := a.AllocAligned(size, align)
			if err != nil {
				require.ErrorIs(t, err, arena.ErrOutOfMemory)
				require.Equal(t, before, a.Used())
				continue
			}
			require.Len(t, b, int(size))
			require.Zero(t, uintptr(unsafe.Pointer(&b[0]))%align)
			require.GreaterOrEqual(t, a.Used(), before+int(size))
			require.LessOrEqual(t, a.Used(), a.Capacity())
		case op < 7:
			stack = append(stack, open{r: a.OpenTemporaryRegion(), expected: a.Used()})
		case op < 9 && len(stack) > 0:
			if len(stack) > 1 && rng.IntN(4) == 0 {
				// Closing anything but the innermost region is refused.
				used := a.Used()
				require.ErrorIs(t, stack[0].r.Commit(), arena.ErrRegionNotInnermost)
				require.Equal(t, used, a.Used())
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if rng.IntN(2) == 0 {
				used := a.Used()
				require.NoError(t, top.r.Commit())
				require.Equal(t, used, a.Used())
			} else {
				require.NoError(t, top.r.Rollback())
				require.Equal(t, top.expected, a.Used())
			}
		default:
			if len(stack) == 0 {
				require.NoError(t, a.Reset())
				require.Equal(t, 0, a.Used())
			} else {
				require.ErrorIs(t, a.Reset(), arena.ErrRegionsOpen)
			}
		}
		require.Equal(t, len(stack), a.OpenRegions())
	}
}
