package arena

import (
	stderrors "errors"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// TemporaryRegion is a checkpoint of an Arena's cursor. Everything
// allocated after the region was opened is either kept (Commit) or
// reclaimed in bulk (Rollback). Regions close in strict LIFO order and
// cannot be reused once closed.
type TemporaryRegion struct {
	arena      *Arena
	checkpoint int
	closed     bool
}

// OpenTemporaryRegion records the current cursor and returns an open region
// nested inside any region already open.
func (a *Arena) OpenTemporaryRegion() *TemporaryRegion {
	a.panicIfReleased()
	r := &TemporaryRegion{
		arena:      a,
		checkpoint: a.used,
	}
	a.regions = append(a.regions, r)
	a.observe()
	return r
}

// Commit closes the region and keeps every allocation made inside it.
func (r *TemporaryRegion) Commit() error {
	if err := r.close("commit"); err != nil {
		return err
	}
	a := r.arena
	a.stats.commits++
	if a.inst != nil {
		a.inst.commits.Inc()
	}
	a.observe()
	return nil
}

// Rollback closes the region and moves the arena's cursor back to the
// checkpoint. Pointers obtained inside the region must not be used
// afterwards; their bytes will be handed out again.
func (r *TemporaryRegion) Rollback() error {
	if err := r.close("rollback"); err != nil {
		return err
	}
	a := r.arena
	a.used = r.checkpoint
	a.stats.rollbacks++
	if a.inst != nil {
		a.inst.rollbacks.Inc()
	}
	a.observe()
	return nil
}

// close validates the LIFO discipline. On failure nothing is mutated.
func (r *TemporaryRegion) close(op string) error {
	a := r.arena
	a.panicIfReleased()
	if r.closed {
		err := errors.Wrapf(ErrRegionClosed, "%s of region at offset %d", op, r.checkpoint)
		level.Error(a.logger).Log("msg", "temporary region misuse", "op", op, "err", err)
		return err
	}
	if n := len(a.regions); a.regions[n-1] != r {
		err := errors.Wrapf(ErrRegionNotInnermost, "%s of region at offset %d while %d are open", op, r.checkpoint, n)
		level.Error(a.logger).Log("msg", "temporary region misuse", "op", op, "err", err)
		return err
	}
	a.regions[len(a.regions)-1] = nil
	a.regions = a.regions[:len(a.regions)-1]
	r.closed = true
	return nil
}

// abandonInner closes, without touching the cursor, every region opened
// after r and still open. r must be open. Returns how many were closed.
func (a *Arena) abandonInner(r *TemporaryRegion) int {
	n := 0
	for top := len(a.regions) - 1; top >= 0 && a.regions[top] != r; top-- {
		a.regions[top].closed = true
		a.regions[top] = nil
		a.regions = a.regions[:top]
		n++
	}
	return n
}

// Checkpoint returns the arena offset captured when the region was opened.
func (r *TemporaryRegion) Checkpoint() int { return r.checkpoint }

// Open reports whether the region has not been committed or rolled back.
func (r *TemporaryRegion) Open() bool { return !r.closed }

// Allocated returns the bytes, padding included, taken from the arena since
// the region was opened. Only meaningful while the region is open.
func (r *TemporaryRegion) Allocated() int {
	if r.closed {
		return 0
	}
	return r.arena.used - r.checkpoint
}

// WithTemporaryRegion runs fn inside a new region. The region is committed
// when fn returns nil and rolled back when fn returns an error or panics;
// the panic is re-raised afterwards. If fn closes the region itself it is
// left alone.
//
// Regions fn opened and left open are closed along with the helper's
// region, which is then rolled back, and ErrRegionNotInnermost is returned
// joined with fn's error.
func (a *Arena) WithTemporaryRegion(fn func(r *TemporaryRegion) error) error {
	r := a.OpenTemporaryRegion()
	returned := false
	defer func() {
		if returned || !r.Open() {
			return
		}
		if err := a.unwind(r, nil); err != nil {
			level.Error(a.logger).Log("msg", "temporary region left open by panicking function", "err", err)
		}
	}()

	err := fn(r)
	returned = true
	if !r.Open() {
		return err
	}
	if err != nil {
		return a.unwind(r, err)
	}
	if leaked := a.abandonInner(r); leaked > 0 {
		return a.unwindLeaked(r, leaked, nil)
	}
	return r.Commit()
}

// unwind rolls r back after fn failed or panicked, closing any regions fn
// left open above it. It returns cause joined with any usage error.
func (a *Arena) unwind(r *TemporaryRegion, cause error) error {
	if leaked := a.abandonInner(r); leaked > 0 {
		return a.unwindLeaked(r, leaked, cause)
	}
	if err := r.Rollback(); err != nil {
		return stderrors.Join(cause, err)
	}
	return cause
}

func (a *Arena) unwindLeaked(r *TemporaryRegion, leaked int, cause error) error {
	usage := errors.Wrapf(ErrRegionNotInnermost, "%d region(s) left open inside WithTemporaryRegion", leaked)
	level.Error(a.logger).Log("msg", "temporary region misuse", "op", "with", "err", usage)
	if err := r.Rollback(); err != nil {
		usage = stderrors.Join(usage, err)
	}
	return stderrors.Join(cause, usage)
}
