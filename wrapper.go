package doublebuf

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// wrapper is the per reader state registered with a Data. The marker is
// taken by its reader for every read and by a Modify draining the readers.
// Wrappers are padded so that the markers of different readers do not
// share a cache line.
type wrapper[T, L any] struct {
	_     cpu.CacheLinePad
	mark  marker
	local L
	id    uint64
	// owner is cleared by Data.Close so that a reader closing later does
	// not try to deregister from a closed Data.
	owner atomic.Pointer[Data[T, L]]
	_     cpu.CacheLinePad
}

// release deregisters the wrapper from its owner, if it still has one.
func (w *wrapper[T, L]) release() {
	if d := w.owner.Load(); d != nil {
		d.removeWrapper(w)
	}
}

// addWrapper allocates and registers a new wrapper.
func (d *Data[T, L]) addWrapper() (*wrapper[T, L], error) {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.maxReaders > 0 && len(d.wrappers) >= d.maxReaders {
		return nil, ErrTooManyReaders
	}

	d.ids++
	w := &wrapper[T, L]{id: d.ids}
	w.owner.Store(d)
	d.wrappers = append(d.wrappers, w)
	return w, nil
}

// removeWrapper deregisters w. Order of the registry is irrelevant so the
// last wrapper is moved into the hole.
func (d *Data[T, L]) removeWrapper(w *wrapper[T, L]) {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	// Close may have won the race for the lock.
	if w.owner.Load() != d {
		return
	}
	w.owner.Store(nil)

	for i, x := range d.wrappers {
		if x == w {
			last := len(d.wrappers) - 1
			d.wrappers[i] = d.wrappers[last]
			d.wrappers[last] = nil
			d.wrappers = d.wrappers[:last]
			return
		}
	}
}

// drain waits for every read that started before the last publish to end.
// Reads starting after the publish see the new index, so only readers with
// a read in flight are waited on. Every registered wrapper is visited.
func (d *Data[T, L]) drain() {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	for _, w := range d.wrappers {
		// the index store happened before this load, so a reader that has
		// not yet bumped its marker will load the new index.
		if !w.mark.Zero() {
			w.mark.Wait()
		}
	}
}

// Readers returns the number of registered readers.
func (d *Data[T, L]) Readers() int {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	return len(d.wrappers)
}

// Close deregisters every reader and makes future reads fail with
// ErrClosed. No Read or Modify may be in flight while Close runs.
// Readers closed afterward do nothing.
func (d *Data[T, L]) Close() {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	for i, w := range d.wrappers {
		w.owner.Store(nil)
		d.wrappers[i] = nil
	}
	d.wrappers = nil
	d.closed = true
}
