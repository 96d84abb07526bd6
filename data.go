package doublebuf

import (
	"sync"
	"sync/atomic"
)

// Options configures a Data.
type Options struct {
	// MaxReaders bounds the number of registered readers. Zero means no
	// bound.
	MaxReaders int
}

// Data holds two copies of a value of type T. Readers see the foreground
// copy without contending with each other, and Modify changes the
// background copy, swaps it to the foreground, waits for readers of the
// old foreground to finish and then changes it the same way. L is state
// kept per Reader and handed back on every read. The zero value is safe
// to use.
type Data[T, L any] struct {
	index uint32 // selects the foreground slot of data
	data  [2]T

	modMu sync.Mutex // serializes Modify

	regMu      sync.Mutex // protects the fields below
	wrappers   []*wrapper[T, L]
	closed     bool
	maxReaders int
	ids        uint64
}

// New returns a Data configured with the options. Both copies start as
// the zero value of T.
func New[T, L any](opts Options) *Data[T, L] {
	return &Data[T, L]{maxReaders: opts.MaxReaders}
}

// unsafeRead returns the foreground copy. It is only safe to dereference
// while holding a marker that a draining Modify will wait on.
func (d *Data[T, L]) unsafeRead() *T {
	return &d.data[atomic.LoadUint32(&d.index)]
}

// Reader returns a Reader for the Data. The Reader registers itself on its
// first Read and must be Closed when the goroutine owning it is done.
func (d *Data[T, L]) Reader() *Reader[T, L] {
	return &Reader[T, L]{data: d}
}

// Modify calls fn on the background copy and, if it returns nonzero,
// publishes it, waits for readers of the previous foreground and calls fn
// again on that copy so that both converge. It returns the result of the
// second call, or 0 if the first call rejected the change, in which case
// nothing is published. It is safe to be called concurrently; calls are
// serialized. It must not be called while the calling goroutine holds a
// Handle from the same Data.
func (d *Data[T, L]) Modify(fn func(bg *T) int) int {
	return d.modify(func(bg, _ *T) int { return fn(bg) })
}

// ModifyWithForeground is like Modify but fn also receives the other copy
// as read only context.
func (d *Data[T, L]) ModifyWithForeground(fn func(bg, fg *T) int) int {
	return d.modify(fn)
}

// ModifyArg is Modify with an argument bound into every call of fn.
func ModifyArg[T, L, A any](d *Data[T, L], fn func(bg *T, arg A) int, arg A) int {
	return d.modify(func(bg, _ *T) int { return fn(bg, arg) })
}

// ModifyWithForegroundArg is ModifyWithForeground with an argument bound
// into every call of fn.
func ModifyWithForegroundArg[T, L, A any](d *Data[T, L], fn func(bg, fg *T, arg A) int, arg A) int {
	return d.modify(func(bg, fg *T) int { return fn(bg, fg, arg) })
}

func (d *Data[T, L]) modify(fn func(bg, fg *T) int) int {
	d.modMu.Lock()
	defer d.modMu.Unlock()

	// only Modify stores the index and we hold modMu, so no one else can
	// be reading or writing the background slot.
	bg := 1 - atomic.LoadUint32(&d.index)
	if fn(&d.data[bg], &d.data[1-bg]) == 0 {
		return 0
	}

	// publish. readers that load the new index observe every write fn did.
	atomic.StoreUint32(&d.index, bg)
	bg = 1 - bg

	// the old foreground may still be read by reads that started before
	// the publish. once they are done, it is the background.
	d.drain()

	return fn(&d.data[bg], &d.data[1-bg])
}
