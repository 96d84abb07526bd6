package doublebuf

import "runtime"

// Reader reads a Data on behalf of a single goroutine. It owns a slot in
// the Data's registry, created on the first Read, along with the state of
// type L returned by Handle.Local. A Reader must not be used concurrently.
type Reader[T, L any] struct {
	data    *Data[T, L]
	w       *wrapper[T, L]
	closed  bool
	cleanup runtime.Cleanup
}

// acquire returns the wrapper of the reader, registering it if needed.
func (r *Reader[T, L]) acquire() (*wrapper[T, L], error) {
	if r.closed {
		return nil, ErrReaderClosed
	}
	if r.w != nil {
		if r.w.owner.Load() == nil {
			return nil, ErrClosed
		}
		return r.w, nil
	}

	w, err := r.data.addWrapper()
	if err != nil {
		return nil, err
	}
	r.w = w

	// deregister if the reader is dropped without Close. Handles hold on to
	// the reader, so this cannot happen during a read.
	r.cleanup = runtime.AddCleanup(r, (*wrapper[T, L]).release, w)
	return w, nil
}

// Read returns a Handle to the current foreground copy. The Handle must be
// Released, and should be held briefly: a Modify waits for it.
func (r *Reader[T, L]) Read() (Handle[T, L], error) {
	w, err := r.acquire()
	if err != nil {
		return Handle[T, L]{}, err
	}
	w.mark.Begin()
	return Handle[T, L]{val: r.data.unsafeRead(), w: w, r: r}, nil
}

// With calls fn with the current foreground copy and the reader's state,
// ending the read when fn returns or panics.
func (r *Reader[T, L]) With(fn func(v *T, local *L) error) error {
	h, err := r.Read()
	if err != nil {
		return err
	}
	defer h.Release()
	return fn(h.Get(), h.Local())
}

// ID returns an identifier for the reader unique within its Data, or 0
// if it has not read yet.
func (r *Reader[T, L]) ID() uint64 {
	if r.w == nil {
		return 0
	}
	return r.w.id
}

// Close deregisters the reader. Reads after Close fail with
// ErrReaderClosed. It is safe to call more than once.
func (r *Reader[T, L]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.w != nil {
		r.cleanup.Stop()
		r.w.release()
		r.w = nil
	}
}
