package doublebuf

import "runtime"

// Handle pins the foreground copy of a Data for the duration of a read.
// The copy it points at is not changed until the Handle is Released.
type Handle[T, L any] struct {
	val *T
	w   *wrapper[T, L]
	// r keeps the Reader, and so its registration, alive until Release.
	r *Reader[T, L]
}

// Get returns the copy being read. It must not be modified, and must not
// be used after Release.
func (h Handle[T, L]) Get() *T { return h.val }

// Local returns the state of the Reader that produced the Handle. Only
// that Reader's goroutine uses it, so it is safe to modify. It returns nil
// for the zero Handle.
func (h Handle[T, L]) Local() *L {
	if h.w == nil {
		return nil
	}
	return &h.w.local
}

// Release ends the read and must be called exactly once. Releasing the
// zero Handle does nothing.
func (h Handle[T, L]) Release() {
	if h.w != nil {
		h.w.mark.End()
	}
	runtime.KeepAlive(h.r)
}
