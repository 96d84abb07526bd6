package doublebuf

import (
	"sync"
	"sync/atomic"
)

// marker is held by its reader for the length of every read. After
// publishing a new index, Modify waits on the marker of every reader in the
// middle of a read, since that read may still point at the slot Modify is
// about to change. One marker belongs to one reader, so Begin only
// contends with a drain.
type marker struct {
	mu     sync.Mutex
	active int32
}

// Begin is called before loading the index. The count is bumped first so
// that a drain which misses it is ordered before the index load.
func (m *marker) Begin() {
	atomic.AddInt32(&m.active, 1)
	m.mu.Lock()
}

// End lets a drain waiting on the read proceed.
func (m *marker) End() {
	m.mu.Unlock()
	atomic.AddInt32(&m.active, -1)
}

// Zero reports that no read is in flight, letting a drain skip the
// marker. Any read that starts later sees the published index.
func (m *marker) Zero() bool {
	return atomic.LoadInt32(&m.active) == 0
}

// Wait blocks until the read in flight has Ended. Reads that Begin while
// Wait holds the lock are delayed only until it returns.
func (m *marker) Wait() {
	m.mu.Lock()
	m.mu.Unlock()
}
