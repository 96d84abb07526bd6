// Package roundrobin selects servers from a list in round robin order. The
// list is kept in a doublebuf.Data so that selection never blocks on
// changes to it.
package roundrobin

import (
	"github.com/zeebo/errs"
	"github.com/zeebo/pcg"

	"github.com/zeebo/doublebuf"
)

// Error is the class of errors returned by this package.
var Error = errs.Class("roundrobin")

// ErrNoServers is returned by Select when there are no servers.
var ErrNoServers = Error.New("no servers")

// ServerID identifies a server.
type ServerID uint32

// servers is the value kept in both copies of the Data.
type servers struct {
	list  []ServerID
	index map[ServerID]int // position of each id in list
}

// cursor is the per Selector position in the list.
type cursor struct {
	offset int
	stride int
}

// Balancer holds a set of servers. The zero value is ready to use.
type Balancer struct {
	data doublebuf.Data[servers, cursor]
}

func add(bg *servers, id ServerID) int {
	if _, ok := bg.index[id]; ok {
		return 0
	}
	if bg.index == nil {
		bg.index = make(map[ServerID]int)
	}
	bg.index[id] = len(bg.list)
	bg.list = append(bg.list, id)
	return 1
}

func remove(bg *servers, id ServerID) int {
	i, ok := bg.index[id]
	if !ok {
		return 0
	}
	last := len(bg.list) - 1
	bg.list[i] = bg.list[last]
	bg.index[bg.list[i]] = i
	bg.list = bg.list[:last]
	delete(bg.index, id)
	return 1
}

// Add adds the server and reports if it was not already present.
func (b *Balancer) Add(id ServerID) bool {
	return doublebuf.ModifyArg(&b.data, add, id) != 0
}

// Remove removes the server and reports if it was present. The last server
// in the list takes its place.
func (b *Balancer) Remove(id ServerID) bool {
	return doublebuf.ModifyArg(&b.data, remove, id) != 0
}

// Servers returns a copy of the current list of servers.
func (b *Balancer) Servers() ([]ServerID, error) {
	r := b.data.Reader()
	defer r.Close()

	var out []ServerID
	err := r.With(func(s *servers, _ *cursor) error {
		out = append(out, s.list...)
		return nil
	})
	return out, err
}

// Selector returns a Selector for use by a single goroutine.
func (b *Balancer) Selector() *Selector {
	return &Selector{r: b.data.Reader()}
}

// Close releases every Selector. Selecting afterward fails. No Add, Remove
// or Select may be running.
func (b *Balancer) Close() {
	b.data.Close()
}

// Selector picks servers from a Balancer. It remembers its position between
// calls to Select and must not be used concurrently.
type Selector struct {
	r *doublebuf.Reader[servers, cursor]
}

// Select returns the next server.
func (s *Selector) Select() (id ServerID, err error) {
	err = s.r.With(func(v *servers, c *cursor) error {
		n := len(v.list)
		if n == 0 {
			return ErrNoServers
		}
		// start each selector at a random place so they spread out.
		if c.stride == 0 {
			c.stride = 1
			c.offset = int(pcg.Uint32n(uint32(n)))
		}
		c.offset = (c.offset + c.stride) % n
		id = v.list[c.offset]
		return nil
	})
	return id, Error.Wrap(err)
}

// Close releases the Selector.
func (s *Selector) Close() {
	s.r.Close()
}
