package roundrobin

import (
	"errors"
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/zeebo/assert"

	"github.com/zeebo/doublebuf"
)

func TestBalancer(t *testing.T) {
	var b Balancer
	defer b.Close()

	assert.That(t, b.Add(7))
	assert.That(t, !b.Add(7))
	list, err := b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{7})

	assert.That(t, b.Add(3))
	list, err = b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{7, 3})

	assert.That(t, b.Remove(7))
	assert.That(t, !b.Remove(7))
	list, err = b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{3})
}

func TestBalancerRemoveMovesLast(t *testing.T) {
	var b Balancer
	defer b.Close()

	for id := ServerID(1); id <= 4; id++ {
		assert.That(t, b.Add(id))
	}
	assert.That(t, b.Remove(2))

	list, err := b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{1, 4, 3})

	// the moved server can still be found and removed.
	assert.That(t, b.Remove(4))
	list, err = b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{1, 3})
}

func TestSelectorRoundRobin(t *testing.T) {
	var b Balancer
	defer b.Close()

	s := b.Selector()
	defer s.Close()

	_, err := s.Select()
	assert.That(t, errors.Is(err, ErrNoServers))

	for id := ServerID(10); id < 15; id++ {
		b.Add(id)
	}

	// a full lap visits every server once, from a random start.
	var got []int
	for i := 0; i < 5; i++ {
		id, err := s.Select()
		assert.NoError(t, err)
		got = append(got, int(id))
	}
	next, err := s.Select()
	assert.NoError(t, err)
	assert.Equal(t, int(next), got[0])

	sort.Ints(got)
	assert.DeepEqual(t, got, []int{10, 11, 12, 13, 14})
}

func TestSelectorClosed(t *testing.T) {
	var b Balancer
	b.Add(1)

	s := b.Selector()
	_, err := s.Select()
	assert.NoError(t, err)

	b.Close()
	_, err = s.Select()
	assert.That(t, errors.Is(err, doublebuf.ErrClosed))
	assert.That(t, Error.Has(err))
	s.Close()
}

func TestBalancerConcurrent(t *testing.T) {
	var b Balancer
	defer b.Close()
	b.Add(1000)

	np := runtime.GOMAXPROCS(-1)
	num := 200

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(np)
	for i := 0; i < np; i++ {
		go func() {
			defer wg.Done()
			s := b.Selector()
			defer s.Close()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, err := s.Select()
				assert.NoError(t, err)
			}
		}()
	}

	var writers sync.WaitGroup
	writers.Add(2)
	go func() {
		defer writers.Done()
		for i := 0; i < num; i++ {
			b.Add(ServerID(i))
		}
	}()
	go func() {
		defer writers.Done()
		for i := 0; i < num; i++ {
			b.Remove(ServerID(i))
		}
	}()
	writers.Wait()
	close(stop)
	wg.Wait()

	// a second pass removes anything the remover missed by running ahead.
	for i := 0; i < num; i++ {
		b.Remove(ServerID(i))
	}
	list, err := b.Servers()
	assert.NoError(t, err)
	assert.DeepEqual(t, list, []ServerID{1000})
}
