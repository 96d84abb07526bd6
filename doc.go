// package doublebuf provides a value that is cheap to read from many goroutines and
// rarely changed.
//
// Consider a load balancer picking a server from a list on every request while the
// list itself changes a few times a minute. Guarding the list with a sync.RWMutex
// makes every reader bump the same shared counter, which stops scaling as the number
// of cores grows. Swapping in a fresh copy with an atomic pointer avoids that, but
// every change allocates and copies the whole list.
//
// Data keeps two copies of the value instead. Readers load an index picking the
// foreground copy and mark themselves busy in state private to their Reader:
//
//	var servers doublebuf.Data[[]string, struct{}]
//
//	func Pick(r *doublebuf.Reader[[]string, struct{}], n int) string {
//		h, err := r.Read()
//		if err != nil {
//			return ""
//		}
//		defer h.Release()
//		list := *h.Get()
//		if len(list) == 0 {
//			return ""
//		}
//		return list[n%len(list)]
//	}
//
//	func Add(addr string) {
//		servers.Modify(func(bg *[]string) int {
//			*bg = append(*bg, addr)
//			return 1
//		})
//	}
//
// Modify changes the background copy, flips the index so new reads see it, waits for
// the reads that started before the flip and then applies the same change to the
// other copy. A Modify never stops the progress of reads that begin after its flip,
// so read throughput stays high while it waits. Reads that run long delay the Modify
// calls, and there is no timeout on that wait.
//
// Every goroutine reading the Data uses its own Reader and Closes it when done. The
// Reader carries a value of type L that is handed back on every Read, handy for
// things like a round robin cursor.
package doublebuf
