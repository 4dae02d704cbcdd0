package reactive

import "sync/atomic"

var idCounter uint64

// nextID returns a process-wide unique id, used for signals, effects, and
// deriveds so subscriber sets can dedup and remove by identity in O(n)
// without needing pointer-identity tricks across generic instantiations.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
