package layout

import "sync"

// finalizeLine runs finalizeItem for every item in line. When parallel
// layout is enabled, items whose own node is a layout boundary are solved
// concurrently, one goroutine per boundary item (the number of goroutines
// is not bounded) joined by a sync.WaitGroup — per spec.md §4.L, a single-threaded
// run must produce bit-identical results to the parallel one, which holds
// here because every item's final main/cross size and position is already
// fully determined before finalizeItem runs; the goroutines only
// parallelize the (otherwise independent) recursive solve of each
// boundary's own subtree. Non-boundary items always run sequentially in
// document order.
func (s *solver) finalizeLine(line *flexLine, alignItems Align, isRow bool, contentW, contentH, offsetX, offsetY float64) {
	var boundaryItems []*flexItem
	for _, it := range line.items {
		if s.cfg.ParallelLayout && it.node.IsBoundary() {
			boundaryItems = append(boundaryItems, it)
			continue
		}
		finalizeItem(s, it, alignItems, line, isRow, contentW, contentH, offsetX, offsetY)
	}
	if len(boundaryItems) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, it := range boundaryItems {
		wg.Add(1)
		go func(it *flexItem) {
			defer wg.Done()
			s.metrics.parallelSolve()
			finalizeItem(s, it, alignItems, line, isRow, contentW, contentH, offsetX, offsetY)
		}(it)
	}
	wg.Wait()
}
