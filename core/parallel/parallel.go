// Package parallel provides CPU-parallel execution over index ranges.
// The boosting engine itself is sequential; this package is used by the
// orchestration layer to run independent fold fits concurrently.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across workers (at most NumCPU) and runs fn
// for each contiguous [start, end) chunk.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items is at or
// below threshold, in parallel otherwise.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
