// Package parallel splits index ranges across CPU cores for independent,
// CPU-bound work such as kernel matrix rows and batch predictions.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

// DefaultThreshold is the item count below which work runs on the caller goroutine.
const DefaultThreshold = 64

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range [start, end).
//
// A panic inside fn is re-raised on the calling goroutine after all workers
// have finished, so callers can recover from it like a sequential call.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.GOMAXPROCS(0), fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker count.
func ParallelizeWorkers(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicVal interface{}
	)

	for i := 0; i < workers; i++ {
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
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicVal == nil {
						panicVal = r
					}
					panicMu.Unlock()
				}
			}()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()

	if panicVal != nil {
		panic(fmt.Sprintf("parallel worker: %v", panicVal))
	}
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold.
// If below threshold, normal sequential processing is performed.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
