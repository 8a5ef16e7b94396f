package aster

import "sync"

// task spreads fn over data in contiguous chunks across workersCount
// goroutines and waits for completion. With one worker (or one item) it
// degenerates to a plain loop on the calling goroutine, keeping the
// single-threaded default path allocation-free.
func task[T any](workersCount int, data []T, fn func(index int, item T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize <= 1 {
		for i, item := range data {
			fn(i, item)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		end := min(start+chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(start, end)
	}
	wg.Wait()
}
