// Package parallel はインデックス範囲をCPUコア数に応じて分割し、並列に処理します。
package parallel

import (
	"runtime"
	"sync"
)

// chunks splits [0, items) into at most NumCPU contiguous ranges.
func chunks(items int) [][2]int {
	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}
	size := (items + workers - 1) / workers

	out := make([][2]int, 0, workers)
	for start := 0; start < items; start += size {
		end := start + size
		if end > items {
			end = items
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// Parallelize は[0, items)を分割し、各範囲に対してfnを並列実行する
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	var wg sync.WaitGroup
	for _, c := range chunks(items) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items does not exceed threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ForEach is ParallelizeWithThreshold for fallible work. Every range runs to
// completion; the error of the lowest failing range is returned.
func ForEach(items, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		if items <= 0 {
			return nil
		}
		return fn(0, items)
	}

	ranges := chunks(items)
	errs := make([]error, len(ranges))
	var wg sync.WaitGroup
	for i, c := range ranges {
		wg.Add(1)
		go func(i, s, e int) {
			defer wg.Done()
			errs[i] = fn(s, e)
		}(i, c[0], c[1])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
