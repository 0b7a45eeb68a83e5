package testutil

import "sync"

// Race calls fn from n goroutines released together and returns the
// results indexed by goroutine.
func Race[R any](n int, fn func(i int) R) []R {
	results := make([]R, n)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = fn(i)
		}()
	}
	close(start)
	wg.Wait()
	return results
}

// Same reports whether every element equals the first. On mismatch it
// returns the index of the first differing element.
func Same[R comparable](results []R) (int, bool) {
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			return i, false
		}
	}
	return -1, true
}
