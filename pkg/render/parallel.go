package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor splits [0, n) into contiguous chunks and runs fn on them
// with at most workers goroutines. It returns once every chunk is done.
func parallelFor(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n == 1 {
		fn(0, n)
		return
	}

	// A few chunks per worker keeps them busy when chunk costs differ.
	chunks := min(n, workers*4)
	size := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
