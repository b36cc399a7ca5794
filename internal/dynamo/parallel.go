package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks, using at
// most workers goroutines. Ranges shorter than minChunk run inline.
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		s, e := start, min(start+chunkSize, n)
		g.Go(func() error {
			fn(s, e)
			return nil
		})
	}
	_ = g.Wait()
}

// Advance integrates sys one step from x and rejects a non-finite result.
// x is not modified.
func Advance(integ Integrator, sys System, x State, t, dt float64, step int) (State, error) {
	next := integ.Step(sys, x, t, dt)
	if len(next) != len(x) {
		return nil, &SimulationError{Step: step, Time: t, Index: -1, Wrapped: ErrDimensionMismatch}
	}
	if idx := next.FirstInvalid(); idx >= 0 {
		return nil, &SimulationError{Step: step, Time: t + dt, Index: idx, Wrapped: ErrUnstable}
	}
	return next, nil
}
