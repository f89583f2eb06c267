package sdfgrid

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// slabsPerThread controls how finely work is divided, so that slow slabs do
// not leave other workers idle.
const slabsPerThread = 4

// runSlabs splits [0, n) into contiguous slabs and calls f on each.
//
// With threads <= 1, slabs are processed in order on the calling goroutine.
// Otherwise at most threads slabs run at once, and the first error (or
// recovered panic) from any slab is returned after all slabs finish.
func runSlabs(threads, n int, f func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	if threads <= 1 {
		return callSlab(f, 0, n)
	}
	numSlabs := threads * slabsPerThread
	if numSlabs > n {
		numSlabs = n
	}
	var g errgroup.Group
	g.SetLimit(threads)
	for i := 0; i < numSlabs; i++ {
		start := i * n / numSlabs
		end := (i + 1) * n / numSlabs
		g.Go(func() error {
			return callSlab(f, start, end)
		})
	}
	return g.Wait()
}

func callSlab(f func(start, end int) error, start, end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("slab [%d, %d): %v", start, end, r)
		}
	}()
	return f(start, end)
}
