package sdfgrid

import (
	"sync/atomic"
)

// tasksPerWorker bounds the number of pending forked tasks per worker.
const tasksPerWorker = 1000

type forkTask[T any] struct {
	claimed atomic.Bool
	fn      func() T
	result  chan T
}

func newForkTask[T any](fn func() T) *forkTask[T] {
	return &forkTask[T]{fn: fn, result: make(chan T, 1)}
}

// claim marks the task as taken, reporting false if another goroutine
// already took it.
func (t *forkTask[T]) claim() bool {
	return !t.claimed.Swap(true)
}

// A forkQueue evaluates a recursive divide-and-conquer computation on a
// fixed set of worker goroutines.
//
// The root computation is started with Run. Inside it, Fork and ForkRange
// may hand subproblems to idle workers. A nil *forkQueue evaluates
// everything on the calling goroutine.
type forkQueue[T any] struct {
	pending chan *forkTask[T]
}

func newForkQueue[T any](threads int) *forkQueue[T] {
	threads = resolveThreads(threads)
	f := &forkQueue[T]{pending: make(chan *forkTask[T], threads*tasksPerWorker)}
	for i := 0; i < threads; i++ {
		go f.worker()
	}
	return f
}

// Run evaluates the root computation and stops the workers once it returns.
func (f *forkQueue[T]) Run(fn func() T) T {
	if f == nil {
		return fn()
	}
	defer close(f.pending)
	task := newForkTask(fn)
	f.pending <- task
	return <-task.result
}

// Fork evaluates fn1 on the current goroutine while offering fn2 to the
// workers. If no worker has claimed fn2 by the time fn1 finishes, it runs
// here as well.
func (f *forkQueue[T]) Fork(fn1, fn2 func() T) (T, T) {
	if f == nil {
		return fn1(), fn2()
	}
	task := newForkTask(fn2)
	select {
	case f.pending <- task:
	default:
		task.claim()
		task.result <- fn2()
	}
	r1 := fn1()
	if task.claim() {
		return r1, fn2()
	}
	return r1, <-task.result
}

// ForkRange evaluates fn for every index in [start, end) by bisecting the
// range with Fork, combining results with sum.
//
// The range must not be empty.
func (f *forkQueue[T]) ForkRange(start, end int, fn func(i int) T, sum func(a, b T) T) T {
	if end-start == 1 {
		return fn(start)
	}
	mid := (start + end) / 2
	r1, r2 := f.Fork(
		func() T { return f.ForkRange(start, mid, fn, sum) },
		func() T { return f.ForkRange(mid, end, fn, sum) },
	)
	return sum(r1, r2)
}

func (f *forkQueue[T]) worker() {
	for task := range f.pending {
		if task.claim() {
			task.result <- task.fn()
		}
	}
}
