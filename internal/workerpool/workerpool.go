// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the persistent worker pool that executes
// thread blocks for the emulated device.
//
// A Pool is created once per device handle and reused by every launch. Each
// callback receives the id of the worker running it, in [0, NumWorkers()),
// so callers can keep per-worker scratch (block shared memory) without
// locking.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	scratch := make([][]float32, pool.NumWorkers())
//	pool.ParallelForWorker(numBlocks, func(worker, block int) {
//	    runBlock(block, scratch[worker])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func(worker int)
	barrier *sync.WaitGroup
}

// New creates a pool with numWorkers workers. If numWorkers <= 0, uses
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for id := range numWorkers {
		go p.worker(id)
	}
	return p
}

func (p *Pool) worker(id int) {
	for item := range p.workC {
		item.fn(id)
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending work completes. Calling Close multiple
// times is safe; a closed pool runs work sequentially as worker 0.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// ParallelForWorker calls fn(worker, i) for each i in [0, n), claiming
// indices one at a time. Blocks until all work completes.
func (p *Pool) ParallelForWorker(n int, fn func(worker, i int)) {
	p.ParallelForWorkerBatched(n, 1, func(worker, start, end int) {
		for i := start; i < end; i++ {
			fn(worker, i)
		}
	})
}

// ParallelForWorkerBatched claims batchSize indices per atomic operation and
// calls fn(worker, start, end) for each claimed range. Blocks until all
// work completes.
func (p *Pool) ParallelForWorkerBatched(n, batchSize int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	numBatches := (n + batchSize - 1) / batchSize
	workers := min(p.numWorkers, numBatches)
	if workers == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.workC <- workItem{
			fn: func(worker int) {
				for {
					start := int(next.Add(1)-1) * batchSize
					if start >= n {
						return
					}
					fn(worker, start, min(start+batchSize, n))
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}
