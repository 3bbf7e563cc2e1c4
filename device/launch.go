// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Config describes one kernel launch.
type Config struct {
	// Name identifies the kernel in errors and logs.
	Name  string
	Grid  Dim3
	Block Dim3
	// SharedValues is the number of T elements of shared memory per block.
	SharedValues int
	// SharedInts is the number of int32 elements of shared memory per block.
	SharedInts int
}

// SharedBytes returns the shared memory footprint of a block of cfg.
func SharedBytes[T any](cfg Config) int {
	var zero T
	return cfg.SharedValues*int(unsafe.Sizeof(zero)) + cfg.SharedInts*4
}

// Block is the view a kernel has of the block it is running.
type Block[T any] struct {
	// Idx is the block index within the grid.
	Idx Dim3
	// Dim is the block shape.
	Dim Dim3
	// Grid is the grid shape.
	Grid Dim3
	// Shared and SharedInt are block-private and zeroed at block start.
	Shared    []T
	SharedInt []int32
}

// NumLanes returns the number of lanes in the block.
func (b *Block[T]) NumLanes() int {
	return b.Dim.Size()
}

// Lane returns the thread index of lane tid. Lanes are numbered with X
// fastest.
func (b *Block[T]) Lane(tid int) Dim3 {
	return b.Dim.Unflatten(tid)
}

// Kernel is a device function. Run executes every lane of one block.
type Kernel[T any] interface {
	Run(b *Block[T])
}

// KernelFunc adapts a function to Kernel.
type KernelFunc[T any] func(b *Block[T])

// Run calls f(b).
func (f KernelFunc[T]) Run(b *Block[T]) { f(b) }

// slot holds one worker's shared memory. The pad keeps neighbouring
// workers' slice headers on different cache lines.
type slot[T any] struct {
	values []T
	ints   []int32
	_      cpu.CacheLinePad
}

// Validate checks cfg against the device limits for element type T.
func Validate[T any](h *Handle, cfg Config) error {
	p := h.props
	switch {
	case !cfg.Block.positive() || !cfg.Block.within(p.MaxBlockDim):
		return fmt.Errorf("block %v outside (1,1,1)..%v: %w", cfg.Block, p.MaxBlockDim, ErrInvalidConfiguration)
	case cfg.Block.Size() > p.MaxThreadsPerBlock:
		return fmt.Errorf("%d threads per block exceeds %d: %w", cfg.Block.Size(), p.MaxThreadsPerBlock, ErrInvalidConfiguration)
	case !cfg.Grid.positive() || !cfg.Grid.within(p.MaxGridDim):
		return fmt.Errorf("grid %v outside (1,1,1)..%v: %w", cfg.Grid, p.MaxGridDim, ErrInvalidConfiguration)
	case cfg.SharedValues < 0 || cfg.SharedInts < 0:
		return fmt.Errorf("negative shared memory request: %w", ErrInvalidConfiguration)
	}
	if n := SharedBytes[T](cfg); n > p.SharedMemPerBlock {
		return fmt.Errorf("%d bytes of shared memory exceeds %d: %w", n, p.SharedMemPerBlock, ErrOutOfResources)
	}
	return nil
}

// Launch validates cfg and queues k on stream queue of h.
//
// Configuration errors are returned immediately as *LaunchError and nothing
// is queued. Execution errors are reported by the stream's Synchronize, or by
// Launch itself when the handle is in debug mode.
func Launch[T any](h *Handle, queue int, cfg Config, k Kernel[T]) error {
	s, err := h.Queue(queue)
	if err != nil {
		return err
	}
	wrap := func(err error) *LaunchError {
		return &LaunchError{
			Kernel:      cfg.Name,
			Queue:       queue,
			Grid:        cfg.Grid,
			Block:       cfg.Block,
			SharedBytes: SharedBytes[T](cfg),
			Err:         err,
		}
	}
	if k == nil {
		return wrap(fmt.Errorf("nil kernel: %w", ErrInvalidConfiguration))
	}
	if err := Validate[T](h, cfg); err != nil {
		return wrap(err)
	}

	task := func() error {
		if err := run(h, cfg, k); err != nil {
			return wrap(err)
		}
		return nil
	}
	if err := s.Submit(task); err != nil {
		return wrap(err)
	}
	if h.debug {
		return s.Synchronize()
	}
	return nil
}

func run[T any](h *Handle, cfg Config, k Kernel[T]) error {
	numBlocks := cfg.Grid.Size()
	slots := make([]slot[T], h.pool.NumWorkers())
	batch := max(1, numBlocks/(8*h.pool.NumWorkers()))

	var (
		once    sync.Once
		failure error
	)
	h.pool.ParallelForWorkerBatched(numBlocks, batch, func(worker, start, end int) {
		sl := &slots[worker]
		if sl.values == nil && cfg.SharedValues > 0 {
			sl.values = make([]T, cfg.SharedValues)
		}
		if sl.ints == nil && cfg.SharedInts > 0 {
			sl.ints = make([]int32, cfg.SharedInts)
		}
		b := Block[T]{
			Dim:       cfg.Block,
			Grid:      cfg.Grid,
			Shared:    sl.values,
			SharedInt: sl.ints,
		}
		defer func() {
			if r := recover(); r != nil {
				once.Do(func() {
					failure = fmt.Errorf("block %v: %v: %w", b.Idx, r, ErrLaunchFailure)
				})
			}
		}()
		for i := start; i < end; i++ {
			b.Idx = cfg.Grid.Unflatten(i)
			clear(b.Shared)
			clear(b.SharedInt)
			k.Run(&b)
		}
	})
	return failure
}
