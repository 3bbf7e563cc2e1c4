// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration reports a grid or block shape the device
	// cannot run.
	ErrInvalidConfiguration = errors.New("invalid configuration argument")

	// ErrOutOfResources reports a launch requesting more shared memory than
	// the device provides per block.
	ErrOutOfResources = errors.New("too many resources requested for launch")

	// ErrLaunchFailure reports a block that panicked during execution.
	ErrLaunchFailure = errors.New("unspecified launch failure")

	// ErrInvalidQueue reports a queue index outside the handle's streams.
	ErrInvalidQueue = errors.New("invalid queue index")

	// ErrClosed reports use of a closed handle or stream.
	ErrClosed = errors.New("device closed")
)

// LaunchError describes a failed kernel launch. It wraps one of the
// package's sentinel errors.
type LaunchError struct {
	Kernel      string
	Queue       int
	Grid        Dim3
	Block       Dim3
	SharedBytes int
	Err         error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("device: launch %s grid=%v block=%v shared=%dB queue=%d: %v",
		e.Kernel, e.Grid, e.Block, e.SharedBytes, e.Queue, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
