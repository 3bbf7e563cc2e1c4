// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package lpk

import "fmt"

// CoarsePolicy controls the coarse-node samples a kernel stages.
// ZeroCoarse matches the reference MGARD LPK-1 kernel, which always zeroes
// coarse samples inside the coarse sub-grid. KeepCoarse is the default.
type CoarsePolicy int

const (
	// KeepCoarse stages V1 as given.
	KeepCoarse CoarsePolicy = iota
	// ZeroCoarse stages zeros instead of V1 for lanes inside the coarse
	// sub-grid on every tile axis, so only coefficients contribute there.
	ZeroCoarse
)

// Operands are the buffers of one kernel launch.
//
// The three buffers use the three-axis addressing of nd.Index3 for the tile
// axes: an element at tile coordinate (z, y, x) of V1 lives at
// z*Lddv11*Lddv12 + y*Lddv11 + x from the non-tile origin. The processed
// coordinate of V1 is a coarse index and that of V2 a coefficient index.
type Operands[T Float] struct {
	// Dist and Ratio are the spacing tables of the processed axis.
	Dist, Ratio []T

	V1             []T
	Lddv11, Lddv12 int
	V2             []T
	Lddv21, Lddv22 int
	W              []T
	Lddw1, Lddw2   int
}

func (o *Operands[T]) validate(m *Metadata, r Role) error {
	switch {
	case o == nil:
		return fmt.Errorf("lpk: nil operands: %w", ErrInvalidArgument)
	case o.V1 == nil || o.V2 == nil || o.W == nil:
		return fmt.Errorf("lpk: nil buffer: %w", ErrInvalidArgument)
	case o.Lddv11 < 1 || o.Lddv12 < 1 || o.Lddv21 < 1 || o.Lddv22 < 1 || o.Lddw1 < 1 || o.Lddw2 < 1:
		return fmt.Errorf("lpk: leading dimension < 1: %w", ErrInvalidArgument)
	}
	n, _ := m.processedExtent(r)
	if len(o.Dist) < n-1 || len(o.Ratio) < n-1 {
		return fmt.Errorf("lpk: %s spacing tables of length %d/%d for %d nodes: %w",
			r, len(o.Dist), len(o.Ratio), n, ErrInvalidArgument)
	}
	return nil
}

// Args bundles metadata and operands for the single-call entry points.
type Args[T Float] struct {
	Shape, ShapeC []int
	Ldvs, Ldws    []int
	Processed     []int
	Axes          Axes
	Operands[T]
}

// Options selects the stream, tile configuration and coarse policy.
type Options struct {
	Queue  int
	Tuning Tuning
	Coarse CoarsePolicy
}

// DefaultOptions returns queue 0 with the tuning from the environment.
func DefaultOptions() Options {
	return Options{Tuning: DefaultTuning()}
}
