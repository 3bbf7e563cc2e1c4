// Copyright 2025 go-mgard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package grid prepares the host-side inputs of the linear processing
// kernels: coarse extents, per-axis spacing tables and the coarse/coefficient
// reordering of a field.
//
// # Coarsening
//
// One restriction step keeps every even node of an axis. For an odd extent n
// that gives (n+1)/2 coarse nodes. For an even extent the last node is kept
// as well, giving n/2+1 coarse nodes; the axis is then called padded.
//
// # Spacing tables
//
// Dist[k] is the length of fine interval k. Ratio[k] is
// Dist[k]/(Dist[k]+Dist[k+1]), the linear interpolation weight of a fine
// node between its coarse neighbours. A padded axis gets one extra
// zero-length interval at the end so that coarse node i always sits at
// virtual fine position 2i.
//
// # Layout
//
// Reorder moves the coarse nodes of an axis to the front and the
// coefficient nodes behind them, the [low | high] layout the kernels read.
package grid

import "gonum.org/v1/gonum/floats"

// Float is the set of sample types the kernels support.
type Float interface {
	~float32 | ~float64
}

// CoarseExtent returns the number of nodes left on an axis of n nodes after
// one restriction step.
func CoarseExtent(n int) int {
	switch {
	case n <= 1:
		return n
	case n%2 == 1:
		return (n + 1) / 2
	default:
		return n/2 + 1
	}
}

// Padded reports whether an axis of n nodes carries the extra coarse node.
func Padded(n int) bool {
	return n%2 == 0
}

// CoarseShape applies CoarseExtent to every axis.
func CoarseShape(shape []int) []int {
	c := make([]int, len(shape))
	for i, n := range shape {
		c[i] = CoarseExtent(n)
	}
	return c
}

// Uniform returns n equally spaced coordinates 0, 1, ..., n-1.
func Uniform(n int) []float64 {
	x := make([]float64, n)
	if n >= 2 {
		floats.Span(x, 0, float64(n-1))
	}
	return x
}

// Spacing holds the distance and ratio tables of one axis.
type Spacing[T Float] struct {
	Dist  []T
	Ratio []T
}

// DistRatio builds the spacing tables of an axis from its node coordinates.
// Coordinates must be increasing.
func DistRatio[T Float](coords []float64) Spacing[T] {
	n := len(coords)
	if n < 2 {
		return Spacing[T]{}
	}
	d := make([]float64, n-1, n)
	floats.SubTo(d, coords[1:], coords[:n-1])
	if Padded(n) {
		d = append(d, 0)
	}

	s := Spacing[T]{
		Dist:  make([]T, len(d)),
		Ratio: make([]T, len(d)),
	}
	for k := range d {
		s.Dist[k] = T(d[k])
		if k+1 < len(d) && d[k]+d[k+1] != 0 {
			s.Ratio[k] = T(d[k] / (d[k] + d[k+1]))
		}
	}
	return s
}

// UniformSpacing is DistRatio(Uniform(n)).
func UniformSpacing[T Float](n int) Spacing[T] {
	return DistRatio[T](Uniform(n))
}
