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

package nd

// View is a strided N-dimensional window onto a flat slice.
//
// The logical shape may be smaller than the leading dimensions, for example
// the coarse part of a reordered field. Offsets are computed with Index.
type View[T any] struct {
	data  []T
	shape []int
	ld    []int
}

// NewView wraps data with the given logical shape and leading dimensions.
// If ld is nil the view is dense (ld == shape).
func NewView[T any](data []T, shape, ld []int) *View[T] {
	if ld == nil {
		ld = shape
	}
	if len(ld) != len(shape) {
		panic("nd: shape and ld length mismatch")
	}
	for i := range shape {
		if shape[i] > ld[i] {
			panic("nd: shape exceeds leading dimension")
		}
	}
	if len(shape) > 0 && Index(ld, lastIndex(shape)) >= len(data) {
		panic("nd: data slice too short")
	}
	return &View[T]{
		data:  data,
		shape: append([]int(nil), shape...),
		ld:    append([]int(nil), ld...),
	}
}

// Dense allocates a zeroed dense view of the given shape.
func Dense[T any](shape ...int) *View[T] {
	return NewView(make([]T, Volume(shape)), shape, nil)
}

func lastIndex(shape []int) []int {
	idx := make([]int, len(shape))
	for i, n := range shape {
		idx[i] = max(n-1, 0)
	}
	return idx
}

// Data returns the underlying slice.
func (v *View[T]) Data() []T { return v.data }

// Shape returns the logical extent of every axis.
func (v *View[T]) Shape() []int { return v.shape }

// Lds returns the leading dimension of every axis.
func (v *View[T]) Lds() []int { return v.ld }

// Len returns the number of logical elements.
func (v *View[T]) Len() int { return Volume(v.shape) }

// Offset returns the flattened offset of idx.
func (v *View[T]) Offset(idx ...int) int {
	checkBounds(v.shape, idx)
	return Index(v.ld, idx)
}

// At returns the element at idx.
func (v *View[T]) At(idx ...int) T {
	return v.data[v.Offset(idx...)]
}

// Set stores x at idx.
func (v *View[T]) Set(x T, idx ...int) {
	v.data[v.Offset(idx...)] = x
}

// Each calls fn for every logical index in axis-0-fastest order. The idx
// slice is reused between calls.
func (v *View[T]) Each(fn func(idx []int)) {
	n := v.Len()
	idx := make([]int, len(v.shape))
	for i := range n {
		Decode(i, v.shape, idx)
		fn(idx)
	}
}
