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

package grid

import "github.com/go-mgard/mgard/nd"

// source returns the fine index stored at position p of a reordered axis of
// n nodes.
func source(p, n int) int {
	nc := CoarseExtent(n)
	if p < nc {
		if Padded(n) && p == nc-1 {
			return n - 1
		}
		return 2 * p
	}
	return 2*(p-nc) + 1
}

// Reorder writes src to dst with axis reordered into [coarse | coefficient]
// order. Both slices are dense arrays of the given shape, axis 0 fastest.
func Reorder[T any](dst, src []T, shape []int, axis int) {
	permute(dst, src, shape, axis, false)
}

// Restore is the inverse of Reorder.
func Restore[T any](dst, src []T, shape []int, axis int) {
	permute(dst, src, shape, axis, true)
}

func permute[T any](dst, src []T, shape []int, axis int, inverse bool) {
	vol := nd.Volume(shape)
	if len(dst) < vol || len(src) < vol {
		panic("grid: slice too short for shape")
	}
	if axis < 0 || axis >= len(shape) {
		panic("grid: axis out of range")
	}
	n := shape[axis]
	stride := nd.Strides(shape)[axis]
	inner := stride
	outer := vol / (stride * n)

	for o := range outer {
		base := o * stride * n
		for p := range n {
			f := source(p, n)
			from, to := base+f*stride, base+p*stride
			if inverse {
				from, to = to, from
			}
			copy(dst[to:to+inner], src[from:from+inner])
		}
	}
}

// ReorderAll returns a copy of field reordered along every axis.
func ReorderAll[T any](field []T, shape []int) []T {
	cur := append([]T(nil), field[:nd.Volume(shape)]...)
	tmp := make([]T, len(cur))
	for axis := range shape {
		Reorder(tmp, cur, shape, axis)
		cur, tmp = tmp, cur
	}
	return cur
}

// RestoreAll is the inverse of ReorderAll.
func RestoreAll[T any](field []T, shape []int) []T {
	cur := append([]T(nil), field[:nd.Volume(shape)]...)
	tmp := make([]T, len(cur))
	for axis := len(shape) - 1; axis >= 0; axis-- {
		Restore(tmp, cur, shape, axis)
		cur, tmp = tmp, cur
	}
	return cur
}
