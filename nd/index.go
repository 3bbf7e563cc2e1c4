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

// Package nd provides addressing helpers for N-dimensional strided arrays.
//
// Arrays are flat slices described by a leading-dimension table ld, where
// ld[i] is the allocated extent of axis i. Axis 0 varies fastest, so the
// stride of axis i is the product of ld[0..i). Leading dimensions may be
// larger than the logical shape, which lets one buffer hold padded or
// partially reduced fields.
//
// Index and Index3 are unchecked: callers guarantee indices are inside the
// declared extents. View layers optional bounds checks on top of them, enabled
// with the mgard_debug build tag.
package nd

// Index returns the flattened offset of idx in an array with leading
// dimensions ld. Only the first len(idx) axes are used.
func Index(ld, idx []int) int {
	off := 0
	stride := 1
	for i, v := range idx {
		off += v * stride
		stride *= ld[i]
	}
	return off
}

// Index3 is the unrolled three-axis form of Index: x is the fastest axis,
// ld1 its leading dimension, and ld2 the leading dimension of y.
func Index3(ld1, ld2, z, y, x int) int {
	return z*ld1*ld2 + y*ld1 + x
}

// Strides returns the element stride of every axis described by ld.
func Strides(ld []int) []int {
	s := make([]int, len(ld))
	stride := 1
	for i, v := range ld {
		s[i] = stride
		stride *= v
	}
	return s
}

// Decode splits linear into per-axis indices by iterated modulo and divide
// against extents, writing them to idx, and returns the remaining quotient.
// A zero or negative extent is treated as 1.
func Decode(linear int, extents []int, idx []int) int {
	for i, n := range extents {
		if n <= 0 {
			n = 1
		}
		idx[i] = linear % n
		linear /= n
	}
	return linear
}

// Volume returns the product of extents.
func Volume(extents []int) int {
	v := 1
	for _, n := range extents {
		v *= n
	}
	return v
}
