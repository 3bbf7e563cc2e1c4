// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import "fmt"

// Dim3 is a three-component extent or index. X varies fastest.
type Dim3 struct {
	X, Y, Z int
}

// Size returns X*Y*Z.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// String formats d as (x,y,z).
func (d Dim3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z)
}

// Unflatten converts a linear index in [0, d.Size()) to a Dim3 index.
func (d Dim3) Unflatten(i int) Dim3 {
	return Dim3{
		X: i % d.X,
		Y: (i / d.X) % d.Y,
		Z: i / (d.X * d.Y),
	}
}

// Flatten is the inverse of Unflatten.
func (d Dim3) Flatten(idx Dim3) int {
	return (idx.Z*d.Y+idx.Y)*d.X + idx.X
}

func (d Dim3) positive() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

func (d Dim3) within(limit Dim3) bool {
	return d.X <= limit.X && d.Y <= limit.Y && d.Z <= limit.Z
}
