// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package lpk

// Role selects the processed tile axis of a kernel.
type Role int

const (
	// RoleF processes the fastest axis (LPK-1).
	RoleF Role = iota
	// RoleC processes the middle axis (LPK-2).
	RoleC
	// RoleR processes the slowest axis (LPK-3).
	RoleR
)

// Roles lists the kernels in chain order.
var Roles = []Role{RoleF, RoleC, RoleR}

// Tile axes in (z, y, x) order.
const (
	axisZ = iota
	axisY
	axisX
)

// String returns the kernel name.
func (r Role) String() string {
	switch r {
	case RoleF:
		return "lpk1"
	case RoleC:
		return "lpk2"
	case RoleR:
		return "lpk3"
	default:
		return "unknown"
	}
}

// MinDims returns the smallest dimensionality the kernel runs on.
func (r Role) MinDims() int {
	return int(r) + 1
}

// axis returns the processed tile axis.
func (r Role) axis() int {
	switch r {
	case RoleC:
		return axisY
	case RoleR:
		return axisZ
	default:
		return axisX
	}
}

// span returns the number of output samples along each tile axis given the
// full and coarse tile extents.
func (r Role) span(full, coarse [3]int) [3]int {
	switch r {
	case RoleC:
		return [3]int{full[axisZ], coarse[axisY], coarse[axisX]}
	case RoleR:
		return [3]int{coarse[axisZ], coarse[axisY], coarse[axisX]}
	default:
		return [3]int{full[axisZ], full[axisY], coarse[axisX]}
	}
}

// halo returns the shared memory tile extents (z, y, x) for t: the processed
// axis grows to 2*T+3.
func (r Role) halo(t Tile) [3]int {
	h := t.dims()
	a := r.axis()
	h[a] = 2*h[a] + 3
	return h
}

// sharedLayout returns the element counts of the value tile and of each of
// the distance and ratio scratch arrays.
func (r Role) sharedLayout(t Tile) (values, table int) {
	h := r.halo(t)
	return h[0] * h[1] * h[2], h[r.axis()]
}

// SharedMemBytes returns the shared memory a block of role r needs for tile
// t on a d-dimensional field with elemSize-byte samples. Integer metadata
// uses 4 bytes per entry.
func SharedMemBytes(r Role, t Tile, d, elemSize int) int {
	values, table := r.sharedLayout(t)
	return (values+2*table)*elemSize + metaInts(d)*4
}

// metaInts is the integer shared memory of a d-dimensional launch: shape,
// coarse shape, both stride tables and the processed set.
func metaInts(d int) int {
	return 5 * d
}
