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

// Package api is the compress/decompress entry point. It checks the call,
// drops unit axes and hands 2D and 3D fields to an Engine, which owns the
// multigrid hierarchy and the encoding.
//
// Fields are row major in (nrow, ncol, nfib): fibers are contiguous. Shapes
// passed to an Engine list the active extents fastest first, the order the
// lpk package uses.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-mgard/mgard/lpk"
)

// MinTolerance is the smallest tolerance Compress accepts.
const MinTolerance = 1e-8

// ErrNotImplemented is returned for fields with fewer than two active axes.
var ErrNotImplemented = errors.New("mgard: not implemented")

// QoI is a quantity of interest over a field of extents (nrow, ncol, nfib).
type QoI[T lpk.Float] func(nrow, ncol, nfib int, v []T) T

// Params are the refactoring parameters after option processing.
type Params struct {
	// Tol is the absolute error tolerance.
	Tol float64
	// S selects the norm; 0 with no QoI is the L-infinity bound.
	S float64
	// Coords holds the node coordinates of each active axis, fastest
	// first. Nil means unit spacing.
	Coords [][]float64
}

// Engine refactors fields into byte streams and back.
type Engine[T lpk.Float] interface {
	Refactor(shape []int, data []T, p Params) ([]byte, error)
	Recompose(shape []int, buf []byte, p Params) ([]T, error)
	// QoINorm returns the norm of the representer of qoi in the s-norm.
	QoINorm(shape []int, qoi QoI[T], s float64) float64
}

// Option configures Compress and Decompress.
type Option[T lpk.Float] func(*settings[T])

type settings[T lpk.Float] struct {
	s      float64
	qoi    QoI[T]
	qoiS   float64
	norm   float64
	scaled bool
	coords *coords
	log    *slog.Logger
}

// coords are the per-axis node coordinates of a tensor grid, named after
// the axes they belong to: x spans ncol, y spans nrow and z spans nfib.
type coords struct {
	x, y, z []float64
}

// active returns the coordinates of the axes longer than one, fastest
// first, in the order of activeShape. It panics if an array does not match
// its extent; unit axes accept an empty or single-node array.
func (c *coords) active(nrow, ncol, nfib int) [][]float64 {
	var out [][]float64
	for _, a := range []struct {
		name string
		n    int
		x    []float64
	}{{"z", nfib, c.z}, {"x", ncol, c.x}, {"y", nrow, c.y}} {
		if a.n == 1 {
			if len(a.x) > 1 {
				panic(fmt.Sprintf("mgard: %d %s coordinates for a unit axis", len(a.x), a.name))
			}
			continue
		}
		if len(a.x) != a.n {
			panic(fmt.Sprintf("mgard: %d %s coordinates for extent %d", len(a.x), a.name, a.n))
		}
		out = append(out, a.x)
	}
	return out
}

// WithS bounds the error in the s-norm.
func WithS[T lpk.Float](s float64) Option[T] {
	return func(o *settings[T]) { o.s = s }
}

// WithQoI scales the tolerance by the norm of qoi and refactors in the dual
// norm -s.
func WithQoI[T lpk.Float](qoi QoI[T], s float64) Option[T] {
	return func(o *settings[T]) {
		o.qoi, o.qoiS = qoi, s
		o.norm, o.scaled = 0, false
	}
}

// WithNormOfQoI scales the tolerance by a QoI norm computed earlier.
func WithNormOfQoI[T lpk.Float](norm, s float64) Option[T] {
	return func(o *settings[T]) {
		o.norm, o.s, o.scaled = norm, s, true
		o.qoi = nil
	}
}

// WithCoords refactors on the tensor grid with node coordinates x along
// ncol, y along nrow and z along nfib instead of unit spacing.
func WithCoords[T lpk.Float](x, y, z []float64) Option[T] {
	return func(o *settings[T]) { o.coords = &coords{x: x, y: y, z: z} }
}

// WithLogger sets the logger for dispatch messages.
func WithLogger[T lpk.Float](log *slog.Logger) Option[T] {
	return func(o *settings[T]) { o.log = log }
}

func newSettings[T lpk.Float](opts []Option[T]) *settings[T] {
	o := &settings[T]{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// activeShape drops unit axes and returns the rest fastest first. It panics
// on extents the hierarchy cannot coarsen.
func activeShape(nrow, ncol, nfib int) []int {
	var shape []int
	for _, n := range []int{nfib, ncol, nrow} {
		switch {
		case n < 1:
			panic(fmt.Sprintf("mgard: extent %d < 1", n))
		case n == 1:
		case n <= 3:
			panic(fmt.Sprintf("mgard: extent %d of an active axis must exceed 3", n))
		default:
			shape = append(shape, n)
		}
	}
	return shape
}

func (o *settings[T]) params(nrow, ncol, nfib int, tol float64) Params {
	p := Params{Tol: tol, S: o.s}
	if o.coords != nil {
		p.Coords = o.coords.active(nrow, ncol, nfib)
	}
	return p
}

func dispatch(log *slog.Logger, op string, shape []int) error {
	if len(shape) >= 2 {
		return nil
	}
	log.Warn("mgard: only 2D and 3D fields are supported", "op", op, "shape", shape)
	return fmt.Errorf("mgard: %s of a %dD field: %w", op, len(shape), ErrNotImplemented)
}

// Compress refactors data of extents (nrow, ncol, nfib) within tol.
//
// Compress panics if tol is below MinTolerance, if data is shorter than the
// field, if an axis has extent 2 or 3 or if WithCoords arrays do not match
// the extents. Fields with fewer than two axes longer than one return
// ErrNotImplemented.
func Compress[T lpk.Float](e Engine[T], data []T, nrow, ncol, nfib int, tol float64, opts ...Option[T]) ([]byte, error) {
	if !(tol >= MinTolerance) {
		panic(fmt.Sprintf("mgard: tolerance %g below %g", tol, MinTolerance))
	}
	shape := activeShape(nrow, ncol, nfib)
	if len(data) < nrow*ncol*nfib {
		panic("mgard: data slice too short")
	}
	o := newSettings(opts)
	p := o.params(nrow, ncol, nfib, tol)
	if err := dispatch(o.log, "compress", shape); err != nil {
		return nil, err
	}

	switch {
	case o.qoi != nil:
		norm := e.QoINorm(shape, o.qoi, o.qoiS)
		p.Tol *= norm
		p.S = -o.qoiS
	case o.scaled:
		p.Tol *= o.norm
	}
	o.log.Debug("mgard compress", "shape", shape, "tol", p.Tol, "s", p.S)
	return e.Refactor(shape, data[:nrow*ncol*nfib], p)
}

// Decompress rebuilds a field of extents (nrow, ncol, nfib) from buf. The
// result is a new slice.
func Decompress[T lpk.Float](e Engine[T], buf []byte, nrow, ncol, nfib int, opts ...Option[T]) ([]T, error) {
	shape := activeShape(nrow, ncol, nfib)
	o := newSettings(opts)
	p := o.params(nrow, ncol, nfib, 0)
	if err := dispatch(o.log, "decompress", shape); err != nil {
		return nil, err
	}
	v, err := e.Recompose(shape, buf, p)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v), nil
}

// QoINorm returns the norm of qoi over a field of extents (nrow, ncol,
// nfib), the factor WithNormOfQoI expects. It panics on the extents Compress
// rejects.
func QoINorm[T lpk.Float](e Engine[T], nrow, ncol, nfib int, qoi QoI[T], s float64) float64 {
	if qoi == nil {
		panic("mgard: nil QoI")
	}
	return e.QoINorm(activeShape(nrow, ncol, nfib), qoi, s)
}
