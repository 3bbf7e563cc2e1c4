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

package lpk

import (
	"fmt"
	"slices"

	"github.com/go-mgard/mgard/grid"
	"github.com/go-mgard/mgard/nd"
)

// Step is one kernel of a chain with its prepared metadata. The input
// buffer has leading dimensions In and the output Out; both are dense.
type Step struct {
	Role Role
	Meta *Metadata
	In   []int
	Out  []int
}

// PlanChain prepares the LPK-1, LPK-2, LPK-3 sequence (as many as shape has
// dimensions, at most three) that reduces a reordered dense field of the
// given shape to its coarse grid along the DefaultAxes.
//
// Each step reduces one more axis: its input is the previous output and its
// output drops the coefficient part of its processed axis.
func PlanChain(shape []int) ([]Step, error) {
	d := len(shape)
	if d == 0 {
		return nil, fmt.Errorf("lpk: empty shape: %w", ErrInvalidArgument)
	}
	shapeC := grid.CoarseShape(shape)
	in := slices.Clone(shape)
	var steps []Step
	for i, r := range Roles[:min(d, len(Roles))] {
		out := slices.Clone(in)
		out[i] = shapeC[i]
		m, err := NewMetadata(shape, shapeC, in, out, nil, DefaultAxes)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{Role: r, Meta: m, In: in, Out: out})
		in = out
	}
	return steps, nil
}

// StepOperands returns the operands of step s reading field and writing w.
// V1 is field itself and V2 starts after the coarse part of the processed
// axis. Under DefaultAxes role r processes field axis int(r), and the x and
// y tile axes are field axes 0 and 1.
func StepOperands[T Float](s Step, field, w []T, sp grid.Spacing[T]) *Operands[T] {
	i := int(s.Role)
	off := s.Meta.shapeC[i] * nd.Strides(s.In)[i]
	ld1, ld2 := tileLds(s.In)
	wd1, wd2 := tileLds(s.Out)
	return &Operands[T]{
		Dist:   sp.Dist,
		Ratio:  sp.Ratio,
		V1:     field,
		Lddv11: ld1,
		Lddv12: ld2,
		V2:     field[off:],
		Lddv21: ld1,
		Lddv22: ld2,
		W:      w,
		Lddw1:  wd1,
		Lddw2:  wd2,
	}
}

func tileLds(ld []int) (int, int) {
	if len(ld) < 2 {
		return ld[0], 1
	}
	return ld[0], ld[1]
}

// Chain runs the steps of PlanChain(shape) on a reordered field and returns
// the output of the last step. spacing holds the tables of each axis.
// All kernels run on opts.Queue; Chain waits for them.
func (l *Launcher[T]) Chain(shape []int, field []T, spacing []grid.Spacing[T], opts Options) ([]T, error) {
	if len(shape) != l.d {
		return nil, fmt.Errorf("lpk: %dD shape on a %dD launcher: %w", len(shape), l.d, ErrInvalidArgument)
	}
	if len(spacing) < min(l.d, len(Roles)) {
		return nil, fmt.Errorf("lpk: %d spacing tables for %dD: %w", len(spacing), l.d, ErrInvalidArgument)
	}
	if len(field) < nd.Volume(shape) {
		return nil, fmt.Errorf("lpk: field of %d samples for shape %v: %w", len(field), shape, ErrInvalidArgument)
	}
	steps, err := PlanChain(shape)
	if err != nil {
		return nil, err
	}
	s, err := l.h.Queue(opts.Queue)
	if err != nil {
		return nil, err
	}

	in := field
	for _, st := range steps {
		w := make([]T, nd.Volume(st.Out))
		ops := StepOperands(st, in, w, spacing[int(st.Role)])
		if err := l.Launch(st.Role, st.Meta, ops, opts); err != nil {
			return nil, err
		}
		in = w
	}
	if err := l.h.Check(s.Synchronize()); err != nil {
		return nil, err
	}
	return in, nil
}
