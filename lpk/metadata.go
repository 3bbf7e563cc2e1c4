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

	"github.com/samber/lo"
)

// Axes names the field axes playing the R, C and F roles. Only F is used for
// 1D fields and only C and F for 2D fields.
type Axes struct {
	R, C, F int
}

// DefaultAxes maps F to axis 0, C to axis 1 and R to axis 2.
var DefaultAxes = Axes{R: 2, C: 1, F: 0}

// Metadata is the launch description shared by every kernel of a sweep.
//
// It is built once with NewMetadata and keeps a packed int32 copy of the
// tables that kernels copy into block shared memory, so repeated launches do
// not rebuild it.
type Metadata struct {
	d         int
	shape     []int
	shapeC    []int
	ldvs      []int
	ldws      []int
	processed []int
	axes      Axes
	others    []int
	packed    []int32
}

// NewMetadata validates and packs launch metadata for a len(shape)
// dimensional field.
//
// shape and shapeC are the full and coarse extents, ldvs and ldws the
// leading dimensions of the inputs and of the output, processed the axes
// already reduced in the current sweep.
func NewMetadata(shape, shapeC, ldvs, ldws, processed []int, axes Axes) (*Metadata, error) {
	d := len(shape)
	if d == 0 {
		return nil, fmt.Errorf("lpk: empty shape: %w", ErrInvalidArgument)
	}
	if len(shapeC) != d || len(ldvs) != d || len(ldws) != d {
		return nil, fmt.Errorf("lpk: shape tables of lengths %d/%d/%d/%d: %w",
			d, len(shapeC), len(ldvs), len(ldws), ErrInvalidArgument)
	}
	for i := range d {
		if shapeC[i] < 1 || shapeC[i] > shape[i] {
			return nil, fmt.Errorf("lpk: axis %d coarse extent %d outside [1,%d]: %w", i, shapeC[i], shape[i], ErrInvalidArgument)
		}
		if ldvs[i] < 1 || ldws[i] < 1 {
			return nil, fmt.Errorf("lpk: axis %d leading dimension < 1: %w", i, ErrInvalidArgument)
		}
	}
	if len(processed) > d || len(lo.Uniq(processed)) != len(processed) {
		return nil, fmt.Errorf("lpk: processed set %v is not a set of axes: %w", processed, ErrInvalidArgument)
	}
	for _, p := range processed {
		if p < 0 || p >= d {
			return nil, fmt.Errorf("lpk: processed axis %d out of range: %w", p, ErrInvalidArgument)
		}
	}
	tileAxes := usedAxes(axes, d)
	for _, a := range tileAxes {
		if a < 0 || a >= d {
			return nil, fmt.Errorf("lpk: axes %+v out of range for %dD: %w", axes, d, ErrInvalidArgument)
		}
	}
	if len(lo.Uniq(tileAxes)) != len(tileAxes) {
		return nil, fmt.Errorf("lpk: axes %+v not distinct: %w", axes, ErrInvalidArgument)
	}

	m := &Metadata{
		d:         d,
		shape:     slices.Clone(shape),
		shapeC:    slices.Clone(shapeC),
		ldvs:      slices.Clone(ldvs),
		ldws:      slices.Clone(ldws),
		processed: slices.Clone(processed),
		axes:      axes,
	}
	for i := range d {
		if !lo.Contains(tileAxes, i) {
			m.others = append(m.others, i)
		}
	}
	m.packed = make([]int32, 0, 4*d+len(processed))
	for _, tab := range [][]int{m.shape, m.shapeC, m.ldvs, m.ldws, m.processed} {
		m.packed = append(m.packed, lo.Map(tab, func(v int, _ int) int32 { return int32(v) })...)
	}
	return m, nil
}

func usedAxes(a Axes, d int) []int {
	switch {
	case d >= 3:
		return []int{a.R, a.C, a.F}
	case d == 2:
		return []int{a.C, a.F}
	default:
		return []int{a.F}
	}
}

// D returns the dimensionality.
func (m *Metadata) D() int { return m.d }

// Shape returns the full extents.
func (m *Metadata) Shape() []int { return m.shape }

// ShapeC returns the coarse extents.
func (m *Metadata) ShapeC() []int { return m.shapeC }

// Axes returns the axis roles.
func (m *Metadata) Axes() Axes { return m.axes }

// activeExtent returns the extent of a non-tile axis.
func (m *Metadata) activeExtent(d int) int {
	if lo.Contains(m.processed, d) {
		return m.shapeC[d]
	}
	return m.shape[d]
}

// otherBlocks returns the number of blocks folded into grid X per tile
// block row, the product of the active extents of the non-tile axes.
func (m *Metadata) otherBlocks() int {
	return lo.Reduce(m.others, func(acc, d int, _ int) int {
		return acc * m.activeExtent(d)
	}, 1)
}

// tileExtents returns the full and coarse extents of the (z, y, x) tile
// axes. Axes a low-dimensional field lacks have extent 1.
func (m *Metadata) tileExtents() (full, coarse [3]int) {
	full, coarse = [3]int{1, 1, 1}, [3]int{1, 1, 1}
	full[axisX], coarse[axisX] = m.shape[m.axes.F], m.shapeC[m.axes.F]
	if m.d >= 2 {
		full[axisY], coarse[axisY] = m.shape[m.axes.C], m.shapeC[m.axes.C]
	}
	if m.d >= 3 {
		full[axisZ], coarse[axisZ] = m.shape[m.axes.R], m.shapeC[m.axes.R]
	}
	return full, coarse
}

// Span returns the number of output samples of role r along the (z, y, x)
// tile axes.
func (m *Metadata) Span(r Role) [3]int {
	full, coarse := m.tileExtents()
	return r.span(full, coarse)
}

// processedExtent returns the full and coarse extents of r's processed axis.
func (m *Metadata) processedExtent(r Role) (n, nc int) {
	full, coarse := m.tileExtents()
	return full[r.axis()], coarse[r.axis()]
}

// metaView reads a packed metadata table, either the host copy or the copy
// a block holds in shared memory.
type metaView struct {
	d int
	p []int32
}

func (v metaView) shape(i int) int  { return int(v.p[i]) }
func (v metaView) shapeC(i int) int { return int(v.p[v.d+i]) }
func (v metaView) ldv(i int) int    { return int(v.p[2*v.d+i]) }
func (v metaView) ldw(i int) int    { return int(v.p[3*v.d+i]) }

func (v metaView) active(i int) int {
	for _, p := range v.p[4*v.d:] {
		if int(p) == i {
			return v.shapeC(i)
		}
	}
	return v.shape(i)
}

// stride returns the element stride of axis i in the input and output.
func (v metaView) stride(i int) (sv, sw int) {
	sv, sw = 1, 1
	for j := range i {
		sv *= v.ldv(j)
		sw *= v.ldw(j)
	}
	return sv, sw
}

// decodeBlock splits the grid X index of a block into its block index along
// the F tile axis and the offsets of its non-tile coordinate in the input
// and output buffers. firstD is the number of blocks along F.
func decodeBlock(v metaView, others []int, x, firstD int) (blockF, offV, offW int) {
	blockF = x % firstD
	rest := x / firstD
	for _, d := range others {
		t := v.active(d)
		i := rest % t
		rest /= t
		sv, sw := v.stride(d)
		offV += i * sv
		offW += i * sw
	}
	return blockF, offV, offW
}
