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

import "github.com/go-mgard/mgard/device"

// kernel is the linear processing kernel for one role and tile.
//
// All geometry is in (z, y, x) tile axis order; pa is the processed axis.
// sv1, sv2 and sw hold the element stride of each tile axis in V1, V2 and W.
type kernel[T Float] struct {
	pa     int
	halo   [3]int
	span   [3]int
	coarse [3]int

	// n and nc are the full and coarse extents of the processed axis;
	// coefficients j < coefLimit exist in V2.
	n, nc     int
	coefLimit int

	d      int
	packed []int32
	others []int

	ops        *Operands[T]
	sv1, sv2   [3]int
	sw         [3]int
	zeroCoarse bool
}

func newKernel[T Float](r Role, t Tile, m *Metadata, ops *Operands[T], coarse CoarsePolicy) *kernel[T] {
	full, c := m.tileExtents()
	n, nc := m.processedExtent(r)
	limit := nc - 1
	if n%2 == 0 {
		limit = nc - 2
	}
	return &kernel[T]{
		pa:         r.axis(),
		halo:       r.halo(t),
		span:       r.span(full, c),
		coarse:     c,
		n:          n,
		nc:         nc,
		coefLimit:  max(limit, 0),
		d:          m.d,
		packed:     m.packed,
		others:     m.others,
		ops:        ops,
		sv1:        [3]int{ops.Lddv11 * ops.Lddv12, ops.Lddv11, 1},
		sv2:        [3]int{ops.Lddv21 * ops.Lddv22, ops.Lddv21, 1},
		sw:         [3]int{ops.Lddw1 * ops.Lddw2, ops.Lddw1, 1},
		zeroCoarse: coarse == ZeroCoarse,
	}
}

func dot(a, b [3]int) int {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// lane resolves lane tid of b to its tile coordinate and global coordinate.
// ok is false for lanes outside the output.
func (k *kernel[T]) lane(b *device.Block[T], blk, dim [3]int, tid int) (lt, g [3]int, ok bool) {
	l := b.Lane(tid)
	lt = [3]int{l.Z, l.Y, l.X}
	for a := range 3 {
		g[a] = blk[a]*dim[a] + lt[a]
		if g[a] >= k.span[a] {
			return lt, g, false
		}
	}
	return lt, g, true
}

func (k *kernel[T]) coarseAt(base, j int, masked bool) T {
	if masked || j < 0 || j >= k.nc {
		return 0
	}
	return k.ops.V1[base+j*k.sv1[k.pa]]
}

func (k *kernel[T]) coefAt(base, j int) T {
	if j < 0 || j >= k.coefLimit {
		return 0
	}
	return k.ops.V2[base+j*k.sv2[k.pa]]
}

// Run executes one block in three phases separated by barriers.
func (k *kernel[T]) Run(b *device.Block[T]) {
	lanes := b.NumLanes()
	pa := k.pa

	// Phase 1: metadata into shared memory.
	meta := b.SharedInt[:len(k.packed)]
	for tid := range lanes {
		for i := tid; i < len(meta); i += lanes {
			meta[i] = k.packed[i]
		}
	}
	// barrier

	// Phase 2: decode the block, stage the halo tile and spacing tables.
	mv := metaView{d: k.d, p: meta}
	dim := [3]int{b.Dim.Z, b.Dim.Y, b.Dim.X}
	firstD := (k.span[axisX] + dim[axisX] - 1) / dim[axisX]
	blockF, offV, offW := decodeBlock(mv, k.others, b.Idx.X, firstD)
	blk := [3]int{b.Idx.Z, b.Idx.Y, blockF}

	bs := blk[pa] * dim[pa]
	actual := min(dim[pa], k.nc-bs)

	haloLen := k.halo[0] * k.halo[1] * k.halo[2]
	tabLen := k.halo[pa]
	v := b.Shared[:haloLen]
	distSM := b.Shared[haloLen : haloLen+tabLen]
	ratioSM := b.Shared[haloLen+tabLen : haloLen+2*tabLen]
	hs := [3]int{k.halo[axisX] * k.halo[axisY], k.halo[axisX], 1}
	ps := hs[pa]

	for tid := range lanes {
		lt, g, ok := k.lane(b, blk, dim, tid)
		if !ok {
			continue
		}
		lp, i := lt[pa], g[pa]
		lt[pa], g[pa] = 0, 0
		sb := dot(lt, hs)
		b1 := offV + dot(g, k.sv1)
		b2 := offV + dot(g, k.sv2)
		g[pa] = i
		masked := k.zeroCoarse &&
			g[axisZ] < k.coarse[axisZ] && g[axisY] < k.coarse[axisY] && g[axisX] < k.coarse[axisX]

		v[sb+(2*lp+2)*ps] = k.coarseAt(b1, i, masked)
		v[sb+(2*lp+1)*ps] = k.coefAt(b2, i-1)
		if lp == 0 {
			v[sb] = k.coarseAt(b1, i-1, masked)
		}
		if lp == actual-1 {
			v[sb+(2*actual+1)*ps] = k.coefAt(b2, i)
			v[sb+(2*actual+2)*ps] = k.coarseAt(b1, i+1, masked)
		}
	}

	// Slot s holds interval 2*bs-2+s; valid intervals are [0, n-1).
	dist, ratio := k.ops.Dist, k.ops.Ratio
	for tid := range lanes {
		for s := tid; s < 2*actual+2; s += lanes {
			if g := 2*bs - 2 + s; g >= 0 && g < k.n-1 {
				distSM[s] = dist[g]
				ratioSM[s] = ratio[g]
			}
		}
	}
	// barrier

	// Phase 3: one stencil per lane.
	w := k.ops.W
	for tid := range lanes {
		lt, g, ok := k.lane(b, blk, dim, tid)
		if !ok {
			continue
		}
		lp := lt[pa]
		lt[pa] = 0
		p := dot(lt, hs) + 2*lp*ps
		h := distSM[2*lp : 2*lp+4]
		r := ratioSM[2*lp : 2*lp+3]
		w[offW+dot(g, k.sw)] = MassTrans(
			v[p], v[p+ps], v[p+2*ps], v[p+3*ps], v[p+4*ps],
			h[0], h[1], h[2], h[3],
			r[0], r[1], r[2], 1-r[2])
	}
}
