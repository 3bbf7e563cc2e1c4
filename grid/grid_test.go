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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"
)

func TestCoarseExtent(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 7: 4, 8: 5, 9: 5, 17: 9}
	for n, want := range cases {
		if got := CoarseExtent(n); got != want {
			t.Errorf("CoarseExtent(%d) = %d, want %d", n, got, want)
		}
	}
	if diff := cmp.Diff([]int{3, 4, 1}, CoarseShape([]int{5, 6, 1})); diff != "" {
		t.Errorf("CoarseShape mismatch (-want +got):\n%s", diff)
	}
}

func TestUniform(t *testing.T) {
	if got := Uniform(1); len(got) != 1 || got[0] != 0 {
		t.Errorf("Uniform(1) = %v", got)
	}
	if !floats.Equal(Uniform(4), []float64{0, 1, 2, 3}) {
		t.Errorf("Uniform(4) = %v", Uniform(4))
	}
}

func TestDistRatioOdd(t *testing.T) {
	s := DistRatio[float64]([]float64{0, 1, 3, 4, 6})
	if !floats.Equal(s.Dist, []float64{1, 2, 1, 2}) {
		t.Errorf("Dist = %v", s.Dist)
	}
	want := []float64{1.0 / 3, 2.0 / 3, 1.0 / 3, 0}
	if !floats.EqualApprox(s.Ratio, want, 1e-15) {
		t.Errorf("Ratio = %v, want %v", s.Ratio, want)
	}
}

func TestDistRatioPadded(t *testing.T) {
	testSizes := []int{2, 4, 6, 8, 16}
	for _, n := range testSizes {
		s := UniformSpacing[float32](n)
		if len(s.Dist) != n {
			t.Fatalf("n=%d: len(Dist) = %d, want %d", n, len(s.Dist), n)
		}
		if s.Dist[n-1] != 0 || s.Dist[n-2] != 1 {
			t.Errorf("n=%d: tail of Dist = %v", n, s.Dist[n-2:])
		}
	}
	if s := UniformSpacing[float64](1); s.Dist != nil || s.Ratio != nil {
		t.Errorf("single node spacing = %+v", s)
	}
}

func TestReorder1D(t *testing.T) {
	tests := []struct {
		in, want []int
	}{
		{[]int{0, 1, 2, 3, 4}, []int{0, 2, 4, 1, 3}},
		{[]int{0, 1, 2, 3, 4, 5}, []int{0, 2, 4, 5, 1, 3}},
		{[]int{0, 1, 2, 3}, []int{0, 2, 3, 1}},
		{[]int{0, 1}, []int{0, 1}},
	}
	for _, tt := range tests {
		got := make([]int, len(tt.in))
		Reorder(got, tt.in, []int{len(tt.in)}, 0)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Reorder(%v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestReorderAxis1(t *testing.T) {
	// 2 x 3 field, axis 0 fastest: rows along axis 1 are [0 1], [2 3], [4 5].
	src := []int{0, 1, 2, 3, 4, 5}
	got := make([]int, 6)
	Reorder(got, src, []int{2, 3}, 1)
	if diff := cmp.Diff([]int{0, 1, 4, 5, 2, 3}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReorderRoundTrip(t *testing.T) {
	shapes := [][]int{{5}, {4, 7}, {6, 5, 4}, {3, 3, 2, 5}}
	for _, shape := range shapes {
		n := 1
		for _, s := range shape {
			n *= s
		}
		field := make([]float64, n)
		for i := range field {
			field[i] = float64(i)
		}
		back := RestoreAll(ReorderAll(field, shape), shape)
		if diff := cmp.Diff(field, back); diff != "" {
			t.Errorf("shape %v: round trip mismatch (-want +got):\n%s", shape, diff)
		}
	}
}

func TestReorderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("short dst did not panic")
		}
	}()
	Reorder(make([]int, 3), make([]int, 4), []int{4}, 0)
}
