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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndex3MatchesIndex(t *testing.T) {
	ld := []int{7, 5, 3}
	for z := range 3 {
		for y := range 5 {
			for x := range 7 {
				got := Index3(ld[0], ld[1], z, y, x)
				want := Index(ld, []int{x, y, z})
				if got != want {
					t.Fatalf("Index3(%d,%d,%d) = %d, want %d", z, y, x, got, want)
				}
			}
		}
	}
}

func TestIndexPrefix(t *testing.T) {
	ld := []int{4, 6, 8, 2}
	if got := Index(ld, []int{3, 2}); got != 3+2*4 {
		t.Errorf("Index prefix = %d, want %d", got, 11)
	}
	if got := Index(ld, nil); got != 0 {
		t.Errorf("Index(nil) = %d, want 0", got)
	}
}

func TestStrides(t *testing.T) {
	got := Strides([]int{4, 6, 8, 2})
	want := []int{1, 4, 24, 192}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Strides mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBijection(t *testing.T) {
	testExtents := [][]int{
		{1},
		{5},
		{3, 4},
		{2, 1, 5},
		{3, 2, 2, 4},
	}
	for _, extents := range testExtents {
		total := Volume(extents)
		seen := make(map[int]bool, total)
		idx := make([]int, len(extents))
		for linear := range total {
			if rest := Decode(linear, extents, idx); rest != 0 {
				t.Fatalf("extents %v: Decode(%d) left quotient %d", extents, linear, rest)
			}
			for i, v := range idx {
				if v < 0 || v >= extents[i] {
					t.Fatalf("extents %v: Decode(%d) axis %d = %d out of range", extents, linear, i, v)
				}
			}
			back := Index(extents, idx)
			if back != linear {
				t.Fatalf("extents %v: Index(Decode(%d)) = %d", extents, linear, back)
			}
			seen[back] = true
		}
		if len(seen) != total {
			t.Errorf("extents %v: %d distinct offsets, want %d", extents, len(seen), total)
		}
	}
}

func TestDecodeQuotient(t *testing.T) {
	idx := make([]int, 2)
	if rest := Decode(3*4*5+7, []int{3, 4}, idx); rest != 5 {
		t.Errorf("quotient = %d, want 5", rest)
	}
	if diff := cmp.Diff([]int{1, 2}, idx); diff != "" {
		t.Errorf("idx mismatch (-want +got):\n%s", diff)
	}
}
