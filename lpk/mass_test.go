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
	"math"
	"math/rand/v2"
	"testing"
)

func TestMassTransUnit(t *testing.T) {
	if got := MassTrans[float64](1, 1, 1, 1, 1, 1, 1, 1, 1, 0.25, 0.25, 0.5, 0.5); got != 1 {
		t.Errorf("float64: MassTrans = %v, want 1", got)
	}
	if got := MassTrans[float32](1, 1, 1, 1, 1, 1, 1, 1, 1, 0.25, 0.25, 0.5, 0.5); got != 1 {
		t.Errorf("float32: MassTrans = %v, want 1", got)
	}
}

func TestMassTransConstant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		k := rng.Float64()*20 - 10
		h := [4]float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		r1, r3 := rng.Float64(), rng.Float64()
		got := MassTrans(k, k, k, k, k, h[0], h[1], h[2], h[3], r1, 0.5, r3, 1-r3)
		if math.Abs(got-k) > 1e-12*math.Max(1, math.Abs(k)) {
			t.Fatalf("constant %v with h=%v r1=%v r3=%v: got %v", k, h, r1, r3, got)
		}
	}
}

func TestMassTransBoundary(t *testing.T) {
	// Left boundary: no samples or intervals before c.
	got := MassTrans[float64](0, 0, 2, 2, 2, 0, 0, 1, 1, 0, 0, 0.5, 0.5)
	if got != 2 {
		t.Errorf("left boundary = %v, want 2", got)
	}
	// Right boundary: no samples or intervals after c.
	got = MassTrans[float64](2, 2, 2, 0, 0, 1, 1, 0, 0, 0.5, 0.5, 0, 1)
	if got != 2 {
		t.Errorf("right boundary = %v, want 2", got)
	}
	// Nothing around c at all.
	if got := MassTrans[float64](0, 0, 7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1); got != 0 {
		t.Errorf("isolated node = %v, want 0", got)
	}
}

func TestMassTransLinear(t *testing.T) {
	// Samples 1..5 on unit spacing with r1 = r4 = 0.5:
	// tb = 1+8+3 = 12, tc = 2+12+4 = 18, td = 3+16+5 = 24,
	// (18 + 6 + 12) / (6 + 3 + 3) = 3.
	got := MassTrans[float64](1, 2, 3, 4, 5, 1, 1, 1, 1, 0.5, 0.5, 0.5, 0.5)
	if want := 3.0; math.Abs(got-want) > 1e-15 {
		t.Errorf("MassTrans = %v, want %v", got, want)
	}
}
