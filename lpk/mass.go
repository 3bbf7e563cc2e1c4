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

import "github.com/go-mgard/mgard/grid"

// Float is the set of sample types the kernels support.
type Float interface {
	grid.Float
}

// MassTrans evaluates the mass-transfer stencil centred on c.
//
// Samples a, b, c, d, e sit at consecutive fine nodes separated by the
// intervals h1..h4. b and d are coefficient nodes; r1 is the interpolation
// weight of b towards c and r4 (= 1 - r3) the weight of d towards c. The
// three element sums
//
//	tb = a*h1 + 2b(h1+h2) + c*h2
//	tc = b*h2 + 2c(h2+h3) + d*h3
//	td = c*h3 + 2d(h3+h4) + e*h4
//
// are blended as tc + r1*tb + r4*td and divided by the same blend of their
// weights, so a constant field maps to itself. Out-of-range neighbours are
// passed as zero samples with zero intervals and drop out. If every weight is
// zero the result is zero.
func MassTrans[T Float](a, b, c, d, e, h1, h2, h3, h4, r1, r2, r3, r4 T) T {
	tb := a*h1 + 2*b*(h1+h2) + c*h2
	tc := b*h2 + 2*c*(h2+h3) + d*h3
	td := c*h3 + 2*d*(h3+h4) + e*h4
	w := 3*(h2+h3) + r1*3*(h1+h2) + r4*3*(h3+h4)
	if w == 0 {
		return 0
	}
	return (tc + r1*tb + r4*td) / w
}
