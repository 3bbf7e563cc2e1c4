// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

//go:build mgard_debug

package nd

import "fmt"

// Debug reports whether bounds checks are compiled in.
const Debug = true

func checkBounds(shape, idx []int) {
	if len(idx) != len(shape) {
		panic(fmt.Sprintf("nd: got %d indices for %d axes", len(idx), len(shape)))
	}
	for i, v := range idx {
		if v < 0 || v >= shape[i] {
			panic(fmt.Sprintf("nd: index %d out of range [0,%d) on axis %d", v, shape[i], i))
		}
	}
}
