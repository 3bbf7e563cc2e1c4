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

	"github.com/go-mgard/mgard/internal/envconfig"
)

// NumConfigs is the number of tile configurations per dimensionality class.
const NumConfigs = 7

// Tile is a block shape: R lanes along z, C along y and F along x.
//
// Shared memory per block grows with the processed axis as 2*T+3, so large
// F tiles favour long fibers while cubic tiles favour LPK-2 and LPK-3.
type Tile struct {
	R int // slowest axis (z)
	C int // middle axis (y)
	F int // fastest axis (x)
}

func (t Tile) dims() [3]int {
	return [3]int{t.R, t.C, t.F}
}

// Lanes returns the number of lanes of a full block.
func (t Tile) Lanes() int {
	return t.R * t.C * t.F
}

func (t Tile) String() string {
	return fmt.Sprintf("%dx%dx%d", t.R, t.C, t.F)
}

// Class groups dimensionalities that share a tile table.
type Class int

const (
	Class1D Class = iota
	Class2D
	Class3D // three or more dimensions
)

// ClassOf returns the class of a d-dimensional field.
func ClassOf(d int) Class {
	switch {
	case d >= 3:
		return Class3D
	case d == 2:
		return Class2D
	default:
		return Class1D
	}
}

func (c Class) String() string {
	switch c {
	case Class1D:
		return "1D"
	case Class2D:
		return "2D"
	default:
		return "3D+"
	}
}

// tiles holds the hand-tuned tile shapes, indexed by class and config.
// 1D fields only run LPK-1, so only F varies there.
var tiles = [...][NumConfigs]Tile{
	Class1D: {
		{1, 1, 8}, {1, 1, 8}, {1, 1, 8}, {1, 1, 16}, {1, 1, 32}, {1, 1, 64}, {1, 1, 128},
	},
	Class2D: {
		{1, 2, 4}, {1, 4, 4}, {1, 8, 8}, {1, 4, 16}, {1, 2, 32}, {1, 2, 64}, {1, 2, 128},
	},
	Class3D: {
		{2, 2, 2}, {4, 4, 4}, {8, 8, 8}, {4, 4, 16}, {2, 2, 32}, {2, 2, 64}, {2, 2, 128},
	},
}

// TileFor returns the tile of configuration config for a d-dimensional field.
func TileFor(d, config int) Tile {
	if config < 0 || config >= NumConfigs {
		panic("lpk: tile config out of range")
	}
	return tiles[ClassOf(d)][config]
}

// Mode selects how many tile configurations a launch runs.
type Mode int

const (
	// RunSelected runs Tuning.Config only.
	RunSelected Mode = iota
	// RunAll runs every configuration from 6 down to 0, the profiling sweep.
	RunAll
)

func (m Mode) String() string {
	switch m {
	case RunSelected:
		return "selected"
	case RunAll:
		return "all"
	default:
		return "unknown"
	}
}

// Tuning picks the tile configuration of a launch.
type Tuning struct {
	Mode   Mode
	Config int
}

// configs returns the configurations t runs, in launch order.
func (t Tuning) configs() ([]int, error) {
	switch t.Mode {
	case RunSelected:
		if t.Config < 0 || t.Config >= NumConfigs {
			return nil, fmt.Errorf("lpk: config %d not in [0,%d): %w", t.Config, NumConfigs, ErrInvalidConfig)
		}
		return []int{t.Config}, nil
	case RunAll:
		all := make([]int, NumConfigs)
		for i := range all {
			all[i] = NumConfigs - 1 - i
		}
		return all, nil
	default:
		return nil, fmt.Errorf("lpk: tuning mode %d: %w", t.Mode, ErrInvalidConfig)
	}
}

// DefaultTuning reads MGARD_KERNEL_PROFILE and MGARD_KERNEL_CONFIG.
func DefaultTuning() Tuning {
	t := Tuning{Mode: RunSelected, Config: envconfig.KernelConfig()}
	if envconfig.KernelProfile() {
		t.Mode = RunAll
	}
	return t
}
