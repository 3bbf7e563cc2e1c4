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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-mgard/mgard/device"
)

func TestTileTable(t *testing.T) {
	tests := []struct {
		d, config int
		want      Tile
	}{
		{3, 6, Tile{2, 2, 128}},
		{3, 2, Tile{8, 8, 8}},
		{3, 0, Tile{2, 2, 2}},
		{5, 3, Tile{4, 4, 16}},
		{2, 6, Tile{1, 2, 128}},
		{2, 0, Tile{1, 2, 4}},
		{1, 4, Tile{1, 1, 32}},
		{1, 0, Tile{1, 1, 8}},
	}
	for _, tt := range tests {
		if got := TileFor(tt.d, tt.config); got != tt.want {
			t.Errorf("TileFor(%d, %d) = %v, want %v", tt.d, tt.config, got, tt.want)
		}
	}
}

func TestTuningConfigs(t *testing.T) {
	got, err := Tuning{Mode: RunAll}.configs()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{6, 5, 4, 3, 2, 1, 0}, got); diff != "" {
		t.Errorf("RunAll order mismatch (-want +got):\n%s", diff)
	}
	for _, c := range []int{-1, NumConfigs} {
		if _, err := (Tuning{Config: c}).configs(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("config %d: err = %v, want ErrInvalidConfig", c, err)
		}
	}
	if _, err := (Tuning{Mode: Mode(9)}).configs(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad mode: err = %v", err)
	}
}

func TestDefaultTuning(t *testing.T) {
	t.Setenv("MGARD_KERNEL_PROFILE", "")
	t.Setenv("MGARD_KERNEL_CONFIG", "4")
	if got := DefaultTuning(); got != (Tuning{Mode: RunSelected, Config: 4}) {
		t.Errorf("DefaultTuning() = %+v", got)
	}
	t.Setenv("MGARD_KERNEL_PROFILE", "1")
	if got := DefaultTuning(); got.Mode != RunAll {
		t.Errorf("DefaultTuning().Mode = %v, want all", got.Mode)
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Setenv("MGARD_KERNEL_PROFILE", "")
	t.Setenv("MGARD_KERNEL_CONFIG", "2")
	want := Options{Tuning: Tuning{Mode: RunSelected, Config: 2}, Coarse: KeepCoarse}
	if got := DefaultOptions(); got != want {
		t.Errorf("DefaultOptions() = %+v, want %+v", got, want)
	}
	if KeepCoarse == ZeroCoarse {
		t.Fatal("coarse policies must differ")
	}
}

func TestSharedMemBytes(t *testing.T) {
	tests := []struct {
		r       Role
		tile    Tile
		d, size int
		want    int
	}{
		// (R*C*(2F+3) + 2(2F+3))*size + 5D*4
		{RoleF, Tile{2, 2, 128}, 3, 8, (2*2*259+2*259)*8 + 60},
		{RoleF, Tile{1, 1, 8}, 1, 4, (19+38)*4 + 20},
		// (R*(2C+3)*F + 2(2C+3))*size + 5D*4
		{RoleC, Tile{8, 8, 8}, 3, 4, (8*19*8+2*19)*4 + 60},
		{RoleC, Tile{1, 2, 128}, 2, 8, (7*128+14)*8 + 40},
		// ((2R+3)*C*F + 2(2R+3))*size + 5D*4
		{RoleR, Tile{4, 4, 16}, 4, 8, (11*4*16+22)*8 + 80},
	}
	for _, tt := range tests {
		if got := SharedMemBytes(tt.r, tt.tile, tt.d, tt.size); got != tt.want {
			t.Errorf("SharedMemBytes(%v, %v, %d, %d) = %d, want %d", tt.r, tt.tile, tt.d, tt.size, got, tt.want)
		}
	}
}

func TestSharedMemWithinDeviceLimit(t *testing.T) {
	for d := 1; d <= 6; d++ {
		for _, r := range Roles {
			if d < r.MinDims() {
				continue
			}
			for c := range NumConfigs {
				tile := TileFor(d, c)
				for _, size := range []int{4, 8} {
					if n := SharedMemBytes(r, tile, d, size); n > device.DefaultSharedMemPerBlock {
						t.Errorf("%dD %s config %d (%v): %d bytes > %d", d, r, c, tile, n, device.DefaultSharedMemPerBlock)
					}
				}
				if tile.Lanes() > device.MaxThreadsPerBlock {
					t.Errorf("%dD config %d: %d lanes", d, c, tile.Lanes())
				}
			}
		}
	}
}

func TestNewLauncherValidatesTable(t *testing.T) {
	h := device.NewHandle(device.WithWorkers(1), device.WithQueues(1), device.WithSharedMemPerBlock(4096))
	defer h.Close()

	// 3D config 6 needs over 12 KiB in double precision.
	if _, err := NewLauncher[float64](h, 3); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewLauncher with 4 KiB limit: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewLauncher[float64](h, 0); !errors.Is(err, ErrDimensionality) {
		t.Errorf("NewLauncher(0D): err = %v, want ErrDimensionality", err)
	}

	big := device.NewHandle(device.WithWorkers(1), device.WithQueues(1))
	defer big.Close()
	for d := 1; d <= 4; d++ {
		if _, err := NewLauncher[float64](big, d); err != nil {
			t.Errorf("NewLauncher(%dD): %v", d, err)
		}
	}
}
