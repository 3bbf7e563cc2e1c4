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
	"log/slog"
	"time"
	"unsafe"

	"github.com/go-mgard/mgard/device"
)

// Launcher launches the kernels for d-dimensional fields of T on one device.
type Launcher[T Float] struct {
	h   *device.Handle
	d   int
	log *slog.Logger
}

// NewLauncher checks every tile configuration the d-dimensional kernels can
// use against the device limits and returns a launcher for them.
func NewLauncher[T Float](h *device.Handle, d int) (*Launcher[T], error) {
	if d < 1 {
		return nil, fmt.Errorf("lpk: %d dimensions: %w", d, ErrDimensionality)
	}
	l := &Launcher[T]{h: h, d: d, log: h.Logger()}
	props := h.Properties()
	for _, r := range Roles {
		if d < r.MinDims() {
			continue
		}
		for c := range NumConfigs {
			t := TileFor(d, c)
			if t.Lanes() > props.MaxThreadsPerBlock {
				return nil, fmt.Errorf("lpk: %s config %d (%v) has %d lanes, device allows %d: %w",
					r, c, t, t.Lanes(), props.MaxThreadsPerBlock, ErrInvalidConfig)
			}
			if n := SharedMemBytes(r, t, d, l.elemSize()); n > props.SharedMemPerBlock {
				return nil, fmt.Errorf("lpk: %s config %d (%v) needs %d bytes of shared memory, device allows %d: %w",
					r, c, t, n, props.SharedMemPerBlock, ErrInvalidConfig)
			}
		}
	}
	return l, nil
}

func (l *Launcher[T]) elemSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// D returns the dimensionality the launcher was validated for.
func (l *Launcher[T]) D() int { return l.d }

// Plan returns the launch configuration of role r with tile configuration
// config.
//
// Block extents are the tile clamped to the output span. The grid covers the
// span along each tile axis; grid X also folds in every non-tile axis.
func (l *Launcher[T]) Plan(r Role, m *Metadata, config int) device.Config {
	t := TileFor(l.d, config)
	span := m.Span(r)
	td := t.dims()
	var block, grid [3]int
	for a := range 3 {
		block[a] = max(1, min(td[a], span[a]))
		grid[a] = (span[a] + block[a] - 1) / block[a]
	}
	values, table := r.sharedLayout(t)
	return device.Config{
		Name:         fmt.Sprintf("%s<%dD,%v>", r, l.d, t),
		Grid:         device.Dim3{X: grid[axisX] * m.otherBlocks(), Y: grid[axisY], Z: grid[axisZ]},
		Block:        device.Dim3{X: block[axisX], Y: block[axisY], Z: block[axisZ]},
		SharedValues: values + 2*table,
		SharedInts:   metaInts(l.d),
	}
}

// LPK1 runs the F-axis kernel. Metadata is rebuilt from args on every call;
// use Launch with a prepared Metadata in loops.
func (l *Launcher[T]) LPK1(args *Args[T], opts Options) error {
	return l.launchArgs(RoleF, args, opts)
}

// LPK2 runs the C-axis kernel. It refuses fields with fewer than two
// dimensions.
func (l *Launcher[T]) LPK2(args *Args[T], opts Options) error {
	return l.launchArgs(RoleC, args, opts)
}

// LPK3 runs the R-axis kernel. It refuses fields with fewer than three
// dimensions.
func (l *Launcher[T]) LPK3(args *Args[T], opts Options) error {
	return l.launchArgs(RoleR, args, opts)
}

func (l *Launcher[T]) launchArgs(r Role, args *Args[T], opts Options) error {
	if err := l.checkDims(r, len(args.Shape)); err != nil {
		return err
	}
	m, err := NewMetadata(args.Shape, args.ShapeC, args.Ldvs, args.Ldws, args.Processed, args.Axes)
	if err != nil {
		return err
	}
	return l.Launch(r, m, &args.Operands, opts)
}

// Launch queues role r on opts.Queue. With RunAll it runs the profiling
// sweep and discards the timings.
//
// Launch failures go through the handle's Check, which by default does not
// return. A refused dimensionality is logged and returned as
// ErrDimensionality.
func (l *Launcher[T]) Launch(r Role, m *Metadata, ops *Operands[T], opts Options) error {
	if opts.Tuning.Mode == RunAll {
		_, err := l.Profile(r, m, ops, opts)
		return err
	}
	if err := l.prepare(r, m, ops); err != nil {
		return err
	}
	configs, err := opts.Tuning.configs()
	if err != nil {
		return err
	}
	return l.launchConfig(r, m, ops, opts, configs[0])
}

// Timing is the measured cost of one configuration in a profiling sweep.
type Timing struct {
	Config  int
	Tile    Tile
	Launch  device.Config
	Bytes   int
	Elapsed time.Duration
}

// Profile runs role r with every tile configuration, from 6 down to 0,
// synchronizing after each one. Every run writes the same output.
func (l *Launcher[T]) Profile(r Role, m *Metadata, ops *Operands[T], opts Options) ([]Timing, error) {
	if err := l.prepare(r, m, ops); err != nil {
		return nil, err
	}
	s, err := l.h.Queue(opts.Queue)
	if err != nil {
		return nil, err
	}
	configs, _ := Tuning{Mode: RunAll}.configs()
	timings := make([]Timing, 0, len(configs))
	for _, c := range configs {
		start := time.Now()
		if err := l.launchConfig(r, m, ops, opts, c); err != nil {
			return timings, err
		}
		if err := l.h.Check(s.Synchronize()); err != nil {
			return timings, err
		}
		cfg := l.Plan(r, m, c)
		t := Timing{
			Config:  c,
			Tile:    TileFor(l.d, c),
			Launch:  cfg,
			Bytes:   device.SharedBytes[T](cfg),
			Elapsed: time.Since(start),
		}
		l.log.Debug("lpk profile", "kernel", r, "config", c, "tile", t.Tile, "elapsed", t.Elapsed)
		timings = append(timings, t)
	}
	return timings, nil
}

func (l *Launcher[T]) checkDims(r Role, d int) error {
	if d < r.MinDims() {
		l.log.Error("kernel needs more dimensions", "kernel", r, "min", r.MinDims(), "got", d)
		return fmt.Errorf("lpk: %s needs %dD or more, got %dD: %w", r, r.MinDims(), d, ErrDimensionality)
	}
	return nil
}

func (l *Launcher[T]) prepare(r Role, m *Metadata, ops *Operands[T]) error {
	if m == nil {
		return fmt.Errorf("lpk: nil metadata: %w", ErrInvalidArgument)
	}
	if err := l.checkDims(r, m.d); err != nil {
		return err
	}
	if m.d != l.d {
		return fmt.Errorf("lpk: %dD metadata on a %dD launcher: %w", m.d, l.d, ErrInvalidArgument)
	}
	return ops.validate(m, r)
}

func (l *Launcher[T]) launchConfig(r Role, m *Metadata, ops *Operands[T], opts Options, c int) error {
	cfg := l.Plan(r, m, c)
	k := newKernel(r, TileFor(l.d, c), m, ops, opts.Coarse)
	return l.h.Check(device.Launch[T](l.h, opts.Queue, cfg, k))
}
