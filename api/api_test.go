// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mgard/mgard/internal/logutil"
)

// fakeEngine records its calls and echoes the field length as the payload.
type fakeEngine struct {
	shape  []int
	params Params
	qoiS   float64
	norm   float64
	out    []float32
	err    error
}

func (f *fakeEngine) Refactor(shape []int, data []float32, p Params) ([]byte, error) {
	f.shape, f.params = shape, p
	return []byte{byte(len(data))}, f.err
}

func (f *fakeEngine) Recompose(shape []int, buf []byte, p Params) ([]float32, error) {
	f.shape, f.params = shape, p
	return f.out, f.err
}

func (f *fakeEngine) QoINorm(shape []int, qoi QoI[float32], s float64) float64 {
	f.qoiS = s
	return f.norm
}

func TestCompressDispatch(t *testing.T) {
	tests := []struct {
		name             string
		nrow, ncol, nfib int
		shape            []int
	}{
		{"3D", 5, 6, 7, []int{7, 6, 5}},
		{"2D", 5, 6, 1, []int{6, 5}},
		{"2D unit row", 1, 6, 9, []int{9, 6}},
		{"2D unit column", 4, 1, 9, []int{9, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &fakeEngine{}
			data := make([]float32, tt.nrow*tt.ncol*tt.nfib)
			buf, err := Compress[float32](e, data, tt.nrow, tt.ncol, tt.nfib, 1e-3)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, e.shape)
			assert.Equal(t, Params{Tol: 1e-3}, e.params)
			assert.Equal(t, []byte{byte(len(data))}, buf)
		})
	}
}

func TestCompressNotImplemented(t *testing.T) {
	var logs bytes.Buffer
	e := &fakeEngine{}
	buf, err := Compress(e, make([]float32, 9), 9, 1, 1, 1e-3, WithLogger[float32](logutil.NewLogger(&logs, slog.LevelInfo)))
	require.ErrorIs(t, err, ErrNotImplemented)
	assert.Nil(t, buf)
	assert.Nil(t, e.shape, "engine must not be called")
	assert.Contains(t, logs.String(), "only 2D and 3D")

	_, err = Compress(e, make([]float32, 1), 1, 1, 1, 1e-3, WithLogger[float32](logutil.NewLogger(&logs, slog.LevelInfo)))
	require.ErrorIs(t, err, ErrNotImplemented)

	_, err = Decompress(e, nil, 1, 1, 12, WithLogger[float32](logutil.NewLogger(&logs, slog.LevelInfo)))
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestCompressPanics(t *testing.T) {
	e := &fakeEngine{}
	data := make([]float32, 1000)
	assert.PanicsWithValue(t, "mgard: tolerance 1e-09 below 1e-08", func() {
		Compress[float32](e, data, 5, 5, 5, 1e-9)
	})
	assert.Panics(t, func() { Compress[float32](e, data, 5, 5, 5, 0) })
	assert.Panics(t, func() { Compress[float32](e, data, 3, 5, 5, 1e-3) }, "extent 3")
	assert.Panics(t, func() { Compress[float32](e, data, 5, 2, 5, 1e-3) }, "extent 2")
	assert.Panics(t, func() { Compress[float32](e, data, 5, 5, 0, 1e-3) }, "extent 0")
	assert.PanicsWithValue(t, "mgard: data slice too short", func() {
		Compress[float32](e, data[:10], 5, 5, 5, 1e-3)
	})
	assert.Panics(t, func() { Decompress[float32](e, nil, 5, 3, 5) })
}

func TestCompressNorms(t *testing.T) {
	data := make([]float32, 5*5*5)

	e := &fakeEngine{}
	_, err := Compress(e, data, 5, 5, 5, 1e-2, WithS[float32](1))
	require.NoError(t, err)
	assert.Equal(t, Params{Tol: 1e-2, S: 1}, e.params)

	e = &fakeEngine{norm: 4}
	qoi := func(nrow, ncol, nfib int, v []float32) float32 { return v[0] }
	_, err = Compress(e, data, 5, 5, 5, 1e-2, WithQoI[float32](qoi, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, e.qoiS)
	assert.InDelta(t, 4e-2, e.params.Tol, 1e-15)
	assert.Equal(t, -0.5, e.params.S)

	e = &fakeEngine{}
	_, err = Compress(e, data, 5, 5, 5, 1e-2, WithNormOfQoI[float32](3, 2))
	require.NoError(t, err)
	assert.InDelta(t, 3e-2, e.params.Tol, 1e-15)
	assert.Equal(t, 2.0, e.params.S)
	assert.Zero(t, e.qoiS, "QoINorm must not be called")
}

func TestDecompress(t *testing.T) {
	e := &fakeEngine{out: []float32{1, 2, 3}}
	v, err := Decompress(e, []byte{1}, 4, 5, 1, WithS[float32](2))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)
	assert.Equal(t, []int{5, 4}, e.shape)
	assert.Equal(t, 2.0, e.params.S)

	v[0] = 9
	assert.Equal(t, float32(1), e.out[0], "result must not alias the engine's slice")

	e = &fakeEngine{err: errors.New("corrupt stream")}
	_, err = Decompress[float32](e, []byte{1}, 4, 5, 6)
	require.EqualError(t, err, "corrupt stream")
}

func TestCompressCoords(t *testing.T) {
	x := []float64{0, 1, 3, 4, 7}
	y := []float64{0, 2, 3, 5}
	z := []float64{0, 0.5, 1, 2, 4, 5}

	e := &fakeEngine{}
	_, err := Compress(e, make([]float32, 4*5*6), 4, 5, 6, 1e-3, WithCoords[float32](x, y, z))
	require.NoError(t, err)
	assert.Equal(t, []int{6, 5, 4}, e.shape)
	assert.Equal(t, [][]float64{z, x, y}, e.params.Coords)

	// Unit axes drop their coordinates along with their extent.
	e = &fakeEngine{}
	_, err = Compress(e, make([]float32, 4*5), 4, 5, 1, 1e-3, WithCoords[float32](x, y, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4}, e.shape)
	assert.Equal(t, [][]float64{x, y}, e.params.Coords)

	e = &fakeEngine{out: []float32{0}}
	_, err = Decompress(e, []byte{1}, 4, 5, 1, WithCoords[float32](x, y, nil))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{x, y}, e.params.Coords)

	e = &fakeEngine{}
	_, err = Compress[float32](e, make([]float32, 4*5*6), 4, 5, 6, 1e-3)
	require.NoError(t, err)
	assert.Nil(t, e.params.Coords, "unit spacing without WithCoords")
}

func TestCompressCoordsMismatch(t *testing.T) {
	e := &fakeEngine{}
	data := make([]float32, 4*5*6)
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 2, 3}
	z := []float64{0, 1, 2, 3, 4, 5}

	assert.PanicsWithValue(t, "mgard: 4 x coordinates for extent 5", func() {
		Compress(e, data, 4, 5, 6, 1e-3, WithCoords[float32](x[:4], y, z))
	})
	assert.PanicsWithValue(t, "mgard: 5 y coordinates for extent 4", func() {
		Compress(e, data, 4, 5, 6, 1e-3, WithCoords[float32](x, x, z))
	})
	assert.PanicsWithValue(t, "mgard: 6 z coordinates for a unit axis", func() {
		Compress(e, data, 4, 5, 1, 1e-3, WithCoords[float32](x, y, z))
	})
	assert.Panics(t, func() {
		Decompress(e, nil, 4, 5, 6, WithCoords[float32](x, y, z[:5]))
	})
	assert.Nil(t, e.shape, "engine must not be called")
}

func TestQoINorm(t *testing.T) {
	e := &fakeEngine{norm: 2.5}
	qoi := func(nrow, ncol, nfib int, v []float32) float32 { return v[0] }
	got := QoINorm[float32](e, 7, 1, 9, qoi, 1.5)
	assert.Equal(t, 2.5, got)
	assert.Equal(t, 1.5, e.qoiS)

	assert.Panics(t, func() { QoINorm[float32](e, 7, 2, 9, qoi, 1) })
	assert.Panics(t, func() { QoINorm[float32](e, 7, 5, 9, nil, 1) })
}
