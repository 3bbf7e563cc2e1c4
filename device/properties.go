// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const (
	// DefaultSharedMemPerBlock matches the static shared memory limit of
	// common GPUs.
	DefaultSharedMemPerBlock = 48 << 10

	// MaxThreadsPerBlock is the largest block the device accepts.
	MaxThreadsPerBlock = 1024
)

var (
	// MaxBlockDim bounds each block axis.
	MaxBlockDim = Dim3{X: 1024, Y: 1024, Z: 64}

	// MaxGridDim bounds each grid axis.
	MaxGridDim = Dim3{X: 1<<31 - 1, Y: 65535, Z: 65535}
)

// hostFeatures lists the CPU features the block loops can benefit from.
// Set by init() in device_*.go files.
var hostFeatures []string

// Properties describes the emulated device.
type Properties struct {
	Name               string
	Arch               string
	Features           []string
	CacheLineSize      int
	Workers            int
	Queues             int
	SharedMemPerBlock  int
	MaxThreadsPerBlock int
	MaxBlockDim        Dim3
	MaxGridDim         Dim3
}

func detectProperties(workers, queues, sharedMem int) Properties {
	return Properties{
		Name:               fmt.Sprintf("cpu-simt/%s", runtime.GOARCH),
		Arch:               runtime.GOARCH,
		Features:           append([]string(nil), hostFeatures...),
		CacheLineSize:      int(unsafe.Sizeof(cpu.CacheLinePad{})),
		Workers:            workers,
		Queues:             queues,
		SharedMemPerBlock:  sharedMem,
		MaxThreadsPerBlock: MaxThreadsPerBlock,
		MaxBlockDim:        MaxBlockDim,
		MaxGridDim:         MaxGridDim,
	}
}
