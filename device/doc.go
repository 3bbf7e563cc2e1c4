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

// Package device emulates a SIMT accelerator on CPU cores.
//
// The execution model follows the usual GPU vocabulary:
//
//   - A launch runs a grid of thread blocks. Grid and block shapes are Dim3
//     values and are validated against the device Properties before any work
//     is queued.
//   - Blocks are independent and are scheduled onto a persistent worker pool
//     in no particular order.
//   - The lanes of one block run on a single goroutine. A kernel expresses
//     barriers as phase boundaries: every lane finishes phase k before any
//     lane starts phase k+1.
//   - Each block gets private shared memory, a []T plus a []int32, sized by
//     the launch Config and cleared before the block starts.
//   - Launches are queued on a Stream. Work on one stream runs in FIFO order;
//     different streams run concurrently and are never synchronized with each
//     other by the device.
//
// Errors follow the last-error convention of GPU runtimes. Configuration
// errors are returned by Launch. Execution errors (a panicking block) become
// sticky on the stream and are returned by Stream.Synchronize. Handle.Check
// routes either kind to the handle's error handler, which by default logs
// and panics.
//
// Example:
//
//	h := device.NewHandle(device.WithQueues(2))
//	defer h.Close()
//
//	cfg := device.Config{Name: "scale", Grid: device.Dim3{X: 4, Y: 1, Z: 1}, Block: device.Dim3{X: 64, Y: 1, Z: 1}}
//	err := device.Launch(h, 0, cfg, device.KernelFunc[float32](func(b *device.Block[float32]) {
//	    for tid := range b.NumLanes() {
//	        i := b.Idx.X*b.Dim.X + b.Lane(tid).X
//	        if i < len(data) {
//	            data[i] *= 2
//	        }
//	    }
//	}))
//	h.Check(err)
//	h.Check(h.Synchronize())
package device
