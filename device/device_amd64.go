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

//go:build amd64

package device

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasSSE2 {
		hostFeatures = append(hostFeatures, "sse2")
	}
	if cpu.X86.HasAVX2 {
		hostFeatures = append(hostFeatures, "avx2")
	}
	if cpu.X86.HasFMA {
		hostFeatures = append(hostFeatures, "fma")
	}
	if cpu.X86.HasAVX512F {
		hostFeatures = append(hostFeatures, "avx512f")
	}
}
