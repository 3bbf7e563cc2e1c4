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

// Package envconfig reads MGARD_* environment variables.
//
// Every setting is a getter function so that tests can change the
// environment with t.Setenv and observe the new value.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Var returns the value of key with surrounding whitespace and quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the log level selected by MGARD_DEBUG.
// A boolean true selects debug; an integer n selects slog.Level(-4n).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("MGARD_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// BoolWithDefault returns a getter for a boolean variable. Any non-empty
// value that does not parse as a boolean counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// Uint returns a getter for an unsigned variable. Invalid values are logged
// and replaced with defaultValue.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// Debug synchronizes the device after every kernel launch.
	Debug = Bool("MGARD_DEBUG")
	// KernelProfile makes the profiling sweep the default tuning mode.
	KernelProfile = Bool("MGARD_KERNEL_PROFILE")
	// NumWorkers sets the worker pool size. Zero means GOMAXPROCS.
	NumWorkers = Uint("MGARD_NUM_WORKERS", 0)
	// NumQueues sets the number of streams per device handle.
	NumQueues = Uint("MGARD_NUM_QUEUES", 4)
	// SharedMemPerBlock sets the per-block shared memory limit in bytes.
	SharedMemPerBlock = Uint("MGARD_SHARED_MEM_PER_BLOCK", 48<<10)
)

// KernelConfig returns the default tile configuration, clamped to [0, 6].
func KernelConfig() int {
	c := Uint("MGARD_KERNEL_CONFIG", 2)()
	if c > 6 {
		slog.Warn("kernel config out of range, using 6", "value", c)
		c = 6
	}
	return int(c)
}

// EnvVar describes one variable for help output.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every known variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"MGARD_DEBUG":                {"MGARD_DEBUG", LogLevel(), "Show debug logs and synchronize after every launch"},
		"MGARD_KERNEL_PROFILE":       {"MGARD_KERNEL_PROFILE", KernelProfile(), "Run every tile configuration by default"},
		"MGARD_KERNEL_CONFIG":        {"MGARD_KERNEL_CONFIG", KernelConfig(), "Default tile configuration (0-6)"},
		"MGARD_NUM_WORKERS":          {"MGARD_NUM_WORKERS", NumWorkers(), "Worker goroutines executing blocks (0 = GOMAXPROCS)"},
		"MGARD_NUM_QUEUES":           {"MGARD_NUM_QUEUES", NumQueues(), "Streams per device handle"},
		"MGARD_SHARED_MEM_PER_BLOCK": {"MGARD_SHARED_MEM_PER_BLOCK", SharedMemPerBlock(), "Shared memory limit per block in bytes"},
	}
}

// Values returns the current value of every variable formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
