// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package lpk

import "errors"

var (
	// ErrDimensionality reports a kernel called on a field with too few
	// dimensions. Nothing is launched.
	ErrDimensionality = errors.New("unsupported dimensionality")

	// ErrInvalidConfig reports a tuning selection or tile table the device
	// cannot run.
	ErrInvalidConfig = errors.New("invalid tile configuration")

	// ErrInvalidArgument reports inconsistent metadata or operands.
	ErrInvalidArgument = errors.New("invalid argument")
)
