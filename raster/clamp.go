// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp clamps val to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](val, lo, hi T) T {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampSample rounds v to the nearest integer and clamps it to [0, maxVal].
// NaN maps to 0.
func ClampSample(v float64, maxVal int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(maxVal) {
		return maxVal
	}
	return int(v + 0.5)
}
