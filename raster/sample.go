// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "math"

// Interpolation defines how off-grid sample positions are resolved.
type Interpolation uint8

const (
	// Nearest selects the closest pixel (no interpolation).
	Nearest Interpolation = iota

	// Bilinear interpolates linearly between the 4 neighboring pixels.
	Bilinear
)

// String returns a string representation of the interpolation mode.
func (m Interpolation) String() string {
	switch m {
	case Nearest:
		return "Nearest"
	case Bilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// SampleChannel returns channel c of the image at pixel coordinates
// (x, y), where integer coordinates address pixel centers. Coordinates
// outside the image are clamped to the edge.
func (m *Image) SampleChannel(x, y float64, c int, mode Interpolation) float64 {
	if mode == Nearest {
		px := Clamp(int(math.Floor(x+0.5)), 0, m.width-1)
		py := Clamp(int(math.Floor(y+0.5)), 0, m.height-1)
		return float64(m.Sample(m.Index(px, py) + c))
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	tx := x - float64(x0)
	ty := y - float64(y0)

	x1 := Clamp(x0+1, 0, m.width-1)
	y1 := Clamp(y0+1, 0, m.height-1)
	x0 = Clamp(x0, 0, m.width-1)
	y0 = Clamp(y0, 0, m.height-1)

	v00 := float64(m.Sample(m.Index(x0, y0) + c))
	v10 := float64(m.Sample(m.Index(x1, y0) + c))
	v01 := float64(m.Sample(m.Index(x0, y1) + c))
	v11 := float64(m.Sample(m.Index(x1, y1) + c))

	return lerp2D(v00, v10, v01, v11, tx, ty)
}

// Inside reports whether (x, y) lies within the pixel-center grid of the image.
func (m *Image) Inside(x, y float64) bool {
	return x >= -0.5 && y >= -0.5 && x < float64(m.width)-0.5 && y < float64(m.height)-0.5
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}
