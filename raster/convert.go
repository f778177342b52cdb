// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// ToImage returns a standard library image holding a copy of the pixels.
// 8-bit rasters produce *image.NRGBA, 16-bit rasters *image.NRGBA64.
// 3-channel rasters get an opaque alpha channel.
func (m *Image) ToImage() image.Image {
	if m.depth == Depth16 {
		out := image.NewNRGBA64(m.Bounds())
		if m.channels == 4 {
			copy(out.Pix, m.pix)
			return out
		}
		for i, j := 0, 0; i < len(m.pix); i, j = i+6, j+8 {
			copy(out.Pix[j:j+6], m.pix[i:i+6])
			out.Pix[j+6] = 0xff
			out.Pix[j+7] = 0xff
		}
		return out
	}

	out := image.NewNRGBA(m.Bounds())
	if m.channels == 4 {
		copy(out.Pix, m.pix)
		return out
	}
	for i, j := 0, 0; i < len(m.pix); i, j = i+3, j+4 {
		copy(out.Pix[j:j+3], m.pix[i:i+3])
		out.Pix[j+3] = 0xff
	}
	return out
}

// FromImage converts a standard library image into a raster of the given
// channel count and depth. Colors are un-premultiplied.
func FromImage(img image.Image, channels int, depth Depth) (*Image, error) {
	b := img.Bounds()
	out, err := New(b.Dx(), b.Dy(), channels, depth)
	if err != nil {
		return nil, err
	}

	// Fast paths for the formats ToImage produces.
	switch src := img.(type) {
	case *image.NRGBA:
		if channels == 4 && depth == Depth8 {
			for y := range out.height {
				so := src.PixOffset(b.Min.X, b.Min.Y+y)
				copy(out.RowBytes(y), src.Pix[so:so+out.Stride()])
			}
			return out, nil
		}
	case *image.NRGBA64:
		if channels == 4 && depth == Depth16 {
			for y := range out.height {
				so := src.PixOffset(b.Min.X, b.Min.Y+y)
				copy(out.RowBytes(y), src.Pix[so:so+out.Stride()])
			}
			return out, nil
		}
	}

	for y := range out.height {
		for x := range out.width {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			if depth == Depth16 {
				out.Set(x, y, int(c.R), int(c.G), int(c.B), int(c.A))
			} else {
				out.Set(x, y, int(c.R>>8), int(c.G>>8), int(c.B>>8), int(c.A>>8))
			}
		}
	}
	return out, nil
}

// Convert returns a copy of the image with the given channel count and depth.
// Adding an alpha channel makes it opaque; dropping it discards it.
func (m *Image) Convert(channels int, depth Depth) (*Image, error) {
	out, err := New(m.width, m.height, channels, depth)
	if err != nil {
		return nil, err
	}
	if out.SameShape(m) {
		copy(out.pix, m.pix)
		return out, nil
	}

	scale := func(v int) int { return v }
	switch {
	case m.depth == Depth8 && depth == Depth16:
		scale = func(v int) int { return v * 257 }
	case m.depth == Depth16 && depth == Depth8:
		scale = func(v int) int { return (v*255 + 32767) / 65535 }
	}

	for y := range m.height {
		for x := range m.width {
			c0, c1, c2, a := m.At(x, y)
			out.Set(x, y, scale(c0), scale(c1), scale(c2), scale(a))
		}
	}
	return out, nil
}

// Resize returns a copy of the image scaled to width × height with bilinear
// filtering. The channel count and depth are preserved.
func (m *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if width == m.width && height == m.height {
		return m.Clone(), nil
	}
	scaled := resize.Resize(uint(width), uint(height), m.ToImage(), resize.Bilinear)
	return FromImage(scaled, m.channels, m.depth)
}
