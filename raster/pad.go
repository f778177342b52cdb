// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "image"

// PadMirror returns a copy of img enlarged by border pixels on each side.
// The border mirrors the image about its edges (the edge pixel itself is
// repeated once, as in "symmetric" padding). A border wider than the image
// keeps reflecting back and forth.
func PadMirror(img *Image, border int) *Image {
	if border <= 0 {
		return img.Clone()
	}
	w := img.width + 2*border
	h := img.height + 2*border
	out := &Image{
		pix:      make([]byte, w*h*img.channels*img.depth.BytesPerSample()),
		width:    w,
		height:   h,
		channels: img.channels,
		depth:    img.depth,
	}

	bpp := img.channels * img.depth.BytesPerSample()
	for y := range h {
		sy := mirror(y-border, img.height)
		srow := img.RowBytes(sy)
		drow := out.RowBytes(y)
		for x := range w {
			sx := mirror(x-border, img.width)
			copy(drow[x*bpp:(x+1)*bpp], srow[sx*bpp:(sx+1)*bpp])
		}
	}
	return out
}

// Crop returns a copy of the pixels of img inside r.
// r is clipped to the image; an empty result returns ErrInvalidDimensions.
func Crop(img *Image, r image.Rectangle) (*Image, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, ErrInvalidDimensions
	}
	out, err := New(r.Dx(), r.Dy(), img.channels, img.depth)
	if err != nil {
		return nil, err
	}
	out.CopyRectTo(img, r, image.Point{})
	return out, nil
}

// mirror maps i into [0, n) by reflecting about both edges.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
