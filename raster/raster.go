// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster provides the interleaved pixel buffer consumed and produced
// by photofx filters and transitions.
//
// An [Image] stores width × height pixels of 3 or 4 channels (the 4th is
// alpha) with 8 or 16 bits per sample. Rows are contiguous with no padding:
// stride = width × channels × bytesPerSample. 16-bit samples are stored
// big-endian, the same convention as [image.NRGBA64], so buffers can be
// exchanged with the standard library without reordering.
package raster

import (
	"errors"
	"image"
)

// Common errors for raster operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")

	// ErrInvalidChannels is returned when the channel count is not 3 or 4.
	ErrInvalidChannels = errors.New("raster: channels must be 3 or 4")

	// ErrInvalidDepth is returned when the bit depth is not 8 or 16.
	ErrInvalidDepth = errors.New("raster: depth must be 8 or 16")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("raster: data buffer too small")

	// ErrShapeMismatch is returned when two images must share size and format.
	ErrShapeMismatch = errors.New("raster: image shape mismatch")
)

// Depth is the number of bits per channel sample.
type Depth uint8

const (
	// Depth8 stores one byte per sample (0..255).
	Depth8 Depth = 8

	// Depth16 stores two big-endian bytes per sample (0..65535).
	Depth16 Depth = 16
)

// IsValid reports whether d is a supported depth.
func (d Depth) IsValid() bool {
	return d == Depth8 || d == Depth16
}

// BytesPerSample returns 1 for Depth8 and 2 for Depth16.
func (d Depth) BytesPerSample() int {
	if d == Depth16 {
		return 2
	}
	return 1
}

// Max returns the largest sample value: 255 or 65535.
func (d Depth) Max() int {
	if d == Depth16 {
		return 65535
	}
	return 255
}

// String returns a string representation of the depth.
func (d Depth) String() string {
	switch d {
	case Depth8:
		return "8-bit"
	case Depth16:
		return "16-bit"
	default:
		return "Unknown"
	}
}

// Image is an owned buffer of interleaved pixel samples.
//
// Image is safe for concurrent read access. Writes require external
// synchronization.
type Image struct {
	pix      []byte
	width    int
	height   int
	channels int
	depth    Depth
}

func validate(width, height, channels int, depth Depth) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if channels != 3 && channels != 4 {
		return ErrInvalidChannels
	}
	if !depth.IsValid() {
		return ErrInvalidDepth
	}
	return nil
}

// New creates a zeroed image with the given dimensions and format.
func New(width, height, channels int, depth Depth) (*Image, error) {
	if err := validate(width, height, channels, depth); err != nil {
		return nil, err
	}
	return &Image{
		pix:      make([]byte, width*height*channels*depth.BytesPerSample()),
		width:    width,
		height:   height,
		channels: channels,
		depth:    depth,
	}, nil
}

// FromRaw wraps existing sample data without copying.
// The caller must not modify data while the image is in use.
func FromRaw(data []byte, width, height, channels int, depth Depth) (*Image, error) {
	if err := validate(width, height, channels, depth); err != nil {
		return nil, err
	}
	size := width * height * channels * depth.BytesPerSample()
	if len(data) < size {
		return nil, ErrDataTooSmall
	}
	return &Image{
		pix:      data[:size],
		width:    width,
		height:   height,
		channels: channels,
		depth:    depth,
	}, nil
}

// NewLike creates a zeroed image with the same size and format as img.
func NewLike(img *Image) *Image {
	return &Image{
		pix:      make([]byte, len(img.pix)),
		width:    img.width,
		height:   img.height,
		channels: img.channels,
		depth:    img.depth,
	}
}

// Clone creates a deep copy of the image.
func (m *Image) Clone() *Image {
	out := NewLike(m)
	copy(out.pix, m.pix)
	return out
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Channels returns the number of samples per pixel (3 or 4).
func (m *Image) Channels() int { return m.channels }

// Depth returns the bit depth of each sample.
func (m *Image) Depth() Depth { return m.depth }

// HasAlpha reports whether the image carries a 4th (alpha) channel.
func (m *Image) HasAlpha() bool { return m.channels == 4 }

// Max returns the largest representable sample value.
func (m *Image) Max() int { return m.depth.Max() }

// Stride returns the number of bytes per row.
func (m *Image) Stride() int {
	return m.width * m.channels * m.depth.BytesPerSample()
}

// Bounds returns the image rectangle with its origin at (0, 0).
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Pix returns the raw sample bytes.
func (m *Image) Pix() []byte { return m.pix }

// Len returns the number of samples (width × height × channels).
func (m *Image) Len() int {
	return m.width * m.height * m.channels
}

// IsEmpty reports whether the image is nil or has no pixels.
func (m *Image) IsEmpty() bool {
	return m == nil || m.width == 0 || m.height == 0 || len(m.pix) == 0
}

// SameShape reports whether o has the same size, channels and depth.
func (m *Image) SameShape(o *Image) bool {
	return m != nil && o != nil &&
		m.width == o.width && m.height == o.height &&
		m.channels == o.channels && m.depth == o.depth
}

// Index returns the sample index of the first channel of pixel (x, y).
// No bounds checking is performed.
func (m *Image) Index(x, y int) int {
	return (y*m.width + x) * m.channels
}

// Sample returns the sample at index i.
func (m *Image) Sample(i int) int {
	if m.depth == Depth16 {
		return int(m.pix[2*i])<<8 | int(m.pix[2*i+1])
	}
	return int(m.pix[i])
}

// SetSample stores v at index i. v must already be within [0, Max()].
func (m *Image) SetSample(i, v int) {
	if m.depth == Depth16 {
		m.pix[2*i] = byte(v >> 8)
		m.pix[2*i+1] = byte(v)
		return
	}
	m.pix[i] = byte(v)
}

// At returns the samples of pixel (x, y); alpha is Max() for 3-channel
// images. Out-of-bounds coordinates return zeros.
func (m *Image) At(x, y int) (c0, c1, c2, a int) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, 0, 0, 0
	}
	i := m.Index(x, y)
	a = m.depth.Max()
	if m.channels == 4 {
		a = m.Sample(i + 3)
	}
	return m.Sample(i), m.Sample(i + 1), m.Sample(i + 2), a
}

// Set stores the samples of pixel (x, y). Alpha is ignored for 3-channel
// images and out-of-bounds coordinates are ignored.
func (m *Image) Set(x, y, c0, c1, c2, a int) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	i := m.Index(x, y)
	m.SetSample(i, c0)
	m.SetSample(i+1, c1)
	m.SetSample(i+2, c2)
	if m.channels == 4 {
		m.SetSample(i+3, a)
	}
}

// Fill sets every pixel to the given samples.
func (m *Image) Fill(c0, c1, c2, a int) {
	for y := range m.height {
		for x := range m.width {
			m.Set(x, y, c0, c1, c2, a)
		}
	}
}

// RowBytes returns the bytes of row y, or nil if y is out of bounds.
func (m *Image) RowBytes(y int) []byte {
	if y < 0 || y >= m.height {
		return nil
	}
	stride := m.Stride()
	return m.pix[y*stride : (y+1)*stride]
}

// CopyFrom copies all samples of src into m. Both must share a shape.
func (m *Image) CopyFrom(src *Image) error {
	if !m.SameShape(src) {
		return ErrShapeMismatch
	}
	copy(m.pix, src.pix)
	return nil
}

// CopyRect copies the pixels of src inside r to the same position in m.
// r is clipped to both images; both must share channels and depth.
func (m *Image) CopyRect(src *Image, r image.Rectangle) {
	m.CopyRectTo(src, r, r.Min)
}

// CopyRectTo copies the pixels of src inside sr so that sr.Min lands on dp
// in m. The copy is clipped to both images.
func (m *Image) CopyRectTo(src *Image, sr image.Rectangle, dp image.Point) {
	if m.channels != src.channels || m.depth != src.depth {
		return
	}
	// Clip source rect against src, then the translated rect against m.
	delta := dp.Sub(sr.Min)
	sr = sr.Intersect(src.Bounds())
	dr := sr.Add(delta).Intersect(m.Bounds())
	if dr.Empty() {
		return
	}
	sr = dr.Sub(delta)

	bpp := m.channels * m.depth.BytesPerSample()
	n := dr.Dx() * bpp
	for y := 0; y < dr.Dy(); y++ {
		so := ((sr.Min.Y+y)*src.width + sr.Min.X) * bpp
		do := ((dr.Min.Y+y)*m.width + dr.Min.X) * bpp
		copy(m.pix[do:do+n], src.pix[so:so+n])
	}
}

// Equal reports whether m and o have the same shape and samples.
func (m *Image) Equal(o *Image) bool {
	if !m.SameShape(o) {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}
