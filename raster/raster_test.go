// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		channels int
		depth    Depth
		wantErr  error
		wantLen  int
	}{
		{"rgba8", 10, 10, 4, Depth8, nil, 400},
		{"rgb8", 10, 5, 3, Depth8, nil, 150},
		{"rgba16", 4, 4, 4, Depth16, nil, 128},
		{"rgb16", 2, 3, 3, Depth16, nil, 36},
		{"zero width", 0, 10, 4, Depth8, ErrInvalidDimensions, 0},
		{"negative height", 10, -1, 4, Depth8, ErrInvalidDimensions, 0},
		{"two channels", 10, 10, 2, Depth8, ErrInvalidChannels, 0},
		{"depth 12", 10, 10, 4, Depth(12), ErrInvalidDepth, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(tt.width, tt.height, tt.channels, tt.depth)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got := len(img.Pix()); got != tt.wantLen {
				t.Errorf("len(Pix()) = %d, want %d", got, tt.wantLen)
			}
			if got := img.Stride(); got != tt.width*tt.channels*tt.depth.BytesPerSample() {
				t.Errorf("Stride() = %d", got)
			}
		})
	}
}

func TestFromRaw(t *testing.T) {
	data := make([]byte, 2*2*3)
	img, err := FromRaw(data, 2, 2, 3, Depth8)
	if err != nil {
		t.Fatalf("FromRaw() error = %v", err)
	}
	img.Set(1, 1, 7, 8, 9, 0)
	if data[9] != 7 || data[10] != 8 || data[11] != 9 {
		t.Errorf("FromRaw() did not alias data: %v", data)
	}

	if _, err := FromRaw(data[:5], 2, 2, 3, Depth8); !errors.Is(err, ErrDataTooSmall) {
		t.Errorf("FromRaw(short) error = %v, want %v", err, ErrDataTooSmall)
	}
}

func TestSample16BigEndian(t *testing.T) {
	img, _ := New(1, 1, 4, Depth16)
	img.Set(0, 0, 0x1234, 0xffff, 0, 0x00ff)

	want := []byte{0x12, 0x34, 0xff, 0xff, 0x00, 0x00, 0x00, 0xff}
	for i, b := range want {
		if img.Pix()[i] != b {
			t.Fatalf("Pix()[%d] = %#x, want %#x", i, img.Pix()[i], b)
		}
	}
	if got := img.Sample(0); got != 0x1234 {
		t.Errorf("Sample(0) = %#x, want 0x1234", got)
	}
}

func TestAtAlpha(t *testing.T) {
	rgb, _ := New(2, 2, 3, Depth8)
	rgb.Set(0, 0, 1, 2, 3, 99)
	c0, c1, c2, a := rgb.At(0, 0)
	if c0 != 1 || c1 != 2 || c2 != 3 || a != 255 {
		t.Errorf("At(0,0) = (%d,%d,%d,%d), want (1,2,3,255)", c0, c1, c2, a)
	}
	if _, _, _, a := rgb.At(5, 5); a != 0 {
		t.Errorf("At(out of bounds) alpha = %d, want 0", a)
	}
}

func TestCloneIndependent(t *testing.T) {
	img, _ := New(3, 3, 4, Depth8)
	img.Fill(10, 20, 30, 40)
	c := img.Clone()
	if !c.Equal(img) {
		t.Fatal("Clone() not equal to original")
	}
	c.Set(0, 0, 0, 0, 0, 0)
	if c.Equal(img) {
		t.Error("Clone() shares storage with original")
	}
}

func TestCopyRectTo(t *testing.T) {
	src, _ := New(4, 4, 4, Depth8)
	src.Fill(255, 0, 0, 255)
	dst, _ := New(4, 4, 4, Depth8)

	tests := []struct {
		name   string
		sr     image.Rectangle
		dp     image.Point
		filled image.Rectangle
	}{
		{"identity", image.Rect(1, 1, 3, 3), image.Pt(1, 1), image.Rect(1, 1, 3, 3)},
		{"shifted", image.Rect(0, 0, 2, 2), image.Pt(2, 2), image.Rect(2, 2, 4, 4)},
		{"clipped dest", image.Rect(0, 0, 4, 4), image.Pt(3, -1), image.Rect(3, 0, 4, 3)},
		{"clipped source", image.Rect(-2, -2, 2, 2), image.Pt(0, 0), image.Rect(2, 2, 4, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dst.Clone()
			d.CopyRectTo(src, tt.sr, tt.dp)
			for y := range 4 {
				for x := range 4 {
					r, _, _, _ := d.At(x, y)
					want := 0
					if image.Pt(x, y).In(tt.filled) {
						want = 255
					}
					if r != want {
						t.Errorf("pixel (%d,%d) = %d, want %d", x, y, r, want)
					}
				}
			}
		})
	}
}

func TestCopyFromMismatch(t *testing.T) {
	a, _ := New(2, 2, 4, Depth8)
	b, _ := New(2, 2, 3, Depth8)
	if err := a.CopyFrom(b); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("CopyFrom() error = %v, want %v", err, ErrShapeMismatch)
	}
}

func TestClampSample(t *testing.T) {
	tests := []struct {
		v      float64
		maxVal int
		want   int
	}{
		{-5, 255, 0},
		{0.4, 255, 0},
		{0.5, 255, 1},
		{254.6, 255, 255},
		{300, 255, 255},
		{70000, 65535, 65535},
		{math.NaN(), 255, 0},
		{math.Inf(1), 255, 255},
	}
	for _, tt := range tests {
		if got := ClampSample(tt.v, tt.maxVal); got != tt.want {
			t.Errorf("ClampSample(%v, %d) = %d, want %d", tt.v, tt.maxVal, got, tt.want)
		}
	}
}

func TestClampGeneric(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d, want 3", got)
	}
	if got := Clamp(-0.5, 0.0, 1.0); got != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v, want 0", got)
	}
}

func TestSampleChannel(t *testing.T) {
	img, _ := New(2, 1, 3, Depth8)
	img.Set(0, 0, 0, 0, 0, 0)
	img.Set(1, 0, 100, 200, 50, 0)

	tests := []struct {
		name string
		x    float64
		mode Interpolation
		c    int
		want float64
	}{
		{"nearest left", 0.4, Nearest, 0, 0},
		{"nearest right", 0.6, Nearest, 0, 100},
		{"bilinear mid", 0.5, Bilinear, 1, 100},
		{"bilinear quarter", 0.25, Bilinear, 0, 25},
		{"clamped", 5, Bilinear, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := img.SampleChannel(tt.x, 0, tt.c, tt.mode)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SampleChannel(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func BenchmarkFill(b *testing.B) {
	img, _ := New(512, 512, 4, Depth16)
	for b.Loop() {
		img.Fill(1, 2, 3, 4)
	}
}
