// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // register GIF decoder

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the file extension has no encoder.
	ErrUnsupportedFormat = errors.New("raster: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("raster: empty data")
)

// Decode decodes an image from r, auto-detecting the format among PNG, JPEG,
// GIF, TIFF, BMP and WebP. The result always has 4 channels.
func Decode(r io.Reader, depth Depth) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("raster: decode: %w", err)
	}
	return FromImage(img, 4, depth)
}

// DecodeBytes decodes an image held in memory.
func DecodeBytes(data []byte, depth Depth) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data), depth)
}

// DecodeFile loads an image from the given file path.
func DecodeFile(path string, depth Depth) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("raster: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, depth)
}

// EncodePNG encodes the image as PNG to the given writer.
func (m *Image) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, m.ToImage()); err != nil {
		return fmt.Errorf("raster: encode PNG: %w", err)
	}
	return nil
}

// EncodeTIFF encodes the image as deflate-compressed TIFF. 16-bit rasters
// keep their full depth.
func (m *Image) EncodeTIFF(w io.Writer) error {
	opts := &tiff.Options{Compression: tiff.Deflate}
	if err := tiff.Encode(w, m.ToImage(), opts); err != nil {
		return fmt.Errorf("raster: encode TIFF: %w", err)
	}
	return nil
}

// SaveFile writes the image to path, choosing the encoder by extension:
// .png, .jpg/.jpeg (quality 95), .tif/.tiff or .bmp.
func (m *Image) SaveFile(path string) error {
	var encode func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = m.EncodePNG
	case ".tif", ".tiff":
		encode = m.EncodeTIFF
	case ".jpg", ".jpeg":
		encode = func(w io.Writer) error {
			return jpeg.Encode(w, m.ToImage(), &jpeg.Options{Quality: 95})
		}
	case ".bmp":
		encode = func(w io.Writer) error {
			return bmp.Encode(w, m.ToImage())
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("raster: create file: %w", err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
