// Package photofx provides the pixel core of a photo editor: raster
// filters and slideshow transitions.
//
// # Overview
//
// photofx is a Pure Go library that transforms interleaved 8-bit and 16-bit
// raster buffers. It contains no UI, persistence or I/O policy of its own;
// the surrounding application decodes images, hands rasters to the core and
// consumes the results.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/photofx/filter"
//	    "github.com/gogpu/photofx/raster"
//	)
//
//	src, _ := raster.DecodeFile("photo.png", raster.Depth16)
//	s := filter.DefaultVignettingSettings()
//	s.Density = 1.5
//	s.OuterRadius = 0.8
//	dst, err := filter.NewVignettingFilter(src, s).Run(ctx, nil)
//
// # Architecture
//
// The library is organized into:
//   - raster: the Raster Image buffer, sampling, padding and image bridges
//   - filter: anti-vignetting, 3D LUT, refocus, lens correction, free rotation
//   - transition: the slideshow transition engine and its effect catalog
//   - internal: blend math and the batch worker pool
//
// # Coordinate System
//
// Uses standard raster coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Logging
//
// photofx is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler.
package photofx

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
