package transition

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/photofx/internal/blend"
	"github.com/gogpu/photofx/raster"
)

// canvas is what an effect draws on: the current frame, the two endpoint
// images and the shared drawing scratch.
type canvas struct {
	frame *raster.Image
	in    *raster.Image
	out   *raster.Image
	rng   RandomSource

	// mask receives path coverage; only the path bounds are written.
	mask *image.Alpha
	z    vector.Rasterizer
}

func newCanvas(frame *raster.Image) *canvas {
	return &canvas{
		frame: frame,
		mask:  image.NewAlpha(frame.Bounds()),
	}
}

func (c *canvas) width() int  { return c.frame.Width() }
func (c *canvas) height() int { return c.frame.Height() }

// fillRect copies the pixels of src inside the rectangle (x, y, w, h) to
// the same position in the frame. The rectangle is clipped.
func (c *canvas) fillRect(src *raster.Image, x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.frame.CopyRect(src, image.Rect(x, y, x+w, y+h))
}

// point is a path vertex in canvas coordinates.
type point struct {
	x, y float64
}

// fillPolygon copies src into the frame through the anti-aliased coverage
// of the closed polygon pts.
func (c *canvas) fillPolygon(src *raster.Image, pts []point) {
	if len(pts) < 3 {
		return
	}
	minX, minY := pts[0].x, pts[0].y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	r, ok := c.pathBounds(minX, minY, maxX, maxY)
	if !ok {
		return
	}

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	c.z.MoveTo(float32(pts[0].x-ox), float32(pts[0].y-oy))
	for _, p := range pts[1:] {
		c.z.LineTo(float32(p.x-ox), float32(p.y-oy))
	}
	c.z.ClosePath()
	c.composite(src, r)
}

// kappa places cubic control points so four arcs approximate a circle.
const kappa = 0.5522847498

// fillEllipse copies src into the frame through the anti-aliased coverage
// of the ellipse inscribed in the rectangle (x, y, w, h).
func (c *canvas) fillEllipse(src *raster.Image, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	r, ok := c.pathBounds(x, y, x+w, y+h)
	if !ok {
		return
	}

	rx, ry := w/2, h/2
	cx, cy := x+rx-float64(r.Min.X), y+ry-float64(r.Min.Y)
	kx, ky := rx*kappa, ry*kappa
	f := func(v float64) float32 { return float32(v) }

	c.z.MoveTo(f(cx+rx), f(cy))
	c.z.CubeTo(f(cx+rx), f(cy+ky), f(cx+kx), f(cy+ry), f(cx), f(cy+ry))
	c.z.CubeTo(f(cx-kx), f(cy+ry), f(cx-rx), f(cy+ky), f(cx-rx), f(cy))
	c.z.CubeTo(f(cx-rx), f(cy-ky), f(cx-kx), f(cy-ry), f(cx), f(cy-ry))
	c.z.CubeTo(f(cx+kx), f(cy-ry), f(cx+rx), f(cy-ky), f(cx+rx), f(cy))
	c.z.ClosePath()
	c.composite(src, r)
}

// pathBounds clips the path bounding box to the frame and resets the
// rasterizer to its size. It reports false for paths outside the frame.
func (c *canvas) pathBounds(minX, minY, maxX, maxY float64) (image.Rectangle, bool) {
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(c.frame.Bounds())
	if r.Empty() {
		return r, false
	}
	c.z.Reset(r.Dx(), r.Dy())
	c.z.DrawOp = draw.Src
	return r, true
}

// composite rasterizes the pending path into the mask over r and mixes
// src into the frame by the coverage.
func (c *canvas) composite(src *raster.Image, r image.Rectangle) {
	c.z.Draw(c.mask, r, image.Opaque, image.Point{})

	frame := c.frame
	maxVal := frame.Max()
	scale := maxVal / 255
	ch := frame.Channels()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		mrow := c.mask.Pix[c.mask.PixOffset(r.Min.X, y):]
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := int(mrow[x-r.Min.X])
			if cov == 0 {
				continue
			}
			i := frame.Index(x, y)
			if cov == 255 {
				for k := range ch {
					frame.SetSample(i+k, src.Sample(i+k))
				}
				continue
			}
			cov *= scale
			for k := range ch {
				frame.SetSample(i+k, blend.Mix(frame.Sample(i+k), src.Sample(i+k), cov, maxVal))
			}
		}
	}
}

// mixImages writes lerp(a, b, t) into the frame for every sample.
func (c *canvas) mixImages(a, b *raster.Image, t float64) {
	frame := c.frame
	for i := range frame.Len() {
		frame.SetSample(i, blend.Lerp(a.Sample(i), b.Sample(i), t))
	}
}
