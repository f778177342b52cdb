package filter

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// RotationSettings configures the free rotation filter.
type RotationSettings struct {
	// Angle in degrees; positive values rotate counter-clockwise.
	Angle float64

	// Antialias selects bilinear instead of nearest-neighbor resampling.
	Antialias bool

	// Background fills the corners uncovered by the rotated image.
	Background color.NRGBA64
}

// DefaultRotationSettings returns a zero rotation over opaque black.
func DefaultRotationSettings() RotationSettings {
	return RotationSettings{
		Antialias:  true,
		Background: color.NRGBA64{A: 0xffff},
	}
}

// Action returns the action record of the settings.
func (s RotationSettings) Action() Action {
	a := newAction(KindRotation)
	a.Params.SetFloat("angle", s.Angle)
	a.Params.SetBool("antialias", s.Antialias)
	a.Params.SetInt("backgroundr", int(s.Background.R))
	a.Params.SetInt("backgroundg", int(s.Background.G))
	a.Params.SetInt("backgroundb", int(s.Background.B))
	a.Params.SetInt("backgrounda", int(s.Background.A))
	return a
}

// RotationSettingsFromAction restores settings recorded by Action.
func RotationSettingsFromAction(a Action) (RotationSettings, error) {
	if err := a.check(KindRotation); err != nil {
		return RotationSettings{}, err
	}
	r := paramReader{p: a.Params}
	s := RotationSettings{
		Angle:     r.number("angle"),
		Antialias: r.boolean("antialias"),
		Background: color.NRGBA64{
			R: uint16(r.integer("backgroundr")),
			G: uint16(r.integer("backgroundg")),
			B: uint16(r.integer("backgroundb")),
			A: uint16(r.integer("backgrounda")),
		},
	}
	return s, r.err
}

// subImager is a drawable image that can be restricted to a rectangle.
type subImager interface {
	draw.Image
	SubImage(r image.Rectangle) image.Image
}

// RotationFilter rotates an image by an arbitrary angle about its center.
//
// Unlike the other filters the destination is resized to the bounding box
// of the rotated source; channels and depth are preserved.
type RotationFilter struct {
	src      *raster.Image
	settings RotationSettings
}

// NewRotationFilter creates a rotation filter over src.
func NewRotationFilter(src *raster.Image, s RotationSettings) *RotationFilter {
	return &RotationFilter{src: src, settings: s}
}

// Kind returns KindRotation.
func (f *RotationFilter) Kind() Kind { return KindRotation }

// Action returns the action record of the filter settings.
func (f *RotationFilter) Action() Action { return f.settings.Action() }

// RotatedSize returns the bounding box of a w×h image rotated by angle
// degrees.
func RotatedSize(w, h int, angle float64) (int, int) {
	rad := angle * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	fw, fh := float64(w), float64(h)
	// Drop float noise so 90° turns do not grow by a pixel.
	rw := int(math.Ceil(fw*c + fh*s - 1e-9))
	rh := int(math.Ceil(fw*s + fh*c - 1e-9))
	return max(rw, 1), max(rh, 1)
}

// Run applies the filter.
func (f *RotationFilter) Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(f.src); err != nil {
		return nil, err
	}
	src := f.src
	p := newProgress(progress)

	if math.Mod(f.settings.Angle, 360) == 0 {
		p.done()
		return src.Clone(), nil
	}

	w, h := RotatedSize(src.Width(), src.Height(), f.settings.Angle)
	photofx.Logger().Debug("filter: rotation start", "angle", f.settings.Angle,
		"width", w, "height", h)

	srcImg := src.ToImage()
	var dstImg subImager
	if src.Depth() == raster.Depth16 {
		dstImg = image.NewNRGBA64(image.Rect(0, 0, w, h))
	} else {
		dstImg = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(dstImg, dstImg.Bounds(), image.NewUniform(f.settings.Background), image.Point{}, draw.Src)

	// s2d maps source to destination: move the source center to the
	// origin, rotate, then move it to the destination center.
	rad := f.settings.Angle * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	scx, scy := float64(src.Width())/2, float64(src.Height())/2
	dcx, dcy := float64(w)/2, float64(h)/2
	s2d := f64.Aff3{
		c, s, dcx - c*scx - s*scy,
		-s, c, dcy + s*scx - c*scy,
	}

	var interp draw.Transformer = draw.NearestNeighbor
	if f.settings.Antialias {
		interp = draw.BiLinear
	}

	// One destination row per step keeps cancellation row-granular.
	err := runRows(ctx, h, p, 0, 90, func(y int) {
		row := dstImg.SubImage(image.Rect(0, y, w, y+1)).(draw.Image)
		interp.Transform(row, s2d, srcImg, srcImg.Bounds(), draw.Over, nil)
	})
	if err != nil {
		out, _ := raster.FromImage(dstImg, src.Channels(), src.Depth())
		return out, err
	}

	out, err := raster.FromImage(dstImg, src.Channels(), src.Depth())
	if err != nil {
		return nil, err
	}
	p.done()
	return out, nil
}
