package filter

import (
	"context"
	"math"
	"time"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// LensModel describes the corrections of one lens.
//
// All coordinates are normalized: the origin is the image center and one
// unit is half of the shorter image side.
type LensModel interface {
	// SubpixelDistortion returns the source positions of the red, green
	// and blue samples for the destination position (x, y).
	SubpixelDistortion(x, y float64) (rx, ry, gx, gy, bx, by float64)

	// ColorCorrection returns the factor applied to the color channels at
	// (x, y).
	ColorCorrection(x, y float64) float64

	// Geometry returns the source position for the destination position
	// (x, y).
	Geometry(x, y float64) (sx, sy float64)
}

// PolynomialLens is a LensModel built from the common calibration models:
// PTLens distortion, Pa vignetting and linear transverse chromatic
// aberration.
type PolynomialLens struct {
	// A, B, C are the PTLens coefficients:
	// r_src = r·(A·r³ + B·r² + C·r + 1 - A - B - C).
	A, B, C float64

	// K1, K2, K3 are the Pa vignetting coefficients:
	// falloff = 1 + K1·r² + K2·r⁴ + K3·r⁶.
	K1, K2, K3 float64

	// RedScale and BlueScale scale the red and blue planes relative to
	// green. Zero means 1.
	RedScale, BlueScale float64
}

// SubpixelDistortion implements LensModel.
func (l PolynomialLens) SubpixelDistortion(x, y float64) (rx, ry, gx, gy, bx, by float64) {
	rs, bs := l.RedScale, l.BlueScale
	if rs == 0 {
		rs = 1
	}
	if bs == 0 {
		bs = 1
	}
	return x * rs, y * rs, x, y, x * bs, y * bs
}

// ColorCorrection implements LensModel.
func (l PolynomialLens) ColorCorrection(x, y float64) float64 {
	r2 := x*x + y*y
	falloff := 1 + r2*(l.K1+r2*(l.K2+r2*l.K3))
	if falloff <= 0 {
		return 1
	}
	return 1 / falloff
}

// Geometry implements LensModel.
func (l PolynomialLens) Geometry(x, y float64) (float64, float64) {
	r2 := x*x + y*y
	if r2 == 0 {
		return x, y
	}
	r := math.Sqrt(r2)
	d := 1 - l.A - l.B - l.C
	f := l.A*r2*r + l.B*r2 + l.C*r + d
	return x * f, y * f
}

// LensSettings configures the lens correction filter.
type LensSettings struct {
	// TCA enables the chromatic aberration pass.
	TCA bool

	// Vignetting enables the color correction pass.
	Vignetting bool

	// Distortion enables the geometry pass.
	Distortion bool

	// Interpolation selects the sampling of the TCA and geometry passes.
	Interpolation raster.Interpolation

	// Lens is the built-in model used unless the filter is created with
	// NewLensFilterWithModel.
	Lens PolynomialLens
}

// DefaultLensSettings returns all passes enabled over an identity lens.
func DefaultLensSettings() LensSettings {
	return LensSettings{
		TCA:           true,
		Vignetting:    true,
		Distortion:    true,
		Interpolation: raster.Bilinear,
		Lens:          PolynomialLens{RedScale: 1, BlueScale: 1},
	}
}

// Action returns the action record of the settings.
func (s LensSettings) Action() Action {
	a := newAction(KindLens)
	a.Params.SetBool("tca", s.TCA)
	a.Params.SetBool("vignetting", s.Vignetting)
	a.Params.SetBool("distortion", s.Distortion)
	a.Params.SetInt("interpolation", int(s.Interpolation))
	a.Params.SetFloat("a", s.Lens.A)
	a.Params.SetFloat("b", s.Lens.B)
	a.Params.SetFloat("c", s.Lens.C)
	a.Params.SetFloat("k1", s.Lens.K1)
	a.Params.SetFloat("k2", s.Lens.K2)
	a.Params.SetFloat("k3", s.Lens.K3)
	a.Params.SetFloat("redscale", s.Lens.RedScale)
	a.Params.SetFloat("bluescale", s.Lens.BlueScale)
	return a
}

// LensSettingsFromAction restores settings recorded by Action.
func LensSettingsFromAction(a Action) (LensSettings, error) {
	if err := a.check(KindLens); err != nil {
		return LensSettings{}, err
	}
	r := paramReader{p: a.Params}
	s := LensSettings{
		TCA:           r.boolean("tca"),
		Vignetting:    r.boolean("vignetting"),
		Distortion:    r.boolean("distortion"),
		Interpolation: raster.Interpolation(r.integer("interpolation")),
		Lens: PolynomialLens{
			A:         r.number("a"),
			B:         r.number("b"),
			C:         r.number("c"),
			K1:        r.number("k1"),
			K2:        r.number("k2"),
			K3:        r.number("k3"),
			RedScale:  r.number("redscale"),
			BlueScale: r.number("bluescale"),
		},
	}
	return s, r.err
}

// LensFilter applies up to three sequential correction passes: chromatic
// aberration, color (vignetting) correction and geometry. Progress is
// split evenly between the enabled passes. Geometry samples falling
// outside the source are written as zero.
type LensFilter struct {
	src      *raster.Image
	settings LensSettings
	model    LensModel
}

// NewLensFilter creates a lens filter over src using settings.Lens.
func NewLensFilter(src *raster.Image, s LensSettings) *LensFilter {
	return &LensFilter{src: src, settings: s, model: s.Lens}
}

// NewLensFilterWithModel creates a lens filter with a custom model.
// The action record only captures the settings, not the model.
func NewLensFilterWithModel(src *raster.Image, s LensSettings, model LensModel) *LensFilter {
	return &LensFilter{src: src, settings: s, model: model}
}

// Kind returns KindLens.
func (f *LensFilter) Kind() Kind { return KindLens }

// Action returns the action record of the filter settings.
func (f *LensFilter) Action() Action { return f.settings.Action() }

// lensFrame converts between pixel and normalized coordinates.
type lensFrame struct {
	cx, cy float64
	unit   float64
}

func newLensFrame(w, h int) lensFrame {
	unit := float64(min(w, h)) / 2
	return lensFrame{cx: float64(w-1) / 2, cy: float64(h-1) / 2, unit: max(unit, 0.5)}
}

func (f lensFrame) normalize(x, y int) (float64, float64) {
	return (float64(x) - f.cx) / f.unit, (float64(y) - f.cy) / f.unit
}

func (f lensFrame) pixel(nx, ny float64) (float64, float64) {
	return nx*f.unit + f.cx, ny*f.unit + f.cy
}

// Run applies the filter.
func (f *LensFilter) Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(f.src); err != nil {
		return nil, err
	}

	type pass func(ctx context.Context, in *raster.Image, p *progressReporter, from, to int) (*raster.Image, error)
	var passes []pass
	if f.settings.TCA {
		passes = append(passes, f.tcaPass)
	}
	if f.settings.Vignetting {
		passes = append(passes, f.vignettingPass)
	}
	if f.settings.Distortion {
		passes = append(passes, f.geometryPass)
	}

	log := photofx.Logger()
	log.Debug("filter: lens start", "passes", len(passes))
	start := time.Now()

	p := newProgress(progress)
	img := f.src.Clone()
	for k, run := range passes {
		from := k * 100 / len(passes)
		to := (k + 1) * 100 / len(passes)
		out, err := run(ctx, img, p, from, to)
		if err != nil {
			log.Debug("filter: lens cancelled", "pass", k)
			return out, err
		}
		img = out
	}

	p.done()
	log.Debug("filter: lens done", "elapsed", time.Since(start))
	return img, nil
}

func (f *LensFilter) tcaPass(ctx context.Context, in *raster.Image, p *progressReporter, from, to int) (*raster.Image, error) {
	w, h := in.Width(), in.Height()
	dst := raster.NewLike(in)
	frame := newLensFrame(w, h)
	mode := f.settings.Interpolation
	maxVal := in.Max()
	ch := in.Channels()

	err := runRows(ctx, h, p, from, to, func(y int) {
		for x := range w {
			nx, ny := frame.normalize(x, y)
			rx, ry, gx, gy, bx, by := f.model.SubpixelDistortion(nx, ny)

			i := in.Index(x, y)
			px, py := frame.pixel(rx, ry)
			dst.SetSample(i, raster.ClampSample(in.SampleChannel(px, py, 0, mode), maxVal))
			px, py = frame.pixel(gx, gy)
			dst.SetSample(i+1, raster.ClampSample(in.SampleChannel(px, py, 1, mode), maxVal))
			px, py = frame.pixel(bx, by)
			dst.SetSample(i+2, raster.ClampSample(in.SampleChannel(px, py, 2, mode), maxVal))
			if ch == 4 {
				dst.SetSample(i+3, in.Sample(i+3))
			}
		}
	})
	return dst, err
}

func (f *LensFilter) vignettingPass(ctx context.Context, in *raster.Image, p *progressReporter, from, to int) (*raster.Image, error) {
	w, h := in.Width(), in.Height()
	dst := raster.NewLike(in)
	frame := newLensFrame(w, h)
	maxVal := in.Max()
	ch := in.Channels()

	err := runRows(ctx, h, p, from, to, func(y int) {
		for x := range w {
			nx, ny := frame.normalize(x, y)
			factor := f.model.ColorCorrection(nx, ny)

			i := in.Index(x, y)
			for c := range 3 {
				dst.SetSample(i+c, raster.ClampSample(float64(in.Sample(i+c))*factor, maxVal))
			}
			if ch == 4 {
				dst.SetSample(i+3, in.Sample(i+3))
			}
		}
	})
	return dst, err
}

func (f *LensFilter) geometryPass(ctx context.Context, in *raster.Image, p *progressReporter, from, to int) (*raster.Image, error) {
	w, h := in.Width(), in.Height()
	dst := raster.NewLike(in)
	frame := newLensFrame(w, h)
	mode := f.settings.Interpolation
	maxVal := in.Max()
	ch := in.Channels()

	err := runRows(ctx, h, p, from, to, func(y int) {
		for x := range w {
			nx, ny := frame.normalize(x, y)
			px, py := frame.pixel(f.model.Geometry(nx, ny))
			if !in.Inside(px, py) {
				continue
			}

			i := in.Index(x, y)
			for c := range ch {
				dst.SetSample(i+c, raster.ClampSample(in.SampleChannel(px, py, c, mode), maxVal))
			}
		}
	})
	return dst, err
}
