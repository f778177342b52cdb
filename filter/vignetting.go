package filter

import (
	"context"
	"math"
	"time"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// VignettingSettings configures the anti-vignetting filter.
type VignettingSettings struct {
	// Density is the attenuation added beyond the outer radius.
	Density float64

	// Power shapes the falloff between the inner and outer radius.
	Power float64

	// InnerRadius is the fraction of the outer radius left untouched.
	InnerRadius float64

	// OuterRadius is the fraction of the half diagonal where the falloff ends.
	OuterRadius float64

	// XShift and YShift move the center, in percent of width and height.
	XShift float64
	YShift float64

	// AddVignetting darkens the corners instead of brightening them.
	AddVignetting bool
}

// DefaultVignettingSettings returns the nominal settings.
func DefaultVignettingSettings() VignettingSettings {
	return VignettingSettings{
		Density:       2.0,
		Power:         1.0,
		InnerRadius:   1.0,
		OuterRadius:   1.0,
		AddVignetting: true,
	}
}

// Action returns the action record of the settings.
func (s VignettingSettings) Action() Action {
	a := newAction(KindVignetting)
	a.Params.SetFloat("density", s.Density)
	a.Params.SetFloat("power", s.Power)
	a.Params.SetFloat("innerradius", s.InnerRadius)
	a.Params.SetFloat("outerradius", s.OuterRadius)
	a.Params.SetFloat("xshift", s.XShift)
	a.Params.SetFloat("yshift", s.YShift)
	a.Params.SetBool("addvignetting", s.AddVignetting)
	return a
}

// VignettingSettingsFromAction restores settings recorded by Action.
func VignettingSettingsFromAction(a Action) (VignettingSettings, error) {
	if err := a.check(KindVignetting); err != nil {
		return VignettingSettings{}, err
	}
	r := paramReader{p: a.Params}
	s := VignettingSettings{
		Density:       r.number("density"),
		Power:         r.number("power"),
		InnerRadius:   r.number("innerradius"),
		OuterRadius:   r.number("outerradius"),
		XShift:        r.number("xshift"),
		YShift:        r.number("yshift"),
		AddVignetting: r.boolean("addvignetting"),
	}
	return s, r.err
}

// vignette holds the geometry derived once per run.
type vignette struct {
	xctr, yctr float64
	irad, erad float64
	density    float64
	power      float64
}

func newVignette(w, h int, s VignettingSettings) vignette {
	xsize := float64(w+1) / 2
	ysize := float64(h+1) / 2
	halfDiagonal := math.Hypot(xsize, ysize)

	return vignette{
		xctr:    xsize + s.XShift*float64(w)/100,
		yctr:    ysize + s.YShift*float64(h)/100,
		erad:    s.OuterRadius * halfDiagonal,
		irad:    s.OuterRadius * s.InnerRadius * halfDiagonal,
		density: s.Density,
		power:   s.Power,
	}
}

// attenuation returns the falloff factor at distance d from the center.
// An empty band (erad <= irad) never attenuates up to erad.
func (v vignette) attenuation(d float64) float64 {
	switch {
	case d < v.irad:
		return 1
	case d > v.erad:
		return 1 + v.density
	case v.erad <= v.irad:
		return 1
	}
	return 1 + v.density*math.Pow((d-v.irad)/(v.erad-v.irad), v.power)
}

// VignettingFilter corrects (or adds) radial light falloff.
//
// Color channels are scaled by the attenuation at each pixel's distance
// from the (shiftable) center; alpha is copied. Pixel positions are
// 1-based so the center of an N-pixel axis lies at (N+1)/2. The same
// radius convention applies to 8- and 16-bit images.
type VignettingFilter struct {
	src      *raster.Image
	settings VignettingSettings
}

// NewVignettingFilter creates an anti-vignetting filter over src.
func NewVignettingFilter(src *raster.Image, s VignettingSettings) *VignettingFilter {
	return &VignettingFilter{src: src, settings: s}
}

// Kind returns KindVignetting.
func (f *VignettingFilter) Kind() Kind { return KindVignetting }

// Action returns the action record of the filter settings.
func (f *VignettingFilter) Action() Action { return f.settings.Action() }

// Run applies the filter.
func (f *VignettingFilter) Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(f.src); err != nil {
		return nil, err
	}
	src := f.src
	w, h := src.Width(), src.Height()
	dst := raster.NewLike(src)
	v := newVignette(w, h, f.settings)
	maxVal := src.Max()
	ch := src.Channels()

	log := photofx.Logger()
	log.Debug("filter: vignetting start", "width", w, "height", h,
		"irad", v.irad, "erad", v.erad)
	start := time.Now()

	p := newProgress(progress)
	err := runRows(ctx, h, p, 0, 100, func(y int) {
		yd := float64(y+1) - v.yctr
		for x := range w {
			xd := float64(x+1) - v.xctr
			mult := v.attenuation(math.Hypot(xd, yd))
			if f.settings.AddVignetting {
				mult = 1 / mult
			}

			i := src.Index(x, y)
			for c := range 3 {
				dst.SetSample(i+c, raster.ClampSample(float64(src.Sample(i+c))*mult, maxVal))
			}
			if ch == 4 {
				dst.SetSample(i+3, src.Sample(i+3))
			}
		}
	})
	if err != nil {
		log.Debug("filter: vignetting cancelled")
		return dst, err
	}

	p.done()
	log.Debug("filter: vignetting done", "elapsed", time.Since(start))
	return dst, nil
}
