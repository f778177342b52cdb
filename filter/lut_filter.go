package filter

import (
	"context"
	"time"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// lutChunks is the number of pixel ranges a LUT run is split into for
// progress and cancellation.
const lutChunks = 10

// LUTSettings configures the 3D LUT filter.
type LUTSettings struct {
	// Path records where the table came from. The filter itself only uses
	// the table passed to NewLUTFilter; New loads it from Path.
	Path string

	// Intensity blends between the source (0) and the mapped color (100).
	Intensity int
}

// DefaultLUTSettings returns the nominal settings.
func DefaultLUTSettings() LUTSettings {
	return LUTSettings{Intensity: 100}
}

// Action returns the action record of the settings.
func (s LUTSettings) Action() Action {
	a := newAction(KindLUT)
	a.Params.SetString("path", s.Path)
	a.Params.SetInt("intensity", s.Intensity)
	return a
}

// LUTSettingsFromAction restores settings recorded by Action.
func LUTSettingsFromAction(a Action) (LUTSettings, error) {
	if err := a.check(KindLUT); err != nil {
		return LUTSettings{}, err
	}
	r := paramReader{p: a.Params}
	s := LUTSettings{
		Path:      r.text("path"),
		Intensity: r.integer("intensity"),
	}
	return s, r.err
}

// LUTFilter remaps colors through a 3D look-up table.
//
// Each pixel is mapped to lattice coordinates v×(N-1)/max, interpolated
// tetrahedrally, then blended with the original by Intensity percent.
// Alpha is copied. A nil table makes the filter a no-op copy.
//
// The scale is (N-1)/max, not (N-1)/(max+1): with the latter, max lands
// short of the last lattice point and an identity table would darken
// bright samples. With (N-1)/max, 0 and max hit the lattice corners and
// an identity table reproduces the source exactly at both depths.
type LUTFilter struct {
	src      *raster.Image
	table    *LUTTable
	settings LUTSettings
}

// NewLUTFilter creates a LUT filter over src. table may be shared with
// other filters.
func NewLUTFilter(src *raster.Image, table *LUTTable, s LUTSettings) *LUTFilter {
	return &LUTFilter{src: src, table: table, settings: s}
}

// Kind returns KindLUT.
func (f *LUTFilter) Kind() Kind { return KindLUT }

// Action returns the action record of the filter settings.
func (f *LUTFilter) Action() Action { return f.settings.Action() }

// Run applies the filter.
func (f *LUTFilter) Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(f.src); err != nil {
		return nil, err
	}
	src := f.src
	log := photofx.Logger()
	p := newProgress(progress)

	if f.table == nil {
		log.Warn("filter: LUT table missing, copying source", "path", f.settings.Path)
		p.done()
		return src.Clone(), nil
	}

	dst := raster.NewLike(src)
	maxVal := src.Max()
	fmaxVal := float64(maxVal)
	ch := src.Channels()
	intensity := float64(raster.Clamp(f.settings.Intensity, 0, 100))
	pixels := src.Width() * src.Height()
	chunk := (pixels + lutChunks - 1) / lutChunks

	log.Debug("filter: LUT start", "size", f.table.Size(), "intensity", intensity)
	start := time.Now()

	for k := range lutChunks {
		if err := ctx.Err(); err != nil {
			log.Debug("filter: LUT cancelled", "chunk", k)
			return dst, cancelled(err)
		}

		end := min((k+1)*chunk, pixels)
		for px := k * chunk; px < end; px++ {
			i := px * ch
			c0 := float64(src.Sample(i))
			c1 := float64(src.Sample(i + 1))
			c2 := float64(src.Sample(i + 2))

			m0, m1, m2 := f.table.Lookup(c0/fmaxVal, c1/fmaxVal, c2/fmaxVal)
			m0 = m0 * fmaxVal / 65535
			m1 = m1 * fmaxVal / 65535
			m2 = m2 * fmaxVal / 65535

			dst.SetSample(i, raster.ClampSample(((100-intensity)*c0+intensity*m0)/100, maxVal))
			dst.SetSample(i+1, raster.ClampSample(((100-intensity)*c1+intensity*m1)/100, maxVal))
			dst.SetSample(i+2, raster.ClampSample(((100-intensity)*c2+intensity*m2)/100, maxVal))
			if ch == 4 {
				dst.SetSample(i+3, src.Sample(i+3))
			}
		}
		p.report((k + 1) * 100 / lutChunks)
	}

	p.done()
	log.Debug("filter: LUT done", "elapsed", time.Since(start))
	return dst, nil
}
