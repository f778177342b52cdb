package filter

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// MaxRefocusMatrixSize bounds RefocusSettings.MatrixSize. The kernel
// solve is cubic in (2m+1)².
const MaxRefocusMatrixSize = 25

// RefocusSettings configures the refocus filter.
type RefocusSettings struct {
	// MatrixSize is m; the convolution kernel spans (2m+1)×(2m+1) pixels.
	MatrixSize int

	// Radius is the radius of the disk blur to undo.
	Radius float64

	// Gauss is the gradient of the Gaussian blur to undo (0 disables it).
	Gauss float64

	// Correlation is the assumed noise correlation between neighbors.
	Correlation float64

	// Noise is the regularisation weight.
	Noise float64
}

// DefaultRefocusSettings returns the nominal settings.
func DefaultRefocusSettings() RefocusSettings {
	return RefocusSettings{
		MatrixSize:  5,
		Radius:      1.0,
		Gauss:       0.0,
		Correlation: 0.5,
		Noise:       0.01,
	}
}

// Action returns the action record of the settings.
func (s RefocusSettings) Action() Action {
	a := newAction(KindRefocus)
	a.Params.SetInt("matrixsize", s.MatrixSize)
	a.Params.SetFloat("radius", s.Radius)
	a.Params.SetFloat("gauss", s.Gauss)
	a.Params.SetFloat("correlation", s.Correlation)
	a.Params.SetFloat("noise", s.Noise)
	return a
}

// RefocusSettingsFromAction restores settings recorded by Action.
func RefocusSettingsFromAction(a Action) (RefocusSettings, error) {
	if err := a.check(KindRefocus); err != nil {
		return RefocusSettings{}, err
	}
	r := paramReader{p: a.Params}
	s := RefocusSettings{
		MatrixSize:  r.integer("matrixsize"),
		Radius:      r.number("radius"),
		Gauss:       r.number("gauss"),
		Correlation: r.number("correlation"),
		Noise:       r.number("noise"),
	}
	return s, r.err
}

// Padding returns the mirrored border width the source should carry.
func (s RefocusSettings) Padding() int {
	return 2 * s.matrixSize()
}

func (s RefocusSettings) matrixSize() int {
	return raster.Clamp(s.MatrixSize, 0, MaxRefocusMatrixSize)
}

// RefocusKernel returns the (2m+1)² deconvolution kernel, row-major,
// for the given settings. The solve polls ctx and fails with an error
// matching ErrCancelled once it is done.
func RefocusKernel(ctx context.Context, s RefocusSettings) ([]float64, error) {
	k, err := refocusKernel(ctx, s)
	if err != nil {
		return nil, err
	}
	return k.data, nil
}

func refocusKernel(ctx context.Context, s RefocusSettings) (kernel, error) {
	m := s.matrixSize()
	blur := convolve(circleKernel(s.Radius, m), gaussianKernel(s.Gauss, m))
	return deconvolutionKernel(ctx, blur, s.Correlation, s.Noise)
}

// RefocusFilter sharpens an image by deconvolving a disk and Gaussian blur.
//
// Precondition: the source should carry a mirrored border at least
// Padding() pixels wide on each side (see raster.PadMirror and
// RefocusImage). The filter reads neighbors through the flat sample
// buffer and only skips indices outside it, so without the border the
// outermost rows and columns mix in samples from adjacent rows. Alpha is
// copied.
type RefocusFilter struct {
	src      *raster.Image
	settings RefocusSettings
}

// NewRefocusFilter creates a refocus filter over src.
func NewRefocusFilter(src *raster.Image, s RefocusSettings) *RefocusFilter {
	return &RefocusFilter{src: src, settings: s}
}

// Kind returns KindRefocus.
func (f *RefocusFilter) Kind() Kind { return KindRefocus }

// Action returns the action record of the filter settings.
func (f *RefocusFilter) Action() Action { return f.settings.Action() }

// Run applies the filter.
func (f *RefocusFilter) Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(f.src); err != nil {
		return nil, err
	}
	log := photofx.Logger()
	src := f.src
	dst := raster.NewLike(src)

	k, err := refocusKernel(ctx, f.settings)
	if err != nil {
		if StatusOf(err) == StatusCancelled {
			log.Debug("filter: refocus cancelled in kernel solve")
			return dst, err
		}
		log.Warn("filter: refocus kernel failed", "err", err)
		return nil, fmt.Errorf("filter: refocus: %w", err)
	}

	w, h := src.Width(), src.Height()
	ch := src.Channels()
	maxVal := src.Max()
	m := k.m
	side := k.side()
	n := src.Len()

	log.Debug("filter: refocus start", "width", w, "height", h, "matrix", m)
	start := time.Now()

	p := newProgress(progress)
	err = runRows(ctx, h, p, 0, 100, func(y int) {
		for x := range w {
			var sum [3]float64
			for j := -m; j <= m; j++ {
				row := (y+j)*w + x
				for i := -m; i <= m; i++ {
					idx := (row + i) * ch
					if idx < 0 || idx+2 >= n {
						continue
					}
					wt := k.data[(j+m)*side+i+m]
					sum[0] += wt * float64(src.Sample(idx))
					sum[1] += wt * float64(src.Sample(idx+1))
					sum[2] += wt * float64(src.Sample(idx+2))
				}
			}

			o := src.Index(x, y)
			dst.SetSample(o, raster.ClampSample(sum[0], maxVal))
			dst.SetSample(o+1, raster.ClampSample(sum[1], maxVal))
			dst.SetSample(o+2, raster.ClampSample(sum[2], maxVal))
			if ch == 4 {
				dst.SetSample(o+3, src.Sample(o+3))
			}
		}
	})
	if err != nil {
		log.Debug("filter: refocus cancelled")
		return dst, err
	}

	p.done()
	log.Debug("filter: refocus done", "elapsed", time.Since(start))
	return dst, nil
}

// RefocusImage pads img with a mirrored border, refocuses it and crops the
// border away, so the result has the size of img.
func RefocusImage(ctx context.Context, img *raster.Image, s RefocusSettings, progress ProgressFunc) (*raster.Image, error) {
	if err := checkSource(img); err != nil {
		return nil, err
	}
	pad := s.Padding()
	padded := raster.PadMirror(img, pad)

	out, err := NewRefocusFilter(padded, s).Run(ctx, progress)
	if err != nil {
		return nil, err
	}
	return raster.Crop(out, image.Rect(pad, pad, pad+img.Width(), pad+img.Height()))
}
