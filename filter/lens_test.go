package filter

import (
	"context"
	"testing"

	"github.com/gogpu/photofx/raster"
)

func TestLensIdentity(t *testing.T) {
	for _, mode := range []raster.Interpolation{raster.Nearest, raster.Bilinear} {
		t.Run(mode.String(), func(t *testing.T) {
			src := newTestImage(t, 15, 10, 4, raster.Depth16, gradient(65535))
			s := DefaultLensSettings()
			s.Interpolation = mode

			out, err := NewLensFilter(src, s).Run(context.Background(), nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !out.Equal(src) {
				t.Error("identity lens changed pixels")
			}
		})
	}
}

func TestLensVignettingPass(t *testing.T) {
	src := newTestImage(t, 9, 9, 3, raster.Depth8, solid(100, 100, 100, 0))
	s := LensSettings{
		Vignetting: true,
		Lens:       PolynomialLens{K1: -0.5},
	}

	out, err := NewLensFilter(src, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r, _, _, _ := out.At(4, 4); r != 100 {
		t.Errorf("center = %d, want 100", r)
	}

	// Normalized unit is 4.5 pixels.
	nx := 4 / 4.5
	want := raster.ClampSample(100/(1-0.5*nx*nx), 255)
	if r, _, _, _ := out.At(8, 4); r != want {
		t.Errorf("edge = %d, want %d", r, want)
	}
	if r, _, _, _ := out.At(8, 8); r != 255 {
		t.Errorf("corner = %d, want 255", r)
	}

	// A falloff at or below zero leaves pixels untouched.
	s.Lens.K1 = -2
	out, err = NewLensFilter(src, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r, _, _, _ := out.At(8, 8); r != 100 {
		t.Errorf("corner with negative falloff = %d, want 100", r)
	}
}

func TestLensTCA(t *testing.T) {
	// A horizontal ramp in red; scaling red outward samples further from
	// the center, so right of center red grows.
	src := newTestImage(t, 21, 5, 3, raster.Depth8, func(x, _ int) (int, int, int, int) {
		return x * 10, 50, 50, 0
	})
	s := LensSettings{
		TCA:           true,
		Interpolation: raster.Nearest,
		Lens:          PolynomialLens{RedScale: 1.5, BlueScale: 1},
	}

	out, err := NewLensFilter(src, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	r, g, b, _ := out.At(12, 2)
	if r != 130 {
		t.Errorf("red = %d, want 130", r)
	}
	if g != 50 || b != 50 {
		t.Errorf("green, blue = %d, %d, want 50, 50", g, b)
	}
}

func TestLensGeometryOutside(t *testing.T) {
	src := newTestImage(t, 10, 10, 4, raster.Depth8, solid(90, 90, 90, 255))
	s := LensSettings{
		Distortion:    true,
		Interpolation: raster.Bilinear,
		// Pure barrel term pulls the corners from far outside the source.
		Lens: PolynomialLens{A: 0.5},
	}

	out, err := NewLensFilter(src, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, _, _, a := out.At(0, 0); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if r, _, _, a := out.At(5, 5); r != 90 || a != 255 {
		t.Errorf("center = (%d, alpha %d), want (90, alpha 255)", r, a)
	}
}

func TestLensCustomModel(t *testing.T) {
	src := newTestImage(t, 6, 6, 3, raster.Depth8, gradient(255))
	s := LensSettings{Vignetting: true}

	out, err := NewLensFilterWithModel(src, s, halfBright{}).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for y := range 6 {
		for x := range 6 {
			r0, _, _, _ := src.At(x, y)
			r1, _, _, _ := out.At(x, y)
			if want := raster.ClampSample(float64(r0)/2, 255); r1 != want {
				t.Fatalf("(%d,%d) red = %d, want %d", x, y, r1, want)
			}
		}
	}
}

// halfBright halves every color and leaves geometry alone.
type halfBright struct{}

func (halfBright) SubpixelDistortion(x, y float64) (rx, ry, gx, gy, bx, by float64) {
	return x, y, x, y, x, y
}

func (halfBright) ColorCorrection(float64, float64) float64 { return 0.5 }

func (halfBright) Geometry(x, y float64) (float64, float64) { return x, y }
