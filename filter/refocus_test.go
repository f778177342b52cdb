package filter

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/photofx/raster"
)

func TestRefocusKernel(t *testing.T) {
	tests := []struct {
		name     string
		settings RefocusSettings
		side     int
	}{
		{"default", DefaultRefocusSettings(), 11},
		{"gauss", RefocusSettings{MatrixSize: 3, Radius: 0, Gauss: 0.5, Correlation: 0.5, Noise: 0.01}, 7},
		{"clamped", RefocusSettings{MatrixSize: -2, Radius: 1, Correlation: 0.5, Noise: 0.01}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := RefocusKernel(context.Background(), tt.settings)
			if err != nil {
				t.Fatalf("RefocusKernel() error = %v", err)
			}
			if len(k) != tt.side*tt.side {
				t.Fatalf("len(kernel) = %d, want %d", len(k), tt.side*tt.side)
			}
			var sum float64
			for _, v := range k {
				sum += v
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("kernel sum = %v, want 1", sum)
			}

			// The kernel is symmetric under 180° rotation.
			n := len(k)
			for i := range n / 2 {
				if math.Abs(k[i]-k[n-1-i]) > 1e-9 {
					t.Fatalf("kernel[%d] = %v, kernel[%d] = %v, want equal", i, k[i], n-1-i, k[n-1-i])
				}
			}
		})
	}
}

func TestRefocusSharpens(t *testing.T) {
	k, err := RefocusKernel(context.Background(), DefaultRefocusSettings())
	if err != nil {
		t.Fatalf("RefocusKernel() error = %v", err)
	}
	center := k[len(k)/2]
	if center <= 1 {
		t.Errorf("center weight = %v, want > 1 for a sharpening kernel", center)
	}
}

func TestRefocusUniform(t *testing.T) {
	for _, depth := range []raster.Depth{raster.Depth8, raster.Depth16} {
		t.Run(depth.String(), func(t *testing.T) {
			v := depth.Max() / 3
			src := newTestImage(t, 17, 13, 4, depth, solid(v, v, v, depth.Max()))

			out, err := RefocusImage(context.Background(), src, DefaultRefocusSettings(), nil)
			if err != nil {
				t.Fatalf("RefocusImage() error = %v", err)
			}
			if out.Width() != 17 || out.Height() != 13 {
				t.Fatalf("size = %dx%d, want 17x13", out.Width(), out.Height())
			}
			if !out.Equal(src) {
				t.Error("refocus of a uniform image changed pixels")
			}
		})
	}
}

// TestRefocusCancellation cancels a run after the tenth output row and
// checks the rows written so far.
func TestRefocusCancellation(t *testing.T) {
	src := newTestImage(t, 100, 100, 3, raster.Depth8, gradient(255))
	s := DefaultRefocusSettings()
	s.MatrixSize = 5

	full, err := NewRefocusFilter(src, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	partial, err := NewRefocusFilter(src, s).Run(ctx, func(p int) {
		if p >= 10 {
			cancel()
		}
	})
	if StatusOf(err) != StatusCancelled {
		t.Fatalf("StatusOf(Run()) = %v, want Cancelled", StatusOf(err))
	}
	if partial == nil {
		t.Fatal("Run() returned no partial destination")
	}

	for y := range 10 {
		for x := range 100 {
			r0, g0, b0, _ := full.At(x, y)
			r1, g1, b1, _ := partial.At(x, y)
			if r0 != r1 || g0 != g1 || b0 != b1 {
				t.Fatalf("row %d pixel %d = (%d,%d,%d), want (%d,%d,%d)", y, x, r1, g1, b1, r0, g0, b0)
			}
		}
	}

	// The row after the cut was never written.
	blank := true
	for x := range 100 {
		if r, g, b, _ := partial.At(x, 11); r|g|b != 0 {
			blank = false
			break
		}
	}
	if !blank {
		t.Error("row 11 written after cancellation")
	}
}

func TestRefocusPadding(t *testing.T) {
	s := DefaultRefocusSettings()
	if got := s.Padding(); got != 10 {
		t.Errorf("Padding() = %d, want 10", got)
	}
	s.MatrixSize = 100
	if got := s.Padding(); got != 2*MaxRefocusMatrixSize {
		t.Errorf("Padding() = %d, want %d", got, 2*MaxRefocusMatrixSize)
	}
}

func TestSolve(t *testing.T) {
	a := [][]float64{
		{2, 1, -1},
		{-3, -1, 2},
		{-2, 1, 2},
	}
	b := []float64{8, -11, -3}
	x, err := solve(context.Background(), a, b)
	if err != nil {
		t.Fatalf("solve() error = %v", err)
	}
	want := []float64{2, 3, -1}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-9 {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}

	if _, err := solve(context.Background(), [][]float64{{1, 2}, {2, 4}}, []float64{1, 2}); err == nil {
		t.Error("solve(singular) error = nil, want error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := solve(ctx, [][]float64{{1}}, []float64{1}); !errors.Is(err, ErrCancelled) {
		t.Errorf("solve(cancelled) error = %v, want ErrCancelled", err)
	}
}

// fullDeconvolution solves the unreduced (2m+1)² system directly.
func fullDeconvolution(t *testing.T, h kernel, correlation, noise float64) kernel {
	t.Helper()
	m, side := h.m, h.side()
	n := side * side
	a := make([][]float64, n)
	rhs := make([]float64, n)
	for p := range n {
		px, py := p%side-m, p/side-m
		a[p] = make([]float64, n)
		for q := range n {
			qx, qy := q%side-m, q/side-m
			var auto float64
			for y := -m; y <= m; y++ {
				for x := -m; x <= m; x++ {
					auto += h.at(x, y) * h.at(x+px-qx, y+py-qy)
				}
			}
			c := math.Pow(correlation, float64(abs(px-qx)+abs(py-qy)))
			a[p][q] = auto + noise*c
		}
		rhs[p] = h.at(-px, -py)
	}
	sol, err := solve(context.Background(), a, rhs)
	if err != nil {
		t.Fatalf("solve() error = %v", err)
	}
	g := kernel{m: m, data: sol}
	g.normalize()
	return g
}

func TestDeconvolutionMatchesFullSystem(t *testing.T) {
	tests := []struct {
		name     string
		settings RefocusSettings
	}{
		{"disk", RefocusSettings{MatrixSize: 2, Radius: 1.3, Correlation: 0.5, Noise: 0.01}},
		{"gauss", RefocusSettings{MatrixSize: 3, Gauss: 0.4, Correlation: 0.3, Noise: 0.05}},
		{"both", RefocusSettings{MatrixSize: 3, Radius: 1, Gauss: 0.2, Correlation: 0.7, Noise: 0.02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.settings
			m := s.matrixSize()
			blur := convolve(circleKernel(s.Radius, m), gaussianKernel(s.Gauss, m))

			got, err := deconvolutionKernel(context.Background(), blur, s.Correlation, s.Noise)
			if err != nil {
				t.Fatalf("deconvolutionKernel() error = %v", err)
			}
			want := fullDeconvolution(t, blur, s.Correlation, s.Noise)
			for i := range want.data {
				if math.Abs(got.data[i]-want.data[i]) > 1e-9 {
					t.Fatalf("kernel[%d] = %v, want %v", i, got.data[i], want.data[i])
				}
			}
		})
	}
}

func TestRefocusKernelSymmetry(t *testing.T) {
	s := DefaultRefocusSettings()
	s.MatrixSize = 4
	s.Gauss = 0.3
	data, err := RefocusKernel(context.Background(), s)
	if err != nil {
		t.Fatalf("RefocusKernel() error = %v", err)
	}
	k := kernel{m: 4, data: data}
	for y := -4; y <= 4; y++ {
		for x := -4; x <= 4; x++ {
			v := k.at(x, y)
			for _, o := range [][2]int{{-x, y}, {x, -y}, {y, x}, {-y, -x}} {
				if got := k.at(o[0], o[1]); got != v {
					t.Fatalf("kernel(%d,%d) = %v, kernel(%d,%d) = %v, want equal", o[0], o[1], got, x, y, v)
				}
			}
		}
	}
}

func TestSymmetricIndex(t *testing.T) {
	const m = 5
	seen := make(map[int]bool)
	for y := 0; y <= m; y++ {
		for x := y; x <= m; x++ {
			i := symmetricIndex(x, y)
			if i < 0 || i >= symmetricCells(m) {
				t.Fatalf("symmetricIndex(%d, %d) = %d, want in [0, %d)", x, y, i, symmetricCells(m))
			}
			if seen[i] {
				t.Fatalf("symmetricIndex(%d, %d) = %d repeats", x, y, i)
			}
			seen[i] = true
			if symmetricIndex(-y, -x) != i {
				t.Errorf("symmetricIndex(%d, %d) != symmetricIndex(%d, %d)", -y, -x, x, y)
			}
		}
	}
	if len(seen) != symmetricCells(m) {
		t.Errorf("%d cells, want %d", len(seen), symmetricCells(m))
	}
}

func TestRefocusKernelMaxSize(t *testing.T) {
	s := DefaultRefocusSettings()
	s.MatrixSize = MaxRefocusMatrixSize
	k, err := RefocusKernel(context.Background(), s)
	if err != nil {
		t.Fatalf("RefocusKernel() error = %v", err)
	}
	side := 2*MaxRefocusMatrixSize + 1
	if len(k) != side*side {
		t.Fatalf("len(kernel) = %d, want %d", len(k), side*side)
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("kernel sum = %v, want 1", sum)
	}
}

func TestRefocusCancelledDuringKernel(t *testing.T) {
	src := newTestImage(t, 20, 20, 3, raster.Depth8, gradient(255))
	s := DefaultRefocusSettings()
	s.MatrixSize = MaxRefocusMatrixSize

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	out, err := NewRefocusFilter(src, s).Run(ctx, nil)
	if StatusOf(err) != StatusCancelled {
		t.Fatalf("StatusOf(Run()) = %v, want Cancelled", StatusOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if out == nil || !out.SameShape(src) {
		t.Error("Run() did not return a destination of the source shape")
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("cancelled run took %v", d)
	}

	if _, err := RefocusKernel(ctx, s); !errors.Is(err, ErrCancelled) {
		t.Errorf("RefocusKernel(cancelled) error = %v, want ErrCancelled", err)
	}
}

// varyingAlpha fills color with a gradient and alpha with a pattern that
// differs between neighbors.
func varyingAlpha(x, y int) (int, int, int, int) {
	return (x * 13) % 256, (y * 29) % 256, (x + y) % 256, (x*37 + y*11) % 256
}

func TestRefocusPreservesAlpha(t *testing.T) {
	src := newTestImage(t, 23, 19, 4, raster.Depth8, varyingAlpha)
	s := DefaultRefocusSettings()
	s.MatrixSize = 3
	s.Radius = 1.5

	padded := raster.PadMirror(src, s.Padding())
	out, err := NewRefocusFilter(padded, s).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for y := range padded.Height() {
		for x := range padded.Width() {
			_, _, _, want := padded.At(x, y)
			if _, _, _, got := out.At(x, y); got != want {
				t.Fatalf("Run() alpha at (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}

	cropped, err := RefocusImage(context.Background(), src, s, nil)
	if err != nil {
		t.Fatalf("RefocusImage() error = %v", err)
	}
	changed := false
	for y := range src.Height() {
		for x := range src.Width() {
			r0, _, _, want := src.At(x, y)
			r1, _, _, got := cropped.At(x, y)
			if got != want {
				t.Fatalf("RefocusImage() alpha at (%d,%d) = %d, want %d", x, y, got, want)
			}
			changed = changed || r0 != r1
		}
	}
	if !changed {
		t.Error("RefocusImage() left every color sample unchanged")
	}
}

func BenchmarkRefocus(b *testing.B) {
	src := newTestImage(b, 128, 128, 3, raster.Depth8, gradient(255))
	f := NewRefocusFilter(src, DefaultRefocusSettings())
	ctx := context.Background()
	for b.Loop() {
		_, _ = f.Run(ctx, nil)
	}
}
