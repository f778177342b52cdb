package filter

import (
	"context"
	"errors"
	"math"
)

// errSingular is returned when the deconvolution system has no unique
// solution.
var errSingular = errors.New("filter: singular deconvolution matrix")

// circleSubsamples is the per-axis supersampling used to integrate the
// disk area covering one kernel cell.
const circleSubsamples = 16

// kernel is a square (2m+1)×(2m+1) matrix indexed from -m to m.
type kernel struct {
	m    int
	data []float64
}

func newKernel(m int) kernel {
	side := 2*m + 1
	return kernel{m: m, data: make([]float64, side*side)}
}

func (k kernel) side() int { return 2*k.m + 1 }

// at returns the value at (x, y), or 0 outside the kernel.
func (k kernel) at(x, y int) float64 {
	if x < -k.m || x > k.m || y < -k.m || y > k.m {
		return 0
	}
	return k.data[(y+k.m)*k.side()+x+k.m]
}

func (k kernel) set(x, y int, v float64) {
	k.data[(y+k.m)*k.side()+x+k.m] = v
}

// normalize scales the kernel so its entries sum to 1.
func (k kernel) normalize() {
	var sum float64
	for _, v := range k.data {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range k.data {
		k.data[i] /= sum
	}
}

// delta returns the identity kernel.
func delta(m int) kernel {
	k := newKernel(m)
	k.set(0, 0, 1)
	return k
}

// circleKernel returns the normalized disk of the given radius, each cell
// holding the area of the disk inside it.
func circleKernel(radius float64, m int) kernel {
	if radius <= 0 {
		return delta(m)
	}
	k := newKernel(m)
	r2 := radius * radius
	step := 1.0 / circleSubsamples
	for y := -m; y <= m; y++ {
		for x := -m; x <= m; x++ {
			var inside int
			for sy := range circleSubsamples {
				py := float64(y) - 0.5 + (float64(sy)+0.5)*step
				for sx := range circleSubsamples {
					px := float64(x) - 0.5 + (float64(sx)+0.5)*step
					if px*px+py*py <= r2 {
						inside++
					}
				}
			}
			k.set(x, y, float64(inside))
		}
	}
	if k.at(0, 0) == 0 {
		// Radius smaller than one subsample.
		return delta(m)
	}
	k.normalize()
	return k
}

// gaussianKernel returns the normalized kernel exp(-gradient·(x²+y²)).
// A zero gradient yields the identity.
func gaussianKernel(gradient float64, m int) kernel {
	if gradient*gradient < math.SmallestNonzeroFloat32 {
		return delta(m)
	}
	k := newKernel(m)
	for y := -m; y <= m; y++ {
		for x := -m; x <= m; x++ {
			k.set(x, y, math.Exp(-gradient*float64(x*x+y*y)))
		}
	}
	k.normalize()
	return k
}

// convolve returns a ⊛ b truncated to the size of a.
func convolve(a, b kernel) kernel {
	m := a.m
	out := newKernel(m)
	for y := -m; y <= m; y++ {
		for x := -m; x <= m; x++ {
			var sum float64
			for j := -b.m; j <= b.m; j++ {
				for i := -b.m; i <= b.m; i++ {
					sum += b.at(i, j) * a.at(x-i, y-j)
				}
			}
			out.set(x, y, sum)
		}
	}
	out.normalize()
	return out
}

// deconvolutionKernel derives the kernel g that best inverts the blur h in
// the regularised least-squares sense:
//
//	(HᵀH + noise·C) g = Hᵀδ
//
// where H is the convolution by h and C[p][q] = correlation^(|dx|+|dy|)
// penalises correlated noise between cells p and q. The result is
// normalized to preserve mean brightness.
//
// h is symmetric under sign flips and the x/y swap, and so is the system,
// so g is solved only for the (m+1)(m+2)/2 cells with 0 <= y <= x <= m.
func deconvolutionKernel(ctx context.Context, h kernel, correlation, noise float64) (kernel, error) {
	m := h.m
	side := h.side()
	n := side * side

	// HᵀH[p][q] is the autocorrelation of h at offset p - q.
	auto := newKernel(2 * m)
	for dy := -2 * m; dy <= 2*m; dy++ {
		if err := ctx.Err(); err != nil {
			return kernel{}, cancelled(err)
		}
		for dx := -2 * m; dx <= 2*m; dx++ {
			var sum float64
			for y := max(-m, -m-dy); y <= min(m, m-dy); y++ {
				for x := max(-m, -m-dx); x <= min(m, m-dx); x++ {
					sum += h.at(x, y) * h.at(x+dx, y+dy)
				}
			}
			auto.set(dx, dy, sum)
		}
	}

	corr := make([]float64, 4*m+1)
	for d := range corr {
		corr[d] = math.Pow(correlation, float64(d))
	}

	cells := symmetricCells(m)
	a := make([][]float64, cells)
	rhs := make([]float64, cells)
	for py := 0; py <= m; py++ {
		for px := py; px <= m; px++ {
			row := make([]float64, cells)
			for q := range n {
				qx, qy := q%side-m, q/side-m
				row[symmetricIndex(qx, qy)] += auto.at(px-qx, py-qy) + noise*corr[abs(px-qx)+abs(py-qy)]
			}
			i := symmetricIndex(px, py)
			a[i] = row
			rhs[i] = h.at(-px, -py)
		}
	}

	sol, err := solve(ctx, a, rhs)
	if err != nil {
		return kernel{}, err
	}
	g := newKernel(m)
	for y := -m; y <= m; y++ {
		for x := -m; x <= m; x++ {
			g.set(x, y, sol[symmetricIndex(x, y)])
		}
	}
	g.normalize()
	return g, nil
}

// symmetricCells returns the number of kernel cells with 0 <= y <= x <= m.
func symmetricCells(m int) int {
	return (m + 1) * (m + 2) / 2
}

// symmetricIndex maps (x, y) to the index of its cell in the
// 0 <= y <= x region.
func symmetricIndex(x, y int) int {
	x, y = abs(x), abs(y)
	if y > x {
		x, y = y, x
	}
	return x*(x+1)/2 + y
}

// solve solves a·x = b by Gaussian elimination with partial pivoting,
// polling ctx once per pivot column. a and b are overwritten.
func solve(ctx context.Context, a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := range n {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, errSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			row, prow := a[r], a[col]
			for c := col; c < n; c++ {
				row[c] -= f * prow[c]
			}
			b[r] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
