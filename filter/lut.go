package filter

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/photofx/raster"
)

// ErrInvalidLUT is returned when an image does not hold a recognised
// LUT layout.
var ErrInvalidLUT = errors.New("filter: invalid LUT layout")

// LUTTable is an immutable N×N×N lattice of 16-bit RGB triples.
// Red varies fastest, then green, then blue.
//
// LUTTable is safe for concurrent read-only use by any number of filters.
type LUTTable struct {
	size int
	data []uint16
}

// IdentityLUT returns the lattice that maps every color to itself.
func IdentityLUT(n int) (*LUTTable, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidLUT, n)
	}
	t := &LUTTable{size: n, data: make([]uint16, n*n*n*3)}
	step := 65535 / float64(n-1)
	for b := range n {
		for g := range n {
			for r := range n {
				i := t.offset(r, g, b)
				t.data[i] = uint16(math.Round(float64(r) * step))
				t.data[i+1] = uint16(math.Round(float64(g) * step))
				t.data[i+2] = uint16(math.Round(float64(b) * step))
			}
		}
	}
	return t, nil
}

// Size returns the lattice size N.
func (t *LUTTable) Size() int { return t.size }

// At returns the 16-bit triple stored at lattice point (r, g, b).
func (t *LUTTable) At(r, g, b int) (uint16, uint16, uint16) {
	i := t.offset(r, g, b)
	return t.data[i], t.data[i+1], t.data[i+2]
}

func (t *LUTTable) offset(r, g, b int) int {
	return ((b*t.size+g)*t.size + r) * 3
}

// Lookup maps a color with channels in [0, 1] through the lattice with
// tetrahedral interpolation. The result is in 16-bit units.
func (t *LUTTable) Lookup(r, g, b float64) (float64, float64, float64) {
	n := t.size
	scale := float64(n - 1)
	rPos := raster.Clamp(r, 0, 1) * scale
	gPos := raster.Clamp(g, 0, 1) * scale
	bPos := raster.Clamp(b, 0, 1) * scale

	ri := min(int(rPos), n-2)
	gi := min(int(gPos), n-2)
	bi := min(int(bPos), n-2)

	fr := rPos - float64(ri)
	fg := gPos - float64(gi)
	fb := bPos - float64(bi)

	const rs = 3
	gs := n * rs
	bs := n * gs
	base := t.offset(ri, gi, bi)

	c000 := base
	c100 := base + rs
	c010 := base + gs
	c110 := base + gs + rs
	c001 := base + bs
	c101 := base + bs + rs
	c011 := base + bs + gs
	c111 := base + bs + gs + rs

	// Select the tetrahedron by the ordering of the fractional parts.
	var w0, w1, w2, w3 float64
	var p1, p2 int
	switch {
	case fr > fg && fg > fb:
		w0, w1, w2, w3 = 1-fr, fr-fg, fg-fb, fb
		p1, p2 = c100, c110
	case fr > fg && fr > fb:
		w0, w1, w2, w3 = 1-fr, fr-fb, fb-fg, fg
		p1, p2 = c100, c101
	case fr > fg:
		w0, w1, w2, w3 = 1-fb, fb-fr, fr-fg, fg
		p1, p2 = c001, c101
	case fr > fb:
		w0, w1, w2, w3 = 1-fg, fg-fr, fr-fb, fb
		p1, p2 = c010, c110
	case fg > fb:
		w0, w1, w2, w3 = 1-fg, fg-fb, fb-fr, fr
		p1, p2 = c010, c011
	default:
		w0, w1, w2, w3 = 1-fb, fb-fg, fg-fr, fr
		p1, p2 = c001, c011
	}

	var out [3]float64
	for c := range 3 {
		out[c] = w0*float64(t.data[c000+c]) +
			w1*float64(t.data[p1+c]) +
			w2*float64(t.data[p2+c]) +
			w3*float64(t.data[c111+c])
	}
	return out[0], out[1], out[2]
}

// NewLUTTableFromImage reads a lattice from one of the recognised layouts:
//
//   - square HALD image of side w: N = round(cbrt(w)²), w divisible by N
//     and w×h = N³; lattice points follow each other in row-major order;
//   - wide strip of N×N cells side by side (w = h², N = h): cell b holds
//     red along x and green along y;
//   - tall strip of N×N cells stacked (h = w², N = w).
//
// Anything else returns ErrInvalidLUT.
func NewLUTTableFromImage(img *raster.Image) (*LUTTable, error) {
	if img.IsEmpty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidLUT)
	}
	w, h := img.Width(), img.Height()

	var n int
	var locate func(r, g, b int) (x, y int)
	switch {
	case w == h:
		n = int(math.Round(math.Pow(math.Cbrt(float64(w)), 2)))
		if n < 2 || w%n != 0 || w*h != n*n*n {
			return nil, fmt.Errorf("%w: %dx%d is not a HALD image", ErrInvalidLUT, w, h)
		}
		locate = func(r, g, b int) (int, int) {
			i := (b*n+g)*n + r
			return i % w, i / w
		}
	case w == h*h:
		n = h
		locate = func(r, g, b int) (int, int) { return b*n + r, g }
	case h == w*w:
		n = w
		locate = func(r, g, b int) (int, int) { return r, b*n + g }
	default:
		return nil, fmt.Errorf("%w: unsupported size %dx%d", ErrInvalidLUT, w, h)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidLUT, n)
	}

	// 8-bit tables are widened to 16-bit lattice values.
	scale := 65535 / img.Max()
	t := &LUTTable{size: n, data: make([]uint16, n*n*n*3)}
	for b := range n {
		for g := range n {
			for r := range n {
				x, y := locate(r, g, b)
				c0, c1, c2, _ := img.At(x, y)
				i := t.offset(r, g, b)
				t.data[i] = uint16(c0 * scale)
				t.data[i+1] = uint16(c1 * scale)
				t.data[i+2] = uint16(c2 * scale)
			}
		}
	}
	return t, nil
}

// Image renders the table as a 16-bit wide strip (N² × N) that
// NewLUTTableFromImage reads back unchanged.
func (t *LUTTable) Image() *raster.Image {
	n := t.size
	img, _ := raster.New(n*n, n, 3, raster.Depth16)
	for b := range n {
		for g := range n {
			for r := range n {
				c0, c1, c2 := t.At(r, g, b)
				img.Set(b*n+r, g, int(c0), int(c1), int(c2), 0)
			}
		}
	}
	return img
}

// LoadLUT decodes an image from r and reads a lattice from it.
func LoadLUT(r io.Reader) (*LUTTable, error) {
	img, err := raster.Decode(r, raster.Depth16)
	if err != nil {
		return nil, fmt.Errorf("filter: load LUT: %w", err)
	}
	return NewLUTTableFromImage(img)
}

// LoadLUTFile reads a lattice from an image file.
func LoadLUTFile(path string) (*LUTTable, error) {
	img, err := raster.DecodeFile(path, raster.Depth16)
	if err != nil {
		return nil, fmt.Errorf("filter: load LUT: %w", err)
	}
	return NewLUTTableFromImage(img)
}
