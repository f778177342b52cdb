package transition

import (
	"github.com/gogpu/photofx/internal/blend"
	"github.com/gogpu/photofx/raster"
)

// boxBlur applies a separable (2r+1)×(2r+1) box blur.
// The separable algorithm processes horizontal and vertical passes
// independently with running sums, so the cost does not depend on r.
// Color is blurred premultiplied by alpha; edges are clamped.
type boxBlur struct {
	// buf and tmp hold premultiplied samples between the passes.
	buf []int
	tmp []int
}

// apply writes src blurred with radius r into dst. src and dst share a
// shape and may not alias. r <= 0 copies.
func (b *boxBlur) apply(dst, src *raster.Image, r int) {
	if r <= 0 {
		_ = dst.CopyFrom(src)
		return
	}

	w, h, ch := src.Width(), src.Height(), src.Channels()
	n := src.Len()
	maxVal := src.Max()
	b.buf = grow(b.buf, n)
	b.tmp = grow(b.tmp, n)

	for i := 0; i < n; i += ch {
		if ch == 4 {
			a := src.Sample(i + 3)
			for c := range 3 {
				b.buf[i+c] = blend.Premultiply(src.Sample(i+c), a, maxVal)
			}
			b.buf[i+3] = a
			continue
		}
		for c := range ch {
			b.buf[i+c] = src.Sample(i + c)
		}
	}

	// Pass 1: rows (buf -> tmp). Pass 2: columns (tmp -> buf).
	boxPass(b.buf, b.tmp, h, w, ch, w*ch, ch, r)
	boxPass(b.tmp, b.buf, w, h, w*ch, ch, ch, r)

	for i := 0; i < n; i += ch {
		if ch == 4 {
			a := b.buf[i+3]
			for c := range 3 {
				dst.SetSample(i+c, blend.Unpremultiply(b.buf[i+c], a, maxVal))
			}
			dst.SetSample(i+3, a)
			continue
		}
		for c := range ch {
			dst.SetSample(i+c, b.buf[i+c])
		}
	}
}

// boxPass averages every line of src over a window of 2r+1 samples.
// Line l starts at l*lineStride; consecutive samples of a line are step
// apart; each pixel holds ch interleaved channels.
func boxPass(src, dst []int, lines, length, step, lineStride, ch, r int) {
	span := 2*r + 1
	last := length - 1
	for l := range lines {
		base := l * lineStride
		for c := range ch {
			at := func(k int) int {
				return src[base+raster.Clamp(k, 0, last)*step+c]
			}

			sum := 0
			for k := -r; k <= r; k++ {
				sum += at(k)
			}
			for k := range length {
				dst[base+k*step+c] = (sum + span/2) / span
				sum += at(k+r+1) - at(k-r)
			}
		}
	}
}

func grow(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
