package transition

// Rectangle reveal effects: each step copies axis-aligned regions of the
// out image into the frame.

// noneState completes at once.
type noneState struct{}

func (*noneState) init(*canvas)     {}
func (*noneState) step(*canvas) int { return -1 }

// chessState moves two checkered tile columns in from both sides.
type chessState struct {
	w, h   int
	dx, dy int
	x, ix  int
	y, iy  int
	wait   int
}

func (s *chessState) init(c *canvas) {
	s.w, s.h = c.width(), c.height()
	s.dx, s.dy = 8, 8
	tiles := (s.w + s.dx - 1) / s.dx
	s.x = tiles * s.dx
	s.ix = 0
	s.iy = 0
	if tiles&1 == 0 {
		s.y = s.dy
	}
	s.wait = max(800/tiles, 1)
}

func (s *chessState) step(c *canvas) int {
	if s.ix >= s.w {
		return -1
	}
	s.ix += s.dx
	s.x -= s.dx
	s.iy = s.dy - s.iy
	s.y = s.dy - s.y

	for y := 0; y < s.h; y += 2 * s.dy {
		c.fillRect(c.out, s.ix, y+s.iy, s.dx, s.dy)
		c.fillRect(c.out, s.x, y+s.y, s.dx, s.dy)
	}
	return s.wait
}

// meltState drips columns of the out image down at random rates.
type meltState struct {
	dx, dy int
	h      int
	drops  []int
}

func (s *meltState) init(c *canvas) {
	s.dx, s.dy = 4, 16
	s.h = c.height()
	s.drops = make([]int, c.width()/s.dx)
}

func (s *meltState) step(c *canvas) int {
	done := true
	for i, y := range s.drops {
		if y >= s.h {
			continue
		}
		done = false
		// Columns skip a step with probability 6/16.
		if c.rng.IntN(16) < 6 {
			continue
		}
		c.fillRect(c.out, i*s.dx, y, s.dx, s.dy)
		s.drops[i] += s.dy
	}
	if done {
		return -1
	}
	return 15
}

// sweep directions, in the order the random pick uses.
const (
	sweepRightToLeft = iota
	sweepLeftToRight
	sweepBottomToTop
	sweepTopToBottom
)

// sweepMargin is how far past the far edge the band travels.
const sweepMargin = 64

// sweepState passes a band of four widening strips across the canvas.
type sweepState struct {
	dir    int
	w, h   int
	dx, dy int
	x, y   int
}

func (s *sweepState) init(c *canvas) {
	s.dir = c.rng.IntN(4)
	s.w, s.h = c.width(), c.height()
	s.dx, s.dy = -16, -16
	s.x, s.y = s.w, s.h
	if s.dir == sweepLeftToRight {
		s.dx, s.x = 16, 0
	}
	if s.dir == sweepTopToBottom {
		s.dy, s.y = 16, 0
	}
}

func (s *sweepState) step(c *canvas) int {
	if s.dir == sweepRightToLeft || s.dir == sweepLeftToRight {
		if (s.dir == sweepRightToLeft && s.x < -sweepMargin) || (s.dir == sweepLeftToRight && s.x > s.w+sweepMargin) {
			return -1
		}
		for i, w, x := 0, 2, s.x; i < 4; i, w, x = i+1, w<<1, x-s.dx {
			c.fillRect(c.out, x, 0, w, s.h)
		}
		s.x += s.dx
		return 20
	}

	if (s.dir == sweepBottomToTop && s.y < -sweepMargin) || (s.dir == sweepTopToBottom && s.y > s.h+sweepMargin) {
		return -1
	}
	for i, h, y := 0, 2, s.y; i < 4; i, h, y = i+1, h<<1, y-s.dy {
		c.fillRect(c.out, 0, y, s.w, h)
	}
	s.y += s.dy
	return 20
}

// Mosaic cell geometry.
const (
	mosaicCell       = 10
	mosaicMargin     = mosaicCell + mosaicCell/4
	mosaicIterations = 30
)

// mosaicState reveals randomly spaced cells, tracking covered pixels so
// cells are not stamped twice. It stops after a fixed number of passes.
type mosaicState struct {
	left    int
	w, h    int
	covered []bool
}

func (s *mosaicState) init(c *canvas) {
	s.left = mosaicIterations
	s.w, s.h = c.width(), c.height()
	s.covered = make([]bool, s.w*s.h)
}

func (s *mosaicState) step(c *canvas) int {
	if s.left <= 0 {
		return -1
	}
	for x := 0; x < s.w; x += c.rng.IntN(mosaicMargin) + mosaicCell {
		for y := 0; y < s.h; y += c.rng.IntN(mosaicMargin) + mosaicCell {
			if s.covered[y*s.w+x] {
				// Nudge the next cell up so gaps close over time.
				if y != 0 {
					y--
				}
				continue
			}
			c.fillRect(c.out, x, y, mosaicCell, mosaicCell)
			for j := y; j < min(y+mosaicCell, s.h); j++ {
				for i := x; i < min(x+mosaicCell, s.w); i++ {
					s.covered[j*s.w+i] = true
				}
			}
		}
	}
	s.left--
	return 20
}

// growState grows a centered rectangle to the canvas edges.
type growState struct {
	w, h   int
	i      int
	fx, fy float64
}

func (s *growState) init(c *canvas) {
	s.w, s.h = c.width(), c.height()
	s.i = 0
	s.fx = float64(max(s.w/2, 1)) / 100
	s.fy = float64(max(s.h/2, 1)) / 100
}

func (s *growState) step(c *canvas) int {
	x := s.w/2 - int(float64(s.i)*s.fx)
	y := s.h/2 - int(float64(s.i)*s.fy)
	s.i++
	if x < 0 || y < 0 {
		return -1
	}
	c.fillRect(c.out, x, y, s.w-2*x, s.h-2*y)
	return 20
}

// lineOffsets is the interleave order of the lines effects.
var lineOffsets = [...]int{0, 4, 2, 6, 1, 5, 3, 7}

// linesState reveals every eighth row (or column) per step.
type linesState struct {
	vertical bool
	i        int
}

func (s *linesState) init(*canvas) { s.i = 0 }

func (s *linesState) step(c *canvas) int {
	if s.i >= len(lineOffsets) {
		return -1
	}
	if s.vertical {
		for x := lineOffsets[s.i]; x < c.width(); x += 8 {
			c.fillRect(c.out, x, 0, 1, c.height())
		}
	} else {
		for y := lineOffsets[s.i]; y < c.height(); y += 8 {
			c.fillRect(c.out, 0, y, c.width(), 1)
		}
	}
	s.i++
	if s.i < len(lineOffsets) {
		return 160
	}
	return -1
}

// spiral legs.
const (
	spiralRight = iota
	spiralDown
	spiralLeft
	spiralUp
)

// spiralState fills blocks of one eighth of the canvas along an inward
// clockwise spiral.
type spiralState struct {
	ix, iy int
	x0, x1 int
	y0, y1 int
	x, y   int
	dx, dy int
	leg    int
	left   int
}

func (s *spiralState) init(c *canvas) {
	w, h := c.width(), c.height()
	s.ix, s.iy = max(w/8, 1), max(h/8, 1)
	s.x0, s.x1 = 0, w-s.ix
	s.y0, s.y1 = s.iy, h-s.iy
	s.dx, s.dy = s.ix, 0
	s.x, s.y = 0, 0
	s.leg = spiralRight
	// Bound the walk in case a degenerate size never closes the spiral.
	s.left = 4 * (w/s.ix + 2) * (h/s.iy + 2)
}

func (s *spiralState) step(c *canvas) int {
	if (s.leg == spiralRight && s.x0 >= s.x1) || s.left <= 0 {
		return -1
	}

	switch {
	case s.leg == spiralRight && s.x >= s.x1:
		s.leg, s.dx, s.dy = spiralDown, 0, s.iy
		s.x1 -= s.ix
	case s.leg == spiralDown && s.y >= s.y1:
		s.leg, s.dx, s.dy = spiralLeft, -s.ix, 0
		s.y1 -= s.iy
	case s.leg == spiralLeft && s.x <= s.x0:
		s.leg, s.dx, s.dy = spiralUp, 0, -s.iy
		s.x0 += s.ix
	case s.leg == spiralUp && s.y <= s.y0:
		s.leg, s.dx, s.dy = spiralRight, s.ix, 0
		s.y0 += s.iy
	}

	c.fillRect(c.out, s.x, s.y, s.ix, s.iy)
	s.x += s.dx
	s.y += s.dy
	s.left--
	return 8
}
