package transition

import "image"

// Whole-frame effects: every step recomposes the full frame from the two
// endpoint images.

// fadeSteps is the number of cross-dissolve steps (opacity step 0.05).
const fadeSteps = 20

// fadeState lowers the opacity of the in image over the out image.
type fadeState struct {
	k int
}

func (s *fadeState) init(*canvas) { s.k = 0 }

func (s *fadeState) step(c *canvas) int {
	s.k++
	if s.k >= fadeSteps {
		return -1
	}
	c.mixImages(c.out, c.in, 1-float64(s.k)/fadeSteps)
	return 15
}

// slide modes.
const (
	slide = iota // in moves off, out fixed underneath
	push         // in and out move together
	swap         // out moves in, in fixed underneath
)

// direction of motion.
type direction struct {
	dx, dy int
}

var (
	leftToRight = direction{1, 0}
	rightToLeft = direction{-1, 0}
	topToBottom = direction{0, 1}
	bottomToTop = direction{0, -1}
)

// slideSteps divides the travel distance into steps.
const slideSteps = 25

// slideState moves whole images across the canvas by canvas-size/25
// pixels per step.
type slideState struct {
	mode   int
	dir    direction
	size   int
	delta  int
	offset int
}

func (s *slideState) init(c *canvas) {
	s.size = c.width()
	if s.dir.dy != 0 {
		s.size = c.height()
	}
	s.delta = max(s.size/slideSteps, 1)
	s.offset = 0
}

func (s *slideState) step(c *canvas) int {
	s.offset += s.delta
	if s.offset >= s.size {
		return -1
	}

	at := func(off int) image.Point {
		return image.Pt(s.dir.dx*off, s.dir.dy*off)
	}
	bounds := c.frame.Bounds()
	switch s.mode {
	case slide:
		_ = c.frame.CopyFrom(c.out)
		c.frame.CopyRectTo(c.in, bounds, at(s.offset))
	case push:
		c.frame.CopyRectTo(c.in, bounds, at(s.offset))
		c.frame.CopyRectTo(c.out, bounds, at(s.offset-s.size))
	case swap:
		_ = c.frame.CopyFrom(c.in)
		c.frame.CopyRectTo(c.out, bounds, at(s.offset-s.size))
	}
	return 15
}

// Blur radius range, one pixel per step.
const (
	blurMinRadius = 1
	blurMaxRadius = 25
)

// blurState blurs the in image away (BlurOut) or sharpens a blurred out
// image (BlurIn).
type blurState struct {
	in     bool
	radius int
	blur   boxBlur
}

func (s *blurState) init(*canvas) {
	s.radius = blurMinRadius
	if s.in {
		s.radius = blurMaxRadius
	}
}

func (s *blurState) step(c *canvas) int {
	if s.radius < blurMinRadius || s.radius > blurMaxRadius {
		return -1
	}
	if s.in {
		s.blur.apply(c.frame, c.out, s.radius)
		s.radius--
	} else {
		s.blur.apply(c.frame, c.in, s.radius)
		s.radius++
	}
	return 15
}
