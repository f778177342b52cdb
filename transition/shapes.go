package transition

import "math"

// Shape effects: each step copies the out image through the anti-aliased
// coverage of a polygon or ellipse.

// circleState sweeps one wedge clockwise from three o'clock.
type circleState struct {
	cx, cy int
	radius float64
	alpha  float64
	delta  float64
	x, y   int
}

func (s *circleState) init(c *canvas) {
	w, h := c.width(), c.height()
	s.cx, s.cy = w/2, h/2
	s.x, s.y = w, h/2
	s.alpha = 2 * math.Pi
	s.delta = math.Pi / 16
	s.radius = math.Hypot(float64(w), float64(h)) / 2
}

func (s *circleState) step(c *canvas) int {
	if s.alpha < 0 {
		return -1
	}
	px, py := s.x, s.y
	s.x = s.cx + int(s.radius*math.Cos(s.alpha))
	s.y = s.cy + int(s.radius*math.Sin(s.alpha))
	s.alpha -= s.delta

	center := point{float64(s.cx), float64(s.cy)}
	c.fillPolygon(c.out, []point{
		center,
		{float64(px), float64(py)},
		{float64(s.x), float64(s.y)},
	})
	return 20
}

// multiCircleState sweeps 2 to 16 evenly spaced wedges at once.
type multiCircleState struct {
	cx, cy int
	radius float64
	wedges int
	spread float64
	alpha  float64
	delta  float64
	wait   int
}

func (s *multiCircleState) init(c *canvas) {
	w, h := c.width(), c.height()
	s.cx, s.cy = w/2, h/2
	s.radius = math.Hypot(float64(w), float64(h)) / 2
	s.wedges = c.rng.IntN(15) + 2
	s.spread = 2 * math.Pi / float64(s.wedges)
	s.alpha = s.spread
	s.wait = 10 * s.wedges
	s.delta = math.Pi / 32
}

func (s *multiCircleState) step(c *canvas) int {
	if s.alpha < 0 {
		return -1
	}
	center := point{float64(s.cx), float64(s.cy)}
	alpha := s.alpha
	for range s.wedges + 1 {
		x := s.cx + int(s.radius*math.Cos(-alpha))
		y := s.cy + int(s.radius*math.Sin(-alpha))
		nx := s.cx + int(s.radius*math.Cos(-alpha+s.delta))
		ny := s.cy + int(s.radius*math.Sin(-alpha+s.delta))
		c.fillPolygon(c.out, []point{
			center,
			{float64(x), float64(y)},
			{float64(nx), float64(ny)},
		})
		alpha += s.spread
	}
	s.alpha -= s.delta
	return s.wait
}

// stamp shapes.
const (
	shapeSquare = iota
	shapeDisk
)

// stampIterations is the fixed number of stamps per run.
const stampIterations = 150

// stampState stamps randomly placed squares (tilted up to ±10°) or disks
// of the out image. It stops after a fixed number of stamps; the final
// frame is completed by the engine.
type stampState struct {
	shape int
	left  int
}

func (s *stampState) init(*canvas) { s.left = stampIterations }

func (s *stampState) step(c *canvas) int {
	if s.left <= 0 {
		return -1
	}
	s.left--

	x := float64(c.rng.IntN(c.width()))
	y := float64(c.rng.IntN(c.height()))
	if s.shape == shapeDisk {
		r := float64(c.rng.IntN(200) + 50)
		c.fillEllipse(c.out, x-r, y-r, r, r)
		return 10
	}

	r := float64(c.rng.IntN(100) + 100)
	angle := float64(c.rng.IntN(20)-10) * math.Pi / 180
	c.fillPolygon(c.out, rotatedSquare(x-r, y-r, r, angle))
	return 10
}

// rotatedSquare returns the corners of the square (x, y, size, size)
// rotated by angle radians about its center.
func rotatedSquare(x, y, size, angle float64) []point {
	half := size / 2
	cx, cy := x+half, y+half
	sin, cos := math.Sincos(angle)
	corners := [4]point{{-half, -half}, {half, -half}, {half, half}, {-half, half}}
	pts := make([]point, 4)
	for i, p := range corners {
		pts[i] = point{cx + p.x*cos - p.y*sin, cy + p.x*sin + p.y*cos}
	}
	return pts
}
