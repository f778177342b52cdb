// Package transition renders slideshow transitions between two images.
//
// An [Engine] is polled: every [Engine.CurrentFrame] call advances the
// selected effect by one step and returns the frame together with the
// delay, in milliseconds, the caller should wait before the next call.
// A delay of -1 marks the last frame, which always equals the out image.
//
//	e := transition.NewEngine()
//	_ = e.SetOutputSize(1920, 1080)
//	_ = e.SetInImage(prev)
//	_ = e.SetOutImage(next)
//	e.SetEffect(transition.Sweep)
//	for {
//	    frame, wait := e.CurrentFrame()
//	    show(frame)
//	    if wait < 0 {
//	        break
//	    }
//	    time.Sleep(time.Duration(wait) * time.Millisecond)
//	}
//
// The Engine is not safe for concurrent use; callers serialize all calls.
package transition

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// Common errors for engine setup.
var (
	// ErrNoCanvas is returned when images are set before SetOutputSize.
	ErrNoCanvas = errors.New("transition: output size not set")

	// ErrSizeMismatch is returned when an endpoint image does not match
	// the canvas size.
	ErrSizeMismatch = errors.New("transition: image size does not match canvas")

	// ErrFormatMismatch is returned when an endpoint image does not match
	// the canvas channels or depth.
	ErrFormatMismatch = errors.New("transition: image format does not match canvas")
)

// State is the lifecycle state of an Engine.
type State uint8

const (
	// Idle means the canvas or an endpoint image is missing.
	Idle State = iota

	// Initializing means the next CurrentFrame call starts a new run.
	Initializing

	// Running means an effect run is in progress.
	Running

	// Complete means the last run returned its final frame. The next
	// CurrentFrame call starts a new run.
	Complete
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case Complete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Option configures an Engine during creation.
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	rng        RandomSource
	channels   int
	depth      raster.Depth
	background color.Color
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		rng:        globalRandom{},
		channels:   4,
		depth:      raster.Depth8,
		background: color.Black,
	}
}

// WithRandom sets the random source of randomized effects.
// Tests pass a seeded source (see NewRandom) for reproducible runs.
func WithRandom(r RandomSource) Option {
	return func(o *engineOptions) {
		if r != nil {
			o.rng = r
		}
	}
}

// WithFormat sets the channels (3 or 4) and depth of the canvas.
// Endpoint images must use the same format.
func WithFormat(channels int, depth raster.Depth) Option {
	return func(o *engineOptions) {
		o.channels = channels
		o.depth = depth
	}
}

// WithBackground sets the color the canvas is filled with on
// SetOutputSize and behind fitted images.
func WithBackground(c color.Color) Option {
	return func(o *engineOptions) {
		if c != nil {
			o.background = c
		}
	}
}

// Engine produces the frames of a transition between an in image and an
// out image.
type Engine struct {
	opts engineOptions

	canvas *canvas
	in     *raster.Image
	out    *raster.Image

	effect Effect
	active Effect
	run    effectState
	state  State
}

// NewEngine creates an engine with the given options. The effect defaults
// to None.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o}
}

// SetOutputSize allocates a width×height canvas filled with the
// background and resets the running effect. Endpoint images of another
// size are dropped.
func (e *Engine) SetOutputSize(width, height int) error {
	frame, err := raster.New(width, height, e.opts.channels, e.opts.depth)
	if err != nil {
		return fmt.Errorf("transition: output size: %w", err)
	}
	fillBackground(frame, e.opts.background)

	e.canvas = newCanvas(frame)
	e.canvas.rng = e.opts.rng
	if !frame.SameShape(e.in) {
		e.in = nil
	}
	if !frame.SameShape(e.out) {
		e.out = nil
	}
	e.reset()
	return nil
}

// SetEffect selects the effect of the next run and resets the running
// effect.
func (e *Engine) SetEffect(effect Effect) {
	if effect >= effectCount {
		photofx.Logger().Warn("transition: unknown effect, using None", "effect", int(effect))
		effect = None
	}
	e.effect = effect
	e.reset()
}

// SetInImage sets the image the transition starts from. The engine keeps
// a reference; img must not change while the engine uses it.
func (e *Engine) SetInImage(img *raster.Image) error {
	if err := e.check(img); err != nil {
		return err
	}
	e.in = img
	e.reset()
	return nil
}

// SetOutImage sets the image the transition ends with. The engine keeps
// a reference; img must not change while the engine uses it.
func (e *Engine) SetOutImage(img *raster.Image) error {
	if err := e.check(img); err != nil {
		return err
	}
	e.out = img
	e.reset()
	return nil
}

// check verifies that img fits the canvas.
func (e *Engine) check(img *raster.Image) error {
	if e.canvas == nil {
		return ErrNoCanvas
	}
	frame := e.canvas.frame
	log := photofx.Logger()
	if img.IsEmpty() {
		log.Warn("transition: empty image")
		return ErrSizeMismatch
	}
	if img.Width() != frame.Width() || img.Height() != frame.Height() {
		log.Warn("transition: image size mismatch",
			"width", img.Width(), "height", img.Height(),
			"canvasWidth", frame.Width(), "canvasHeight", frame.Height())
		return ErrSizeMismatch
	}
	if img.Channels() != frame.Channels() || img.Depth() != frame.Depth() {
		log.Warn("transition: image format mismatch",
			"channels", img.Channels(), "depth", img.Depth(),
			"canvasChannels", frame.Channels(), "canvasDepth", frame.Depth())
		return ErrFormatMismatch
	}
	return nil
}

// reset drops the running effect state.
func (e *Engine) reset() {
	e.run = nil
	e.state = Initializing
	if e.canvas == nil || e.in == nil || e.out == nil {
		e.state = Idle
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Effect returns the selected effect, possibly Random.
func (e *Engine) Effect() Effect { return e.effect }

// ActiveEffect returns the concrete effect of the current or last run.
// It differs from Effect only when Random is selected.
func (e *Engine) ActiveEffect() Effect { return e.active }

// CurrentFrame advances the transition by one step and returns the frame
// and the delay in milliseconds before the next call, or -1 when the
// returned frame is final. The final frame equals the out image exactly.
//
// The first call after a new effect, image or size starts a new run from
// the in image. After a final frame the next call starts over.
//
// The returned image is owned by the engine and is overwritten by the
// next call. In the Idle state it returns the canvas (nil before
// SetOutputSize) and -1.
func (e *Engine) CurrentFrame() (*raster.Image, int) {
	if e.state == Idle {
		if e.canvas == nil {
			return nil, -1
		}
		return e.canvas.frame, -1
	}

	c := e.canvas
	if e.state != Running {
		e.start()
	}

	wait := e.run.step(c)
	if wait < 0 {
		_ = c.frame.CopyFrom(c.out)
		e.run = nil
		e.state = Complete
		return c.frame, -1
	}
	e.state = Running
	return c.frame, wait
}

// start begins a new run: it resolves Random, creates fresh effect state
// and resets the frame to the in image.
func (e *Engine) start() {
	c := e.canvas
	c.in, c.out = e.in, e.out

	e.active = e.effect
	if e.effect == Random {
		pool := concreteEffects()
		e.active = pool[c.rng.IntN(len(pool))]
	}
	photofx.Logger().Debug("transition: start", "effect", e.effect, "active", e.active,
		"width", c.width(), "height", c.height())

	_ = c.frame.CopyFrom(c.in)
	e.run = factories[e.active]()
	e.run.init(c)
}

// FitImage converts img to the canvas format and scales it to fit the
// canvas, preserving its aspect ratio and centering it over the
// background.
func (e *Engine) FitImage(img *raster.Image) (*raster.Image, error) {
	if e.canvas == nil {
		return nil, ErrNoCanvas
	}
	frame := e.canvas.frame
	out, err := FitImage(img, frame.Width(), frame.Height(), frame.Channels(), frame.Depth())
	if err != nil {
		return nil, err
	}

	bg := raster.NewLike(out)
	fillBackground(bg, e.opts.background)
	fitted := fittedRect(img.Width(), img.Height(), out.Width(), out.Height())
	bg.CopyRect(out, fitted)
	return bg, nil
}

// FitImage scales img to fit within width×height, preserving its aspect
// ratio, and returns a width×height image in the given format with the
// scaled image centered over transparent black.
func FitImage(img *raster.Image, width, height, channels int, depth raster.Depth) (*raster.Image, error) {
	if img.IsEmpty() {
		return nil, fmt.Errorf("transition: fit: %w", raster.ErrInvalidDimensions)
	}
	dst, err := raster.New(width, height, channels, depth)
	if err != nil {
		return nil, fmt.Errorf("transition: fit: %w", err)
	}

	conv, err := img.Convert(channels, depth)
	if err != nil {
		return nil, fmt.Errorf("transition: fit: %w", err)
	}
	r := fittedRect(img.Width(), img.Height(), width, height)
	if r.Dx() != conv.Width() || r.Dy() != conv.Height() {
		conv, err = conv.Resize(r.Dx(), r.Dy())
		if err != nil {
			return nil, fmt.Errorf("transition: fit: %w", err)
		}
	}
	dst.CopyRectTo(conv, conv.Bounds(), r.Min)
	return dst, nil
}

// fittedRect returns the centered rectangle of the largest w×h-shaped
// area inside a width×height canvas.
func fittedRect(w, h, width, height int) image.Rectangle {
	fw, fh := width, height
	if w*height > h*width {
		fh = max(h*width/w, 1)
	} else {
		fw = max(w*height/h, 1)
	}
	x := (width - fw) / 2
	y := (height - fh) / 2
	return image.Rect(x, y, x+fw, y+fh)
}

// fillBackground fills img with c in its sample range.
func fillBackground(img *raster.Image, c color.Color) {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	scale := func(v uint16) int {
		if img.Depth() == raster.Depth8 {
			return int(v >> 8)
		}
		return int(v)
	}
	img.Fill(scale(n.R), scale(n.G), scale(n.B), scale(n.A))
}
