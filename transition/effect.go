package transition

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownEffect is returned by ParseEffect for an unregistered name.
var ErrUnknownEffect = errors.New("transition: unknown effect")

// Effect identifies a transition effect.
type Effect uint8

const (
	// None shows the out image at once.
	None Effect = iota

	// ChessBoard reveals the out image through alternating tiles moving
	// in from both sides.
	ChessBoard

	// MeltDown drips the out image down in columns.
	MeltDown

	// Sweep passes a widening band across the canvas in a random direction.
	Sweep

	// Mosaic reveals randomly placed square cells.
	Mosaic

	// Cubism stamps randomly rotated squares of the out image.
	Cubism

	// Growing grows a centered rectangle.
	Growing

	// HorizontalLines interleaves rows of the out image.
	HorizontalLines

	// VerticalLines interleaves columns of the out image.
	VerticalLines

	// CircleOut sweeps one wedge around the center.
	CircleOut

	// MultiCircleOut sweeps several wedges around the center at once.
	MultiCircleOut

	// SpiralIn fills blocks along an inward spiral.
	SpiralIn

	// Blobs stamps random disks of the out image.
	Blobs

	// Fade cross-dissolves from the in image to the out image.
	Fade

	// SlideL2R and its siblings slide the in image off the canvas over
	// the fixed out image.
	SlideL2R
	SlideR2L
	SlideT2B
	SlideB2T

	// PushL2R and its siblings move both images together; the out image
	// pushes the in image off the canvas.
	PushL2R
	PushR2L
	PushT2B
	PushB2T

	// SwapL2R and its siblings slide the out image in over the fixed in
	// image.
	SwapL2R
	SwapR2L
	SwapT2B
	SwapB2T

	// BlurIn sharpens a blurred out image.
	BlurIn

	// BlurOut blurs the in image away.
	BlurOut

	// Random draws a concrete effect other than None for every run.
	Random

	effectCount
)

var effectNames = [effectCount]string{
	None:            "None",
	ChessBoard:      "Chess Board",
	MeltDown:        "Melt Down",
	Sweep:           "Sweep",
	Mosaic:          "Mosaic",
	Cubism:          "Cubism",
	Growing:         "Growing",
	HorizontalLines: "Horizontal Lines",
	VerticalLines:   "Vertical Lines",
	CircleOut:       "Circle Out",
	MultiCircleOut:  "MultiCircle Out",
	SpiralIn:        "Spiral In",
	Blobs:           "Blobs",
	Fade:            "Fade",
	SlideL2R:        "Slide L2R",
	SlideR2L:        "Slide R2L",
	SlideT2B:        "Slide T2B",
	SlideB2T:        "Slide B2T",
	PushL2R:         "Push L2R",
	PushR2L:         "Push R2L",
	PushT2B:         "Push T2B",
	PushB2T:         "Push B2T",
	SwapL2R:         "Swap L2R",
	SwapR2L:         "Swap R2L",
	SwapT2B:         "Swap T2B",
	SwapB2T:         "Swap B2T",
	BlurIn:          "Blur In",
	BlurOut:         "Blur Out",
	Random:          "Random",
}

// String returns the display name of the effect.
func (e Effect) String() string {
	if e < effectCount {
		return effectNames[e]
	}
	return "Unknown"
}

// Effects returns every effect, Random last.
func Effects() []Effect {
	out := make([]Effect, 0, effectCount)
	for e := range effectCount {
		out = append(out, e)
	}
	return out
}

// concreteEffects lists the effects Random draws from.
func concreteEffects() []Effect {
	out := make([]Effect, 0, effectCount-2)
	for e := None + 1; e < Random; e++ {
		out = append(out, e)
	}
	return out
}

// foldName normalizes an effect name for matching: case-folded, without
// spaces, dashes or underscores.
func foldName(s string) string {
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, s)
}

var effectsByName = func() map[string]Effect {
	m := make(map[string]Effect, effectCount)
	for e := range effectCount {
		m[foldName(effectNames[e])] = e
	}
	return m
}()

// ParseEffect returns the effect with the given display name, ignoring
// case and spacing ("chessboard", "Chess Board" and "CHESS-BOARD" all
// match).
func ParseEffect(name string) (Effect, error) {
	if e, ok := effectsByName[foldName(name)]; ok {
		return e, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// effectState is the private iteration state of one effect run. A fresh
// value is created by the effect's factory for every run.
type effectState interface {
	// init seeds the state from the canvas size and random source.
	init(c *canvas)

	// step advances the frame and returns the suggested delay in
	// milliseconds, or -1 once the effect is complete.
	step(c *canvas) int
}

// factories maps every concrete effect to the constructor of its state.
var factories = [Random]func() effectState{
	None:            func() effectState { return &noneState{} },
	ChessBoard:      func() effectState { return &chessState{} },
	MeltDown:        func() effectState { return &meltState{} },
	Sweep:           func() effectState { return &sweepState{} },
	Mosaic:          func() effectState { return &mosaicState{} },
	Cubism:          func() effectState { return &stampState{shape: shapeSquare} },
	Growing:         func() effectState { return &growState{} },
	HorizontalLines: func() effectState { return &linesState{} },
	VerticalLines:   func() effectState { return &linesState{vertical: true} },
	CircleOut:       func() effectState { return &circleState{} },
	MultiCircleOut:  func() effectState { return &multiCircleState{} },
	SpiralIn:        func() effectState { return &spiralState{} },
	Blobs:           func() effectState { return &stampState{shape: shapeDisk} },
	Fade:            func() effectState { return &fadeState{} },
	SlideL2R:        func() effectState { return &slideState{mode: slide, dir: leftToRight} },
	SlideR2L:        func() effectState { return &slideState{mode: slide, dir: rightToLeft} },
	SlideT2B:        func() effectState { return &slideState{mode: slide, dir: topToBottom} },
	SlideB2T:        func() effectState { return &slideState{mode: slide, dir: bottomToTop} },
	PushL2R:         func() effectState { return &slideState{mode: push, dir: leftToRight} },
	PushR2L:         func() effectState { return &slideState{mode: push, dir: rightToLeft} },
	PushT2B:         func() effectState { return &slideState{mode: push, dir: topToBottom} },
	PushB2T:         func() effectState { return &slideState{mode: push, dir: bottomToTop} },
	SwapL2R:         func() effectState { return &slideState{mode: swap, dir: leftToRight} },
	SwapR2L:         func() effectState { return &slideState{mode: swap, dir: rightToLeft} },
	SwapT2B:         func() effectState { return &slideState{mode: swap, dir: topToBottom} },
	SwapB2T:         func() effectState { return &slideState{mode: swap, dir: bottomToTop} },
	BlurIn:          func() effectState { return &blurState{in: true} },
	BlurOut:         func() effectState { return &blurState{} },
}
