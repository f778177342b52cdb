// Package filter implements the photofx raster filters.
//
// Every filter follows the same contract: it is constructed from a
// borrowed source [raster.Image] plus a settings struct, never mutates the
// source, and produces an owned destination image from Run. Run is
// single-threaded, reports coarse progress through a [ProgressFunc] and
// polls its context once per output row (or chunk) for cooperative
// cancellation.
//
// Available filters:
//   - [VignettingFilter]: anti-vignetting attenuation
//   - [LUTFilter]: 3D look-up-table color remap with tetrahedral interpolation
//   - [RefocusFilter]: deconvolution sharpening
//   - [LensFilter]: chromatic aberration, vignetting and distortion correction
//   - [RotationFilter]: free rotation (the only filter that resizes)
//
// Each filter can be recorded as an [Action] and rebuilt from it with [New].
package filter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/photofx"
	"github.com/gogpu/photofx/raster"
)

// Common errors for filter operations.
var (
	// ErrCancelled is returned (wrapped with the context error) when a run
	// stops early. The destination is then only valid up to the last
	// completed row or chunk.
	ErrCancelled = errors.New("filter: cancelled")

	// ErrEmptySource is returned when the source image is nil or empty.
	ErrEmptySource = errors.New("filter: empty source image")

	// ErrUnknownFilter is returned by New for an unregistered identifier.
	ErrUnknownFilter = errors.New("filter: unknown filter")

	// ErrActionMismatch is returned when an action belongs to another filter
	// or carries a newer version than this package understands.
	ErrActionMismatch = errors.New("filter: action does not match filter")
)

// Kind identifies a filter algorithm.
type Kind uint8

const (
	// KindVignetting is the anti-vignetting filter.
	KindVignetting Kind = iota

	// KindLUT is the 3D LUT color remap.
	KindLUT

	// KindRefocus is the deconvolution sharpening filter.
	KindRefocus

	// KindLens is the lens correction filter.
	KindLens

	// KindRotation is the free rotation filter.
	KindRotation
)

var kindInfo = [...]struct {
	name       string
	identifier string
	version    int
}{
	KindVignetting: {"AntiVignetting", "photofx:antivignetting", 1},
	KindLUT:        {"LUT3D", "photofx:lut3d", 1},
	KindRefocus:    {"Refocus", "photofx:refocus", 1},
	KindLens:       {"LensCorrection", "photofx:lenscorrection", 1},
	KindRotation:   {"FreeRotation", "photofx:freerotation", 1},
}

// String returns a string representation of the kind.
func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}
	return "Unknown"
}

// Identifier returns the action identifier recorded for the kind.
func (k Kind) Identifier() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].identifier
	}
	return ""
}

// Version returns the current action version of the kind.
func (k Kind) Version() int {
	if int(k) < len(kindInfo) {
		return kindInfo[k].version
	}
	return 0
}

// KindOf returns the kind registered under an action identifier.
func KindOf(identifier string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.identifier == identifier {
			return Kind(k), true
		}
	}
	return 0, false
}

// Filter is the capability set shared by every filter.
type Filter interface {
	// Kind returns the filter algorithm.
	Kind() Kind

	// Action records the filter settings for history and undo.
	Action() Action

	// Run performs the transform. On cancellation it returns the partially
	// written destination and an error matching ErrCancelled.
	Run(ctx context.Context, progress ProgressFunc) (*raster.Image, error)
}

// New rebuilds a filter over src from an action record.
//
// A LUT action loads its table from the recorded path; a table that fails
// to load leaves the filter as a no-op copy, as documented on LUTFilter.
func New(src *raster.Image, a Action) (Filter, error) {
	kind, ok := KindOf(a.Identifier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, a.Identifier)
	}

	switch kind {
	case KindVignetting:
		s, err := VignettingSettingsFromAction(a)
		if err != nil {
			return nil, err
		}
		return NewVignettingFilter(src, s), nil
	case KindLUT:
		s, err := LUTSettingsFromAction(a)
		if err != nil {
			return nil, err
		}
		var table *LUTTable
		if s.Path != "" {
			table, err = LoadLUTFile(s.Path)
			if err != nil {
				photofx.Logger().Warn("filter: LUT load failed", "path", s.Path, "err", err)
			}
		}
		return NewLUTFilter(src, table, s), nil
	case KindRefocus:
		s, err := RefocusSettingsFromAction(a)
		if err != nil {
			return nil, err
		}
		return NewRefocusFilter(src, s), nil
	case KindLens:
		s, err := LensSettingsFromAction(a)
		if err != nil {
			return nil, err
		}
		return NewLensFilter(src, s), nil
	case KindRotation:
		s, err := RotationSettingsFromAction(a)
		if err != nil {
			return nil, err
		}
		return NewRotationFilter(src, s), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, a.Identifier)
}

// Status classifies the outcome of a run.
type Status uint8

const (
	// StatusSuccess means the destination is complete.
	StatusSuccess Status = iota

	// StatusCancelled means the run stopped early on request.
	StatusCancelled

	// StatusFailed means the run could not be performed.
	StatusFailed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusCancelled:
		return "Cancelled"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// StatusOf maps the error returned by Run to a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrCancelled):
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// cancelled wraps a context error so it matches both ErrCancelled and the
// original cause.
func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// checkSource rejects nil and empty sources.
func checkSource(src *raster.Image) error {
	if src.IsEmpty() {
		photofx.Logger().Warn("filter: empty source image")
		return ErrEmptySource
	}
	return nil
}

// runRows calls row for y in [0, h), polling ctx before each row and
// reporting progress in [from, to].
func runRows(ctx context.Context, h int, p *progressReporter, from, to int, row func(y int)) error {
	for y := range h {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		row(y)
		p.report(from + (y+1)*(to-from)/h)
	}
	return nil
}
