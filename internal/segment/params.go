package segment

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// Default segmentation parameters.
const (
	DefaultAlphaThreshold = 0.10
	DefaultColorTolerance = 30.0
	DefaultMinSpriteSize  = 10
)

// DefaultParams returns parameters suitable for typical sprite sheets:
// auto mode, 10% alpha threshold, color tolerance 30 and a 10 pixel noise floor.
func DefaultParams() Params {
	return Params{
		Mode:           ModeAuto,
		AlphaThreshold: DefaultAlphaThreshold,
		ColorTolerance: DefaultColorTolerance,
		MinSpriteSize:  DefaultMinSpriteSize,
	}
}

// WithMode returns a copy of params using mode m.
func (p Params) WithMode(m Mode) Params {
	p.Mode = m
	return p
}

// WithBackground returns a copy of params with an explicit color-mode background.
func (p Params) WithBackground(c color.NRGBA) Params {
	p.Background = &c
	return p
}

// WithColorTolerance returns a copy of params with a custom color tolerance.
func (p Params) WithColorTolerance(tol float64) Params {
	p.ColorTolerance = tol
	return p
}

// WithAlphaThreshold returns a copy of params with a custom alpha threshold.
func (p Params) WithAlphaThreshold(threshold float64) Params {
	p.AlphaThreshold = threshold
	return p
}

// WithMinSpriteSize returns a copy of params with a custom noise floor.
func (p Params) WithMinSpriteSize(n int) Params {
	p.MinSpriteSize = n
	return p
}

// Validate checks that every parameter is in range.
func (p Params) Validate() error {
	var errs []error
	if p.Mode < ModeAuto || p.Mode > ModeColor {
		errs = append(errs, fmt.Errorf("invalid mode %d", p.Mode))
	}
	if math.IsNaN(p.AlphaThreshold) || p.AlphaThreshold < 0 || p.AlphaThreshold >= 1 {
		errs = append(errs, fmt.Errorf("alpha threshold must be in [0, 1), got %g", p.AlphaThreshold))
	}
	if math.IsNaN(p.ColorTolerance) || p.ColorTolerance < 0 {
		errs = append(errs, fmt.Errorf("color tolerance must be >= 0, got %g", p.ColorTolerance))
	}
	if p.MinSpriteSize < 1 {
		errs = append(errs, fmt.Errorf("min sprite size must be >= 1, got %d", p.MinSpriteSize))
	}
	return errors.Join(errs...)
}
