// Package detect runs the automatic sprite-grid pipeline: mode resolution,
// segmentation, region extraction, grid inference and ordering.
package detect

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"sprite-slicer/internal/grid"
	"sprite-slicer/internal/segment"
)

// ErrInvalidConfig wraps every configuration error found by Validate.
var ErrInvalidConfig = errors.New("invalid detection config")

// Config holds every option of the automatic pipeline.
// Use DefaultConfig and the With* builders rather than a zero value.
type Config struct {
	Mode           segment.Mode
	AlphaThreshold float64      // fraction of full opacity, default 0.10
	Background     *color.NRGBA // nil = top-left pixel
	ColorTolerance float64      // Euclidean RGB distance, default 30
	MinSpriteSize  int          // pixels, default 10

	// ColumnTolerance and RowTolerance are the clustering tolerances for
	// left and top edges. WithPositionTolerance sets both.
	ColumnTolerance float64
	RowTolerance    float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	p := segment.DefaultParams()
	return Config{
		Mode:            p.Mode,
		AlphaThreshold:  p.AlphaThreshold,
		ColorTolerance:  p.ColorTolerance,
		MinSpriteSize:   p.MinSpriteSize,
		ColumnTolerance: grid.DefaultTolerance,
		RowTolerance:    grid.DefaultTolerance,
	}
}

// WithMode returns a copy of c using mode m.
func (c Config) WithMode(m segment.Mode) Config {
	c.Mode = m
	return c
}

// WithAlphaThreshold returns a copy of c with a custom alpha threshold.
func (c Config) WithAlphaThreshold(threshold float64) Config {
	c.AlphaThreshold = threshold
	return c
}

// WithBackground returns a copy of c with an explicit background color.
func (c Config) WithBackground(bg color.NRGBA) Config {
	c.Background = &bg
	return c
}

// WithColorTolerance returns a copy of c with a custom color tolerance.
func (c Config) WithColorTolerance(tol float64) Config {
	c.ColorTolerance = tol
	return c
}

// WithMinSpriteSize returns a copy of c with a custom noise floor.
func (c Config) WithMinSpriteSize(n int) Config {
	c.MinSpriteSize = n
	return c
}

// WithPositionTolerance returns a copy of c using tol for both columns and rows.
func (c Config) WithPositionTolerance(tol float64) Config {
	c.ColumnTolerance = tol
	c.RowTolerance = tol
	return c
}

// SegmentParams returns the segmentation subset of c.
func (c Config) SegmentParams() segment.Params {
	return segment.Params{
		Mode:           c.Mode,
		AlphaThreshold: c.AlphaThreshold,
		Background:     c.Background,
		ColorTolerance: c.ColorTolerance,
		MinSpriteSize:  c.MinSpriteSize,
	}
}

// Validate reports every out-of-range option, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	errs := []error{c.SegmentParams().Validate()}
	if math.IsNaN(c.ColumnTolerance) || c.ColumnTolerance < 0 {
		errs = append(errs, fmt.Errorf("column tolerance must be >= 0, got %g", c.ColumnTolerance))
	}
	if math.IsNaN(c.RowTolerance) || c.RowTolerance < 0 {
		errs = append(errs, fmt.Errorf("row tolerance must be >= 0, got %g", c.RowTolerance))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
