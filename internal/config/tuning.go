// Package config loads optional JSON tuning files for the slicer.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"sprite-slicer/internal/anim"
	"sprite-slicer/internal/detect"
	"sprite-slicer/internal/segment"
	"sprite-slicer/pkg/colorutil"
)

// TuningConfig holds optional overrides for detection and animation.
// Nil fields keep the value they are applied over, so partial files are safe.
type TuningConfig struct {
	// Segmentation
	Mode            *string  `json:"mode,omitempty"` // "auto", "alpha" or "color"
	AlphaThreshold  *float64 `json:"alpha_threshold,omitempty"`
	BackgroundColor *string  `json:"background_color,omitempty"` // "#rrggbb"
	ColorTolerance  *float64 `json:"color_tolerance,omitempty"`
	MinSpriteSize   *int     `json:"min_sprite_size,omitempty"`

	// Grid inference. Column and row tolerances override position_tolerance.
	PositionTolerance *float64 `json:"position_tolerance,omitempty"`
	ColumnTolerance   *float64 `json:"column_tolerance,omitempty"`
	RowTolerance      *float64 `json:"row_tolerance,omitempty"`

	// Animation
	FrameDelayMS *int    `json:"frame_delay_ms,omitempty"`
	LoopCount    *int    `json:"loop_count,omitempty"`
	Scale        *int    `json:"scale,omitempty"`
	Anchor       *string `json:"anchor,omitempty"` // "bottom", "center" or "topleft"
	PingPong     *bool   `json:"ping_pong,omitempty"`
	Dither       *bool   `json:"dither,omitempty"`
	Center       *string `json:"center,omitempty"` // "none", "auto", "alpha" or "color"
	Unified      *bool   `json:"unified,omitempty"`
	Transparent  *bool   `json:"transparent,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field.
func (c *TuningConfig) Validate() error {
	var errs []error
	if c.Mode != nil {
		if _, err := segment.ParseMode(*c.Mode); err != nil {
			errs = append(errs, err)
		}
	}
	if c.AlphaThreshold != nil && (math.IsNaN(*c.AlphaThreshold) || *c.AlphaThreshold < 0 || *c.AlphaThreshold >= 1) {
		errs = append(errs, fmt.Errorf("alpha_threshold must be in [0, 1), got %g", *c.AlphaThreshold))
	}
	if c.BackgroundColor != nil {
		if _, err := colorutil.ParseHex(*c.BackgroundColor); err != nil {
			errs = append(errs, fmt.Errorf("background_color: %w", err))
		}
	}
	if c.ColorTolerance != nil && (math.IsNaN(*c.ColorTolerance) || *c.ColorTolerance < 0) {
		errs = append(errs, fmt.Errorf("color_tolerance must be >= 0, got %g", *c.ColorTolerance))
	}
	if c.MinSpriteSize != nil && *c.MinSpriteSize < 1 {
		errs = append(errs, fmt.Errorf("min_sprite_size must be >= 1, got %d", *c.MinSpriteSize))
	}
	for _, tol := range []struct {
		name string
		v    *float64
	}{
		{"position_tolerance", c.PositionTolerance},
		{"column_tolerance", c.ColumnTolerance},
		{"row_tolerance", c.RowTolerance},
	} {
		if tol.v != nil && (math.IsNaN(*tol.v) || *tol.v < 0) {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %g", tol.name, *tol.v))
		}
	}
	if c.FrameDelayMS != nil && *c.FrameDelayMS < 0 {
		errs = append(errs, fmt.Errorf("frame_delay_ms must be >= 0, got %d", *c.FrameDelayMS))
	}
	if c.LoopCount != nil && *c.LoopCount < -1 {
		errs = append(errs, fmt.Errorf("loop_count must be >= -1, got %d", *c.LoopCount))
	}
	if c.Scale != nil && *c.Scale < 1 {
		errs = append(errs, fmt.Errorf("scale must be >= 1, got %d", *c.Scale))
	}
	if c.Anchor != nil {
		if _, err := anim.ParseAnchor(*c.Anchor); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Center != nil {
		if _, err := anim.ParseCentering(*c.Center); err != nil {
			errs = append(errs, fmt.Errorf("center: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ApplyDetect returns base with every set detection field overridden.
func (c *TuningConfig) ApplyDetect(base detect.Config) (detect.Config, error) {
	if err := c.Validate(); err != nil {
		return base, err
	}
	if c.Mode != nil {
		base.Mode, _ = segment.ParseMode(*c.Mode)
	}
	if c.AlphaThreshold != nil {
		base.AlphaThreshold = *c.AlphaThreshold
	}
	if c.BackgroundColor != nil {
		bg, _ := colorutil.ParseHex(*c.BackgroundColor)
		base = base.WithBackground(bg)
	}
	if c.ColorTolerance != nil {
		base.ColorTolerance = *c.ColorTolerance
	}
	if c.MinSpriteSize != nil {
		base.MinSpriteSize = *c.MinSpriteSize
	}
	if c.PositionTolerance != nil {
		base = base.WithPositionTolerance(*c.PositionTolerance)
	}
	if c.ColumnTolerance != nil {
		base.ColumnTolerance = *c.ColumnTolerance
	}
	if c.RowTolerance != nil {
		base.RowTolerance = *c.RowTolerance
	}
	return base, nil
}

// ApplyAnim returns base with every set animation field overridden.
func (c *TuningConfig) ApplyAnim(base anim.Options) (anim.Options, error) {
	if err := c.Validate(); err != nil {
		return base, err
	}
	if c.FrameDelayMS != nil {
		base.Delay = time.Duration(*c.FrameDelayMS) * time.Millisecond
	}
	if c.LoopCount != nil {
		base.LoopCount = *c.LoopCount
	}
	if c.Scale != nil {
		base.Scale = *c.Scale
	}
	if c.Anchor != nil {
		base.Anchor, _ = anim.ParseAnchor(*c.Anchor)
	}
	if c.PingPong != nil {
		base.PingPong = *c.PingPong
	}
	if c.Dither != nil {
		base.Dither = *c.Dither
	}
	if c.Center != nil {
		base.Center, _ = anim.ParseCentering(*c.Center)
	}
	if c.Unified != nil {
		base.Unified = *c.Unified
	}
	if c.Transparent != nil {
		base.Transparent = *c.Transparent
	}
	return base, nil
}
