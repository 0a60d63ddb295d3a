// Package segment turns a sprite sheet into foreground regions: it builds a
// binary segmentation map and extracts 4-connected components from it.
package segment

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"sprite-slicer/pkg/geometry"
)

// Mode selects how foreground pixels are told apart from background.
type Mode int

const (
	// ModeAuto picks ModeAlpha or ModeColor from the image, see ResolveMode.
	ModeAuto Mode = iota
	// ModeAlpha treats pixels above the alpha threshold as foreground.
	ModeAlpha
	// ModeColor treats pixels far from the background color as foreground.
	ModeColor
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeAlpha:
		return "alpha"
	case ModeColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseMode parses "auto", "alpha" or "color" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "alpha":
		return ModeAlpha, nil
	case "color", "colour":
		return ModeColor, nil
	}
	return ModeAuto, fmt.Errorf("unknown segmentation mode %q (want auto, alpha or color)", s)
}

// Params controls segmentation map building and region extraction.
type Params struct {
	Mode Mode

	// AlphaThreshold is a fraction of full opacity (0-1). A pixel is
	// foreground when its alpha is strictly greater.
	AlphaThreshold float64

	// Background is the color-mode background. Nil means the top-left pixel.
	Background *color.NRGBA

	// ColorTolerance is the Euclidean RGB distance (0-255 scale) a pixel must
	// exceed to count as foreground in color mode.
	ColorTolerance float64

	// MinSpriteSize is the minimum pixel count of a region; smaller ones are noise.
	MinSpriteSize int
}

// Region is one 4-connected set of foreground pixels.
type Region struct {
	Bounds     geometry.RectInt `json:"bounds"`
	PixelCount int              `json:"pixel_count"`
}

// Left returns the left edge of the bounding box.
func (r Region) Left() int { return r.Bounds.X }

// Top returns the top edge of the bounding box.
func (r Region) Top() int { return r.Bounds.Y }

// ErrEmptySegmentation is matched by every *EmptySegmentationError.
var ErrEmptySegmentation = errors.New("segment: no foreground regions")

// EmptySegmentationError reports that no region survived noise filtering.
type EmptySegmentationError struct {
	ForegroundPixels int // foreground pixels in the map
	Discarded        int // regions dropped as smaller than MinSpriteSize
	MinSpriteSize    int
}

func (e *EmptySegmentationError) Error() string {
	if e.ForegroundPixels == 0 {
		return "no foreground pixels found (adjust alpha threshold or color tolerance)"
	}
	return fmt.Sprintf("no regions of at least %d pixels found (%d foreground pixels, %d regions discarded as noise)",
		e.MinSpriteSize, e.ForegroundPixels, e.Discarded)
}

// Is makes errors.Is(err, ErrEmptySegmentation) succeed.
func (e *EmptySegmentationError) Is(target error) bool {
	return target == ErrEmptySegmentation
}
