package segment

import (
	"errors"
	"image"
	"image/color"
	"math/bits"

	"sprite-slicer/pkg/colorutil"
)

// ErrUnresolvedMode is returned by BuildMap when called with ModeAuto.
var ErrUnresolvedMode = errors.New("segment: mode must be resolved before building a map")

// bitset is a flat, index-addressable set of pixel flags.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) { b[i>>6] |= 1 << (uint(i) & 63) }
func (b bitset) get(i int) bool { return b[i>>6]&(1<<(uint(i)&63)) != 0 }
func (b bitset) count() (n int) {
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// Map is a binary foreground/background map with the same size as its image.
// Coordinates passed to At and Set are relative to the image's Bounds().Min.
type Map struct {
	Width  int
	Height int
	Origin image.Point // image coordinate of map pixel (0, 0)
	bits   bitset
}

// NewMap creates an all-background map.
func NewMap(width, height int, origin image.Point) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Origin: origin,
		bits:   newBitset(width * height),
	}
}

// At reports whether (x, y) is foreground. Out-of-range pixels are background.
func (m *Map) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits.get(y*m.Width + x)
}

// Set marks (x, y) as foreground.
func (m *Map) Set(x, y int) {
	m.bits.set(y*m.Width + x)
}

// Count returns the number of foreground pixels.
func (m *Map) Count() int {
	return m.bits.count()
}

// ResolveMode turns ModeAuto into ModeAlpha or ModeColor. An image whose
// Opaque method reports true uses color mode; otherwise any pixel below full
// opacity selects alpha mode. Explicit modes are returned unchanged.
func ResolveMode(img image.Image, mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if HasTransparency(img) {
		return ModeAlpha
	}
	return ModeColor
}

// HasTransparency reports whether any pixel of img is not fully opaque.
func HasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// BuildMap classifies each pixel of img as foreground or background.
// params.Mode must be ModeAlpha or ModeColor; see ResolveMode.
func BuildMap(img image.Image, params Params) (*Map, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	m := NewMap(b.Dx(), b.Dy(), b.Min)

	var isForeground func(c color.Color) bool
	switch params.Mode {
	case ModeAlpha:
		threshold := params.AlphaThreshold
		isForeground = func(c color.Color) bool {
			return colorutil.Alpha(c) > threshold
		}
	case ModeColor:
		if m.Width == 0 || m.Height == 0 {
			return m, nil
		}
		bg := colorutil.NRGBA(img.At(b.Min.X, b.Min.Y))
		if params.Background != nil {
			bg = *params.Background
		}
		tol := params.ColorTolerance
		isForeground = func(c color.Color) bool {
			return colorutil.Distance(colorutil.NRGBA(c), bg) > tol
		}
	default:
		return nil, ErrUnresolvedMode
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if isForeground(img.At(b.Min.X+x, b.Min.Y+y)) {
				m.Set(x, y)
			}
		}
	}
	return m, nil
}

// Bounds returns the bounding box of all foreground pixels in image
// coordinates. ok is false when the map has no foreground.
func (m *Map) Bounds() (r image.Rectangle, ok bool) {
	minX, minY, maxX, maxY := m.Width, m.Height, -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.bits.get(y*m.Width + x) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(m.Origin), true
}
