// Package anim assembles sliced sprites into an animated GIF.
package anim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"sprite-slicer/internal/segment"
	"sprite-slicer/internal/sheet"
	"sprite-slicer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Anchor decides where a sprite sits on a frame larger than itself.
type Anchor int

const (
	// AnchorBottom centers horizontally and aligns bottoms, keeping feet on one line.
	AnchorBottom Anchor = iota
	// AnchorCenter centers both ways.
	AnchorCenter
	// AnchorTopLeft places the sprite at the frame origin.
	AnchorTopLeft
)

func (a Anchor) String() string {
	switch a {
	case AnchorBottom:
		return "bottom"
	case AnchorCenter:
		return "center"
	case AnchorTopLeft:
		return "topleft"
	default:
		return "unknown"
	}
}

// ParseAnchor parses "bottom", "center" or "topleft".
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom":
		return AnchorBottom, nil
	case "center", "centre":
		return AnchorCenter, nil
	case "topleft", "top-left":
		return AnchorTopLeft, nil
	}
	return AnchorBottom, fmt.Errorf("unknown anchor %q (want bottom, center or topleft)", s)
}

// Centering selects how the content box inside each sprite is found before
// it is centered on the frame.
type Centering int

const (
	CenterNone Centering = iota
	CenterAuto
	CenterAlpha
	CenterColor
)

func (c Centering) String() string {
	switch c {
	case CenterNone:
		return "none"
	case CenterAuto:
		return "auto"
	case CenterAlpha:
		return "alpha"
	case CenterColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseCentering parses "none", "auto", "alpha" or "color".
func ParseCentering(s string) (Centering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return CenterNone, nil
	case "auto":
		return CenterAuto, nil
	case "alpha":
		return CenterAlpha, nil
	case "color", "colour":
		return CenterColor, nil
	}
	return CenterNone, fmt.Errorf("unknown centering %q (want none, auto, alpha or color)", s)
}

func (c Centering) mode() segment.Mode {
	switch c {
	case CenterAlpha:
		return segment.ModeAlpha
	case CenterColor:
		return segment.ModeColor
	default:
		return segment.ModeAuto
	}
}

// Options controls GIF assembly.
type Options struct {
	Delay     time.Duration // per frame, stored in 10 ms units
	LoopCount int           // 0 loops forever, -1 plays once, n repeats n times
	Scale     int           // integer upscale factor, nearest-neighbour
	Anchor    Anchor
	PingPong  bool // append the inner frames in reverse
	Dither    bool // Floyd-Steinberg error diffusion when quantizing

	// Center recenters the content box of each sprite on its frame,
	// overriding Anchor. With Unified every frame uses the union of all
	// content boxes, so the animation does not jitter.
	Center  Centering
	Unified bool

	// Transparent clears background pixels to the transparent palette entry.
	Transparent bool

	// Content tells content from background for Center and Transparent.
	// A Center other than CenterAuto overrides Content.Mode.
	Content segment.Params
}

// DefaultOptions returns 100 ms frames, endless loop, no scaling, bottom anchor.
func DefaultOptions() Options {
	return Options{
		Delay:   100 * time.Millisecond,
		Scale:   1,
		Anchor:  AnchorBottom,
		Content: segment.DefaultParams(),
	}
}

// contentParams returns the segmentation parameters used inside frames.
func (o Options) contentParams() segment.Params {
	p := o.Content
	if o.Center != CenterNone && o.Center != CenterAuto {
		p.Mode = o.Center.mode()
	}
	return p
}

// Validate checks option ranges.
func (o Options) Validate() error {
	var errs []error
	if o.Delay < 0 {
		errs = append(errs, fmt.Errorf("frame delay must be >= 0, got %s", o.Delay))
	}
	if o.LoopCount < -1 {
		errs = append(errs, fmt.Errorf("loop count must be >= -1, got %d", o.LoopCount))
	}
	if o.Scale < 1 {
		errs = append(errs, fmt.Errorf("scale must be >= 1, got %d", o.Scale))
	}
	if o.Anchor < AnchorBottom || o.Anchor > AnchorTopLeft {
		errs = append(errs, fmt.Errorf("invalid anchor %d", o.Anchor))
	}
	if o.Center < CenterNone || o.Center > CenterColor {
		errs = append(errs, fmt.Errorf("invalid centering %d", o.Center))
	}
	if o.Center != CenterNone || o.Transparent {
		if err := o.contentParams().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("content detection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Palette is the GIF palette: index 0 is transparent, followed by the
// 216 web-safe colors.
var Palette = append(color.Palette{color.RGBA{}}, palette.WebSafe...)

// Frames crops each sprite from src and places it on a common canvas sized
// to the largest sprite, then applies the scale factor.
func Frames(src image.Image, sprites []geometry.RectInt, opts Options) ([]*image.NRGBA, error) {
	if len(sprites) == 0 {
		return nil, errors.New("no sprites to animate")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	canvas := geometry.MaxSize(sprites)
	crops := make([]*image.NRGBA, len(sprites))
	boxes := make([]image.Rectangle, len(sprites))
	for i, r := range sprites {
		crops[i] = sheet.Crop(src, r)
		boxes[i] = crops[i].Bounds()
	}
	if opts.Center != CenterNone || opts.Transparent {
		if err := prepareContent(crops, boxes, opts); err != nil {
			return nil, err
		}
	}

	frames := make([]*image.NRGBA, len(sprites))
	for i, crop := range crops {
		frame := image.NewNRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
		box := boxes[i]
		var at image.Point
		if opts.Center != CenterNone {
			at = image.Pt((canvas.Width-box.Dx())/2, (canvas.Height-box.Dy())/2)
		} else {
			at = place(opts.Anchor, canvas, geometry.FromRectangle(box))
		}
		xdraw.Draw(frame, image.Rectangle{Min: at, Max: at.Add(box.Size())}, crop, box.Min, xdraw.Src)
		frames[i] = scale(frame, opts.Scale)
	}
	if opts.PingPong && len(frames) > 2 {
		for i := len(frames) - 2; i > 0; i-- {
			frames = append(frames, frames[i])
		}
	}
	return frames, nil
}

// prepareContent segments every crop, clears its background when
// opts.Transparent is set and, when centering, narrows boxes to the content
// boxes (or their union). Crops without content keep their full box.
func prepareContent(crops []*image.NRGBA, boxes []image.Rectangle, opts Options) error {
	params := opts.contentParams()
	var union image.Rectangle
	for i, crop := range crops {
		p := params
		p.Mode = segment.ResolveMode(crop, p.Mode)
		m, err := segment.BuildMap(crop, p)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if opts.Transparent {
			clearBackground(crop, m)
		}
		if opts.Center == CenterNone {
			continue
		}
		if box, ok := m.Bounds(); ok {
			boxes[i] = box
			union = union.Union(box)
		}
	}
	if opts.Center != CenterNone && opts.Unified && !union.Empty() {
		for i, crop := range crops {
			boxes[i] = union.Intersect(crop.Bounds())
		}
	}
	return nil
}

// clearBackground makes every pixel of img that m marks as background
// fully transparent.
func clearBackground(img *image.NRGBA, m *segment.Map) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !m.At(x, y) {
				img.SetNRGBA(b.Min.X+x, b.Min.Y+y, color.NRGBA{})
			}
		}
	}
}

func place(a Anchor, canvas geometry.Size, r geometry.RectInt) image.Point {
	switch a {
	case AnchorCenter:
		return image.Pt((canvas.Width-r.Width)/2, (canvas.Height-r.Height)/2)
	case AnchorTopLeft:
		return image.Point{}
	default:
		return image.Pt((canvas.Width-r.Width)/2, canvas.Height-r.Height)
	}
}

func scale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Assemble builds an animated GIF from the sprites of src, in order.
func Assemble(src image.Image, sprites []geometry.RectInt, opts Options) (*gif.GIF, error) {
	frames, err := Frames(src, sprites, opts)
	if err != nil {
		return nil, err
	}

	delay := int(math.Round(float64(opts.Delay) / float64(10*time.Millisecond)))
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: opts.LoopCount,
	}
	var drawer xdraw.Drawer = xdraw.Src
	if opts.Dither {
		drawer = xdraw.FloydSteinberg
	}
	for i, f := range frames {
		p := image.NewPaletted(f.Bounds(), Palette)
		drawer.Draw(p, p.Bounds(), f, image.Point{})
		g.Image[i] = p
		g.Delay[i] = delay
		g.Disposal[i] = gif.DisposalBackground
	}
	return g, nil
}

// Encode writes g to w.
func Encode(w io.Writer, g *gif.GIF) error {
	return gif.EncodeAll(w, g)
}

// WriteFile encodes g into a new file at path.
func WriteFile(path string, g *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, g); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return f.Close()
}
