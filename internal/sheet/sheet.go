// Package sheet provides sprite-sheet loading and cropping.
package sheet

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sprite-slicer/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sheet is a decoded sprite sheet. The image is never modified.
type Sheet struct {
	Path   string      // Original file path, empty when decoded from a reader
	Image  image.Image // Decoded image data
	Format string      // Decoder name: "png", "webp", ...
}

// Load loads a sprite sheet from the specified path.
func Load(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	s, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Decode decodes a sprite sheet in any registered format.
func Decode(r io.Reader) (*Sheet, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Sheet{Image: img, Format: format}, nil
}

// Width returns the image width in pixels.
func (s *Sheet) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Sheet) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (s *Sheet) Size() geometry.Size {
	return geometry.Size{Width: s.Width(), Height: s.Height()}
}

// Crop copies the pixels under r into a new image whose bounds start at (0, 0).
// Parts of r outside the sheet are left transparent.
func (s *Sheet) Crop(r geometry.RectInt) *image.NRGBA {
	return Crop(s.Image, r)
}

// Crop copies the pixels of img under r into a new zero-origin image.
func Crop(img image.Image, r geometry.RectInt) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, max(r.Width, 0), max(r.Height, 0)))
	src := r.Rectangle()
	clipped := src.Intersect(img.Bounds())
	if clipped.Empty() {
		return dst
	}
	dr := clipped.Sub(src.Min)
	draw.Draw(dst, dr, img, clipped.Min, draw.Src)
	return dst
}

// CropAll crops every rectangle, in order.
func (s *Sheet) CropAll(rects []geometry.RectInt) []*image.NRGBA {
	out := make([]*image.NRGBA, len(rects))
	for i, r := range rects {
		out[i] = s.Crop(r)
	}
	return out
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".webp", ".gif", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
