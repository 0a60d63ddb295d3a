// Package geometry provides the integer geometric types shared by the
// segmentation, grid and animation packages.
package geometry

import (
	"image"
)

// PointInt represents a 2D point with integer pixel coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for PointInt{X: x, Y: y}.
func Pt(x, y int) PointInt {
	return PointInt{X: x, Y: y}
}

// ImagePoint converts to an image.Point.
func (p PointInt) ImagePoint() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// RectInt represents a rectangle with integer coordinates.
// Width and Height count pixels, so a single pixel has Width == Height == 1.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a RectInt from its inclusive corner coordinates.
func NewRectInt(minX, minY, maxX, maxY int) RectInt {
	return RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// FromRectangle converts an image.Rectangle (exclusive max) to a RectInt.
func FromRectangle(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rectangle converts to an image.Rectangle with exclusive max corner.
func (r RectInt) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// TopLeft returns the top-left corner.
func (r RectInt) TopLeft() PointInt {
	return PointInt{X: r.X, Y: r.Y}
}

// MaxX returns the right-most column covered by the rectangle.
func (r RectInt) MaxX() int {
	return r.X + r.Width - 1
}

// MaxY returns the bottom-most row covered by the rectangle.
func (r RectInt) MaxY() int {
	return r.Y + r.Height - 1
}

// Area returns Width * Height.
func (r RectInt) Area() int {
	return r.Width * r.Height
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the pixel (x, y) lies inside the rectangle.
func (r RectInt) Contains(p PointInt) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Within returns true if r lies completely inside outer.
func (r RectInt) Within(outer RectInt) bool {
	return r.X >= outer.X && r.Y >= outer.Y &&
		r.X+r.Width <= outer.X+outer.Width &&
		r.Y+r.Height <= outer.Y+outer.Height
}

// Union returns the smallest rectangle containing both rectangles.
func (r RectInt) Union(other RectInt) RectInt {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	x2 := max(r.X+r.Width, other.X+other.Width)
	y2 := max(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Size represents an integer 2D size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaxSize returns the smallest size that fits every rectangle.
func MaxSize(rects []RectInt) Size {
	var s Size
	for _, r := range rects {
		s.Width = max(s.Width, r.Width)
		s.Height = max(s.Height, r.Height)
	}
	return s
}
