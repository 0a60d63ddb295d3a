package grid

import (
	"fmt"
	"image"

	"sprite-slicer/pkg/geometry"
)

// Uniform splits bounds into columns*rows equal cells, in reading order.
// This is the manual layout used when the caller already knows the grid.
// Remainder pixels on the right and bottom edges are left out.
func Uniform(bounds image.Rectangle, columns, rows int) (*Descriptor, error) {
	if columns < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, columns, rows)
	}
	if columns > bounds.Dx() || rows > bounds.Dy() {
		return nil, fmt.Errorf("%w: %dx%d does not fit a %dx%d image",
			ErrInvalidDimensions, columns, rows, bounds.Dx(), bounds.Dy())
	}

	cellW := bounds.Dx() / columns
	cellH := bounds.Dy() / rows
	d := &Descriptor{
		Columns: columns,
		Rows:    rows,
		Sprites: make([]geometry.RectInt, 0, columns*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			d.Sprites = append(d.Sprites, geometry.RectInt{
				X:      bounds.Min.X + col*cellW,
				Y:      bounds.Min.Y + row*cellH,
				Width:  cellW,
				Height: cellH,
			})
		}
	}
	return d, nil
}
