// Package grid infers the column/row layout of a set of sprite regions and
// validates that they form a complete rectangle.
package grid

import (
	"errors"
	"fmt"
	"strings"

	"sprite-slicer/internal/segment"
	"sprite-slicer/pkg/geometry"
)

// Default clustering tolerance in pixels.
const DefaultTolerance = 10.0

var (
	// ErrIrregularGrid is matched by every *IrregularGridError.
	ErrIrregularGrid = errors.New("grid: regions do not form a complete grid")
	// ErrNoRegions indicates Infer was called without regions.
	ErrNoRegions = errors.New("grid: no regions to infer a grid from")
	// ErrNegativeTolerance indicates a tolerance below zero.
	ErrNegativeTolerance = errors.New("grid: tolerance must be a number >= 0")
	// ErrInvalidDimensions indicates unusable manual column/row counts.
	ErrInvalidDimensions = errors.New("grid: invalid column/row count")
)

// Cluster is a set of edge coordinates treated as one grid line.
type Cluster struct {
	Mean  float64 `json:"mean"`  // representative value
	Count int     `json:"count"` // number of member values
	Min   int     `json:"min"`   // smallest member
	Max   int     `json:"max"`   // largest member
}

// Contains reports whether v lies within the member range of c.
func (c Cluster) Contains(v int) bool {
	return v >= c.Min && v <= c.Max
}

// Descriptor is a validated grid: dimensions plus sprite boxes in reading order.
type Descriptor struct {
	Columns int                `json:"columns"`
	Rows    int                `json:"rows"`
	Sprites []geometry.RectInt `json:"sprites"`

	// Regions, ColumnClusters and RowClusters are only set by Infer.
	Regions        []segment.Region `json:"-"`
	ColumnClusters []Cluster        `json:"-"`
	RowClusters    []Cluster        `json:"-"`
}

// Len returns the number of sprites.
func (d *Descriptor) Len() int {
	return len(d.Sprites)
}

// At returns the sprite box at (column, row), both zero-based.
func (d *Descriptor) At(column, row int) (geometry.RectInt, bool) {
	if column < 0 || row < 0 || column >= d.Columns || row >= d.Rows {
		return geometry.RectInt{}, false
	}
	i := row*d.Columns + column
	if i >= len(d.Sprites) {
		return geometry.RectInt{}, false
	}
	return d.Sprites[i], true
}

// Cell identifies a grid cell that does not hold exactly one region.
type Cell struct {
	Column int     `json:"column"`
	Row    int     `json:"row"`
	Count  int     `json:"count"` // 0 = missing, >1 = duplicated
	X      float64 `json:"x"`     // column line position
	Y      float64 `json:"y"`     // row line position
}

// IrregularGridError reports why a region set is not a complete grid.
type IrregularGridError struct {
	Columns int
	Rows    int
	Regions int
	Cells   []Cell

	// Unlisted counts missing cells left out of Cells once the
	// enumeration cap is reached.
	Unlisted int
}

// Missing returns the cells with no region.
func (e *IrregularGridError) Missing() []Cell {
	return e.filter(func(c Cell) bool { return c.Count == 0 })
}

// Duplicated returns the cells with more than one region.
func (e *IrregularGridError) Duplicated() []Cell {
	return e.filter(func(c Cell) bool { return c.Count > 1 })
}

func (e *IrregularGridError) filter(keep func(Cell) bool) []Cell {
	var out []Cell
	for _, c := range e.Cells {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (e *IrregularGridError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "irregular grid: %d regions for %dx%d grid (want %d)",
		e.Regions, e.Columns, e.Rows, e.Columns*e.Rows)
	if m := e.Missing(); len(m) > 0 || e.Unlisted > 0 {
		sb.WriteString("; missing")
		writeCells(&sb, m, e.Unlisted)
	}
	if d := e.Duplicated(); len(d) > 0 {
		sb.WriteString("; duplicated")
		writeCells(&sb, d, 0)
	}
	return sb.String()
}

func writeCells(sb *strings.Builder, cells []Cell, unlisted int) {
	const maxListed = 8
	for i, c := range cells {
		if i == maxListed {
			unlisted += len(cells) - maxListed
			break
		}
		fmt.Fprintf(sb, " (col %d, row %d)", c.Column, c.Row)
	}
	if unlisted > 0 {
		fmt.Fprintf(sb, " ... (%d more)", unlisted)
	}
}

// Is makes errors.Is(err, ErrIrregularGrid) succeed.
func (e *IrregularGridError) Is(target error) bool {
	return target == ErrIrregularGrid
}
