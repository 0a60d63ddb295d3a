package grid

import (
	"fmt"
	"slices"

	"sprite-slicer/internal/segment"
	"sprite-slicer/pkg/geometry"
)

// Infer derives the grid layout of regions and validates it.
//
// Left edges are clustered with columnTolerance into columns and top edges
// with rowTolerance into rows. The grid is accepted only when there are
// exactly columns*rows regions and every (column, row) cell holds exactly
// one region; otherwise an *IrregularGridError lists the offending cells.
// Infer never retries with a different tolerance.
func Infer(regions []segment.Region, columnTolerance, rowTolerance float64) (*Descriptor, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	if !(columnTolerance >= 0) || !(rowTolerance >= 0) {
		return nil, fmt.Errorf("%w: column=%g row=%g", ErrNegativeTolerance, columnTolerance, rowTolerance)
	}

	lefts := make([]int, len(regions))
	tops := make([]int, len(regions))
	for i, r := range regions {
		lefts[i] = r.Left()
		tops[i] = r.Top()
	}
	columns := ClusterValues(lefts, columnTolerance)
	rows := ClusterValues(tops, rowTolerance)

	if cells, unlisted := checkCells(regions, columns, rows); len(cells) > 0 || unlisted > 0 {
		return nil, &IrregularGridError{
			Columns:  len(columns),
			Rows:     len(rows),
			Regions:  len(regions),
			Cells:    cells,
			Unlisted: unlisted,
		}
	}

	ordered := Order(regions, columns, rows)
	d := &Descriptor{
		Columns:        len(columns),
		Rows:           len(rows),
		Sprites:        make([]geometry.RectInt, len(ordered)),
		Regions:        ordered,
		ColumnClusters: columns,
		RowClusters:    rows,
	}
	for i, r := range ordered {
		d.Sprites[i] = r.Bounds
	}
	return d, nil
}

// maxMissingCells caps how many empty cells checkCells lists. Scattered
// regions at tolerance 0 give a grid of up to len(regions)^2 cells.
const maxMissingCells = 256

// checkCells counts regions per (column, row) cell and returns, in reading
// order, every occupied cell that does not hold exactly one region and up to
// maxMissingCells empty cells. unlisted is the number of empty cells beyond
// the cap. Only occupied cells are counted, so memory stays O(len(regions)).
func checkCells(regions []segment.Region, columns, rows []Cluster) (bad []Cell, unlisted int) {
	counts := make(map[int]int, len(regions))
	for _, r := range regions {
		c := IndexOf(columns, r.Left())
		w := IndexOf(rows, r.Top())
		counts[w*len(columns)+c]++
	}
	occupied := make([]int, 0, len(counts))
	for i := range counts {
		occupied = append(occupied, i)
	}
	slices.Sort(occupied)

	cell := func(i, n int) Cell {
		c, w := i%len(columns), i/len(columns)
		return Cell{Column: c, Row: w, Count: n, X: columns[c].Mean, Y: rows[w].Mean}
	}
	listed := 0
	// gap reports the empty cells in [from, to).
	gap := func(from, to int) {
		for i := from; i < to; i++ {
			if listed == maxMissingCells {
				unlisted += to - i
				return
			}
			bad = append(bad, cell(i, 0))
			listed++
		}
	}

	next := 0
	for _, i := range occupied {
		gap(next, i)
		if n := counts[i]; n != 1 {
			bad = append(bad, cell(i, n))
		}
		next = i + 1
	}
	gap(next, len(columns)*len(rows))
	return bad, unlisted
}
