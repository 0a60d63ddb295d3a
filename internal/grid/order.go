package grid

import (
	"sort"

	"sprite-slicer/internal/segment"
)

// Order sorts regions top-to-bottom, then left-to-right, using the row and
// column cluster each region's top and left edge falls in. The sort is
// stable, so regions sharing a cell keep their input order. The input slice
// is not modified.
func Order(regions []segment.Region, columns, rows []Cluster) []segment.Region {
	type keyed struct {
		region   segment.Region
		row, col int
	}
	items := make([]keyed, len(regions))
	for i, r := range regions {
		items[i] = keyed{
			region: r,
			row:    IndexOf(rows, r.Top()),
			col:    IndexOf(columns, r.Left()),
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].row != items[j].row {
			return items[i].row < items[j].row
		}
		return items[i].col < items[j].col
	})

	out := make([]segment.Region, len(items))
	for i, it := range items {
		out[i] = it.region
	}
	return out
}
