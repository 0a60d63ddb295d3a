package segment

import (
	"sprite-slicer/pkg/geometry"
)

// ExtractRegions finds every 4-connected foreground component of m.
// Seeds are taken in row-major order, so the output order is deterministic.
// Components with fewer than minSpriteSize pixels are discarded as noise.
// Region bounds are in image coordinates (m.Origin is added back).
//
// Returns *EmptySegmentationError when no region survives.
func ExtractRegions(m *Map, minSpriteSize int) ([]Region, error) {
	w, h := m.Width, m.Height
	visited := newBitset(w * h)

	var regions []Region
	discarded := 0
	foreground := 0

	// Stack for flood fill (use slice as stack), reused across seeds
	var stack []int

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			seed := sy*w + sx
			if visited.get(seed) || !m.bits.get(seed) {
				continue
			}

			minX, minY := sx, sy
			maxX, maxY := sx, sy
			pixelCount := 0

			visited.set(seed)
			stack = append(stack[:0], seed)
			for len(stack) > 0 {
				idx := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := idx%w, idx/w

				pixelCount++
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)

				// Add neighbors (4-connected)
				if x+1 < w {
					stack = push(stack, visited, m.bits, idx+1)
				}
				if x > 0 {
					stack = push(stack, visited, m.bits, idx-1)
				}
				if y+1 < h {
					stack = push(stack, visited, m.bits, idx+w)
				}
				if y > 0 {
					stack = push(stack, visited, m.bits, idx-w)
				}
			}

			foreground += pixelCount
			if pixelCount < minSpriteSize {
				discarded++
				continue
			}
			regions = append(regions, Region{
				Bounds:     geometry.NewRectInt(minX+m.Origin.X, minY+m.Origin.Y, maxX+m.Origin.X, maxY+m.Origin.Y),
				PixelCount: pixelCount,
			})
		}
	}

	if len(regions) == 0 {
		return nil, &EmptySegmentationError{
			ForegroundPixels: foreground,
			Discarded:        discarded,
			MinSpriteSize:    minSpriteSize,
		}
	}
	return regions, nil
}

// push marks idx visited and appends it when it is unvisited foreground.
func push(stack []int, visited, fg bitset, idx int) []int {
	if visited.get(idx) || !fg.get(idx) {
		return stack
	}
	visited.set(idx)
	return append(stack, idx)
}
