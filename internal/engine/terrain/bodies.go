package terrain

// Body describes one connected water area found on a Field.
type Body struct {
	Label   int
	Level   float32 // water surface height, same units as corner heights
	Bounds  Rect    // corner footprint
	Corners int     // number of labelled corners
}

// DetectBodies labels every group of 4-connected corners whose ground lies
// below level as its own water body. Existing labels are replaced. Labels are
// assigned in row-major order of each body's first corner, so the result is
// deterministic for a given field.
func DetectBodies(f *Field, level float32) []Body {
	mask := make([]bool, len(f.heights))
	for i, h := range f.heights {
		mask[i] = h < level
	}
	return labelMask(f, mask, level)
}

// LabelWaterCells labels the corners of every cell for which water reports
// true, grouping connected corners into bodies at the given level.
func LabelWaterCells(f *Field, water func(cellX, cellY int) bool, level float32) []Body {
	mask := make([]bool, len(f.heights))
	for y := 0; y < f.CellHeight(); y++ {
		for x := 0; x < f.CellWidth(); x++ {
			if !water(x, y) {
				continue
			}
			for _, c := range [4][2]int{{x, y}, {x + 1, y}, {x, y + 1}, {x + 1, y + 1}} {
				mask[c[1]*f.cornersX+c[0]] = true
			}
		}
	}
	return labelMask(f, mask, level)
}

// labelMask flood-fills the masked corners breadth-first from row-major seeds.
func labelMask(f *Field, mask []bool, level float32) []Body {
	f.ClearLabels()

	var bodies []Body
	var frontier []int
	for seed, in := range mask {
		if !in || f.labels[seed] != NoBody {
			continue
		}

		label := len(bodies) + 1
		sx, sy := seed%f.cornersX, seed/f.cornersX
		body := Body{
			Label:  label,
			Level:  level,
			Bounds: Rect{MinX: sx, MinY: sy, MaxX: sx, MaxY: sy},
		}

		f.labels[seed] = int32(label)
		frontier = append(frontier[:0], seed)
		for len(frontier) > 0 {
			current := frontier[0]
			frontier = frontier[1:]
			body.Corners++

			x, y := current%f.cornersX, current/f.cornersX
			body.Bounds = body.Bounds.Extend(x, y)

			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				i, ok := f.index(n[0], n[1])
				if !ok || !mask[i] || f.labels[i] != NoBody {
					continue
				}
				f.labels[i] = int32(label)
				frontier = append(frontier, i)
			}
		}
		bodies = append(bodies, body)
	}
	return bodies
}
