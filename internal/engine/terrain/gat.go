package terrain

import (
	"github.com/Faultbox/midgard-water/pkg/formats"
)

// FromGAT builds a Field from a ground altitude table and labels its water
// cells as bodies at the given level. GAT altitudes grow downwards, so corner
// heights are negated; every corner is the average of the cell corners that
// meet at it.
func FromGAT(gat *formats.GAT, level float32) (*Field, []Body) {
	w, h := int(gat.Width), int(gat.Height)
	f := NewField(w, h)

	sums := make([]float32, f.cornersX*f.cornersY)
	counts := make([]uint8, f.cornersX*f.cornersY)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := gat.GetCell(x, y)
			// Heights: [0] bottom-left, [1] bottom-right, [2] top-left, [3] top-right.
			corners := [4][2]int{{x, y}, {x + 1, y}, {x, y + 1}, {x + 1, y + 1}}
			for i, c := range corners {
				idx := c[1]*f.cornersX + c[0]
				sums[idx] += -cell.Heights[i]
				counts[idx]++
			}
		}
	}
	for i := range sums {
		if counts[i] > 0 {
			f.heights[i] = sums[i] / float32(counts[i])
		}
	}

	bodies := LabelWaterCells(f, func(x, y int) bool {
		return gat.GetCell(x, y).Type.IsWater()
	}, level)
	return f, bodies
}
