// Package terrain provides the corner height field the water renderer samples,
// per-corner water body labels, body detection and fog-of-war exploration.
package terrain

// NoBody is the label of a corner that belongs to no water body.
const NoBody = 0

// Field is a grid of terrain corners. A map of W×H cells has (W+1)×(H+1)
// corners; each corner carries a ground height and a water body label.
type Field struct {
	cornersX int
	cornersY int
	heights  []float32
	labels   []int32
}

// NewField creates a flat field for a map of cellsX × cellsY cells.
func NewField(cellsX, cellsY int) *Field {
	cx, cy := max(cellsX, 0)+1, max(cellsY, 0)+1
	return &Field{
		cornersX: cx,
		cornersY: cy,
		heights:  make([]float32, cx*cy),
		labels:   make([]int32, cx*cy),
	}
}

// CornerWidth returns the number of corner columns.
func (f *Field) CornerWidth() int { return f.cornersX }

// CornerHeight returns the number of corner rows.
func (f *Field) CornerHeight() int { return f.cornersY }

// CellWidth returns the number of cell columns.
func (f *Field) CellWidth() int { return f.cornersX - 1 }

// CellHeight returns the number of cell rows.
func (f *Field) CellHeight() int { return f.cornersY - 1 }

// Corners returns the full corner rectangle.
func (f *Field) Corners() Rect {
	return Rect{MaxX: f.cornersX - 1, MaxY: f.cornersY - 1}
}

func (f *Field) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= f.cornersX || y >= f.cornersY {
		return 0, false
	}
	return y*f.cornersX + x, true
}

// SetHeight sets the ground height of a corner. Out-of-range corners are ignored.
func (f *Field) SetHeight(x, y int, h float32) {
	if i, ok := f.index(x, y); ok {
		f.heights[i] = h
	}
}

// HeightAtCorner returns the ground height of a corner, clamping coordinates
// to the field.
func (f *Field) HeightAtCorner(x, y int) float32 {
	x = min(max(x, 0), f.cornersX-1)
	y = min(max(y, 0), f.cornersY-1)
	return f.heights[y*f.cornersX+x]
}

// SetLabel assigns a corner to a water body (NoBody clears it).
func (f *Field) SetLabel(x, y, label int) {
	if i, ok := f.index(x, y); ok {
		f.labels[i] = int32(label)
	}
}

// Label returns the water body label of a corner, NoBody when out of range.
func (f *Field) Label(x, y int) int {
	if i, ok := f.index(x, y); ok {
		return int(f.labels[i])
	}
	return NoBody
}

// IsBodyCorner reports whether corner (x, y) belongs to the given body.
func (f *Field) IsBodyCorner(label, x, y int) bool {
	return label != NoBody && f.Label(x, y) == label
}

// HasAnyCorner reports whether any corner of the given body lies in the
// inclusive rectangle (x1, y1)-(x2, y2). The rectangle is clamped to the field.
func (f *Field) HasAnyCorner(label, x1, y1, x2, y2 int) bool {
	if label == NoBody {
		return false
	}
	r, ok := Rect{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}.Intersect(f.Corners())
	if !ok {
		return false
	}
	want := int32(label)
	for y := r.MinY; y <= r.MaxY; y++ {
		row := f.labels[y*f.cornersX : (y+1)*f.cornersX]
		for x := r.MinX; x <= r.MaxX; x++ {
			if row[x] == want {
				return true
			}
		}
	}
	return false
}

// Bounds returns the bounding rectangle of a body's corners.
func (f *Field) Bounds(label int) (Rect, bool) {
	var r Rect
	found := false
	for y := 0; y < f.cornersY; y++ {
		for x := 0; x < f.cornersX; x++ {
			if f.labels[y*f.cornersX+x] != int32(label) {
				continue
			}
			if !found {
				r = Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}
				found = true
				continue
			}
			r = r.Extend(x, y)
		}
	}
	return r, found
}

// ClearLabels removes every body label.
func (f *Field) ClearLabels() {
	clear(f.labels)
}

// HeightRange returns the lowest and highest corner heights.
func (f *Field) HeightRange() (lo, hi float32) {
	lo, hi = f.heights[0], f.heights[0]
	for _, h := range f.heights {
		lo = min(lo, h)
		hi = max(hi, h)
	}
	return lo, hi
}
