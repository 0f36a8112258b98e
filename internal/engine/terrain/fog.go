package terrain

// ExploreAll is an exploration source where every cell is visible.
type ExploreAll struct{}

// IsExplored always returns true.
func (ExploreAll) IsExplored(x, y int) bool { return true }

// FogMap tracks which map cells the local player has explored.
type FogMap struct {
	width, height int
	explored      []bool
}

// NewFogMap creates a fully unexplored map of width × height cells.
func NewFogMap(width, height int) *FogMap {
	return &FogMap{
		width:    width,
		height:   height,
		explored: make([]bool, width*height),
	}
}

// IsExplored reports whether a cell has been explored. Cells outside the map
// are unexplored.
func (m *FogMap) IsExplored(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.explored[y*m.width+x]
}

// Reveal explores every cell of the inclusive cell rectangle r. It returns
// the bounding rectangle of the cells that changed and whether any did.
func (m *FogMap) Reveal(r Rect) (Rect, bool) {
	r, ok := r.Intersect(Rect{MaxX: m.width - 1, MaxY: m.height - 1})
	if !ok {
		return Rect{}, false
	}

	var changed Rect
	found := false
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			i := y*m.width + x
			if m.explored[i] {
				continue
			}
			m.explored[i] = true
			if !found {
				changed = Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}
				found = true
				continue
			}
			changed = changed.Extend(x, y)
		}
	}
	return changed, found
}

// RevealAll explores the whole map.
func (m *FogMap) RevealAll() (Rect, bool) {
	return m.Reveal(Rect{MaxX: m.width - 1, MaxY: m.height - 1})
}
