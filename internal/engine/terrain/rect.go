package terrain

// Rect is an inclusive rectangle of integer grid coordinates.
// For corner grids MaxX is the last corner column; for cell grids it is the
// last cell column.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the extent along X (MaxX - MinX).
func (r Rect) Width() int {
	return r.MaxX - r.MinX
}

// Height returns the extent along Y (MaxY - MinY).
func (r Rect) Height() int {
	return r.MaxY - r.MinY
}

// ContainsPoint reports whether (x, y) lies inside r.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Intersect returns the overlap of r and o and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
	if out.MinX > out.MaxX || out.MinY > out.MaxY {
		return Rect{}, false
	}
	return out, true
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: min(r.MinX, o.MinX),
		MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX),
		MaxY: max(r.MaxY, o.MaxY),
	}
}

// Extend grows r to include (x, y).
func (r Rect) Extend(x, y int) Rect {
	return r.Union(Rect{MinX: x, MinY: y, MaxX: x, MaxY: y})
}
