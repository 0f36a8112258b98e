package terrain

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Faultbox/midgard-water/pkg/formats"
)

func TestRectIntersect(t *testing.T) {
	a := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := Rect{MinX: 5, MinY: 8, MaxX: 20, MaxY: 20}

	got, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Rect{MinX: 5, MinY: 8, MaxX: 10, MaxY: 10}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	if _, ok := a.Intersect(Rect{MinX: 11, MinY: 0, MaxX: 12, MaxY: 3}); ok {
		t.Error("expected no overlap")
	}
	if !a.Contains(want) {
		t.Error("expected containment")
	}
	if a.Contains(b) {
		t.Error("unexpected containment")
	}
}

func TestFieldLabelsAndQueries(t *testing.T) {
	f := NewField(4, 3)
	if f.CornerWidth() != 5 || f.CornerHeight() != 4 {
		t.Fatalf("expected 5x4 corners, got %dx%d", f.CornerWidth(), f.CornerHeight())
	}

	f.SetLabel(2, 1, 7)
	f.SetHeight(2, 1, -3)

	if !f.IsBodyCorner(7, 2, 1) {
		t.Error("expected corner (2,1) in body 7")
	}
	if f.IsBodyCorner(NoBody, 0, 0) {
		t.Error("NoBody is never a body")
	}
	if !f.HasAnyCorner(7, 0, 0, 2, 1) {
		t.Error("expected HasAnyCorner to find (2,1)")
	}
	if f.HasAnyCorner(7, 3, 0, 4, 3) {
		t.Error("unexpected corner in right-hand strip")
	}
	if !f.HasAnyCorner(7, -5, -5, 50, 50) {
		t.Error("expected clamped rectangle to still find the corner")
	}
	if f.HeightAtCorner(2, 1) != -3 {
		t.Errorf("unexpected height %v", f.HeightAtCorner(2, 1))
	}
	if f.HeightAtCorner(-1, 100) != f.HeightAtCorner(0, 3) {
		t.Error("expected out-of-range height lookup to clamp")
	}

	r, ok := f.Bounds(7)
	if !ok || r != (Rect{MinX: 2, MinY: 1, MaxX: 2, MaxY: 1}) {
		t.Errorf("Bounds = %+v, %v", r, ok)
	}
}

// basin returns a field with two separate depressions.
func basin() *Field {
	f := NewField(9, 4)
	for y := 0; y < f.CornerHeight(); y++ {
		for x := 0; x < f.CornerWidth(); x++ {
			f.SetHeight(x, y, 5)
		}
	}
	for _, c := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}, {7, 2}, {8, 2}, {8, 3}} {
		f.SetHeight(c[0], c[1], -1)
	}
	return f
}

func TestDetectBodies(t *testing.T) {
	f := basin()
	bodies := DetectBodies(f, 0)

	if len(bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(bodies))
	}

	first := bodies[0]
	if first.Label != 1 || first.Corners != 4 {
		t.Errorf("unexpected first body %+v", first)
	}
	if first.Bounds != (Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}) {
		t.Errorf("unexpected first bounds %+v", first.Bounds)
	}
	second := bodies[1]
	if second.Label != 2 || second.Corners != 3 {
		t.Errorf("unexpected second body %+v", second)
	}
	if second.Level != 0 {
		t.Errorf("expected level 0, got %v", second.Level)
	}
	if f.Label(8, 3) != 2 || f.Label(0, 0) != NoBody {
		t.Error("labels not written to the field")
	}
}

func TestDetectBodiesDeterministic(t *testing.T) {
	a := DetectBodies(basin(), 0)
	b := DetectBodies(basin(), 0)
	if len(a) != len(b) {
		t.Fatalf("body counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("body %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestLabelWaterCells(t *testing.T) {
	f := NewField(4, 4)
	// Two diagonal water cells share corner (2,2) and form one body.
	water := map[[2]int]bool{{1, 1}: true, {2, 2}: true}
	bodies := LabelWaterCells(f, func(x, y int) bool { return water[[2]int{x, y}] }, 3)

	if len(bodies) != 1 {
		t.Fatalf("expected 1 body, got %d", len(bodies))
	}
	if bodies[0].Corners != 7 {
		t.Errorf("expected 7 corners, got %d", bodies[0].Corners)
	}
	if bodies[0].Bounds != (Rect{MinX: 1, MinY: 1, MaxX: 3, MaxY: 3}) {
		t.Errorf("unexpected bounds %+v", bodies[0].Bounds)
	}
}

func TestFogMapReveal(t *testing.T) {
	m := NewFogMap(8, 8)
	if m.IsExplored(3, 3) {
		t.Fatal("expected fresh map unexplored")
	}

	changed, ok := m.Reveal(Rect{MinX: 2, MinY: 2, MaxX: 4, MaxY: 3})
	if !ok || changed != (Rect{MinX: 2, MinY: 2, MaxX: 4, MaxY: 3}) {
		t.Errorf("Reveal = %+v, %v", changed, ok)
	}
	if !m.IsExplored(3, 3) {
		t.Error("expected (3,3) explored")
	}

	// Overlapping reveal only reports new cells.
	changed, ok = m.Reveal(Rect{MinX: 4, MinY: 3, MaxX: 5, MaxY: 3})
	if !ok || changed != (Rect{MinX: 5, MinY: 3, MaxX: 5, MaxY: 3}) {
		t.Errorf("second Reveal = %+v, %v", changed, ok)
	}

	if _, ok := m.Reveal(Rect{MinX: 2, MinY: 2, MaxX: 3, MaxY: 3}); ok {
		t.Error("expected no change revealing explored cells")
	}
	if _, ok := m.Reveal(Rect{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}); ok {
		t.Error("expected no change outside the map")
	}
	if m.IsExplored(-1, 0) {
		t.Error("outside cells are never explored")
	}
}

func buildGAT(t *testing.T, w, h uint32, cellType func(x, y int) formats.GATCellType, height float32) *formats.GAT {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.WriteString("GRAT")
	buf.WriteByte(2)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, w)
	binary.Write(buf, binary.LittleEndian, h)
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			for i := 0; i < 4; i++ {
				binary.Write(buf, binary.LittleEndian, height)
			}
			binary.Write(buf, binary.LittleEndian, uint32(cellType(x, y)))
		}
	}
	gat, err := formats.ParseGAT(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseGAT failed: %v", err)
	}
	return gat
}

func TestFromGAT(t *testing.T) {
	gat := buildGAT(t, 3, 3, func(x, y int) formats.GATCellType {
		if x == 1 && y == 1 {
			return formats.GATWater
		}
		return formats.GATWalkable
	}, -4)

	f, bodies := FromGAT(gat, 2)
	if f.CornerWidth() != 4 || f.CornerHeight() != 4 {
		t.Fatalf("expected 4x4 corners, got %dx%d", f.CornerWidth(), f.CornerHeight())
	}
	if got := f.HeightAtCorner(2, 2); got != 4 {
		t.Errorf("expected negated altitude 4, got %v", got)
	}
	if len(bodies) != 1 {
		t.Fatalf("expected 1 body, got %d", len(bodies))
	}
	if bodies[0].Bounds != (Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}) {
		t.Errorf("unexpected bounds %+v", bodies[0].Bounds)
	}
	if bodies[0].Level != 2 {
		t.Errorf("expected level 2, got %v", bodies[0].Level)
	}
}
