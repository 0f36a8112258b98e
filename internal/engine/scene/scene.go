// Package scene assembles the terrain, water bodies, exploration state and
// lighting the viewer and tools operate on.
package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
	"github.com/Faultbox/midgard-water/internal/engine/water"
	"github.com/Faultbox/midgard-water/pkg/formats"
)

// BasinSize is the cell extent of the generated map.
const BasinSize = 64

// Scene is a loaded map.
type Scene struct {
	Name   string
	Field  *terrain.Field
	Bodies []terrain.Body
	Fog    *terrain.FogMap
	Sun    *lighting.Sun
	Level  float32
}

// Load reads the map named by m, or generates a basin when no GAT file is
// configured.
func Load(m config.MapConfig) (*Scene, error) {
	if m.GATPath == "" {
		f := Basin(BasinSize, BasinSize)
		return New("basin", f, terrain.DetectBodies(f, m.WaterLevel), m.WaterLevel), nil
	}

	gat, err := formats.ParseGATFile(m.GATPath)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", m.GATPath, err)
	}
	f, bodies := terrain.FromGAT(gat, m.WaterLevel)
	name := strings.TrimSuffix(filepath.Base(m.GATPath), filepath.Ext(m.GATPath))
	return New(name, f, bodies, m.WaterLevel), nil
}

// New wraps a labelled field. The central quarter of the map starts explored.
func New(name string, f *terrain.Field, bodies []terrain.Body, level float32) *Scene {
	w, h := f.CellWidth(), f.CellHeight()
	fog := terrain.NewFogMap(w, h)
	fog.Reveal(terrain.Rect{MinX: w / 4, MinY: h / 4, MaxX: w - 1 - w/4, MaxY: h - 1 - h/4})

	return &Scene{
		Name:   name,
		Field:  f,
		Bodies: bodies,
		Fog:    fog,
		Sun:    lighting.DefaultSun(),
		Level:  level,
	}
}

// Basin generates a field with two bowls that dip below the default water
// level and dry ground around them.
func Basin(cellsX, cellsY int) *terrain.Field {
	f := terrain.NewField(cellsX, cellsY)
	bowls := []struct{ x, y, radius, depth float32 }{
		{0.30, 0.35, 0.20, 6},
		{0.70, 0.70, 0.15, 5},
	}

	w, h := float32(cellsX), float32(cellsY)
	for y := 0; y < f.CornerHeight(); y++ {
		for x := 0; x < f.CornerWidth(); x++ {
			height := float32(4)
			for _, b := range bowls {
				dx, dy := float32(x)-b.x*w, float32(y)-b.y*h
				r := b.radius * w
				height -= b.depth * math32.Exp(-(dx*dx+dy*dy)/(r*r))
			}
			f.SetHeight(x, y, height)
		}
	}
	return f
}

// Topology returns the water engine input for this scene.
func (s *Scene) Topology() water.Topology {
	return water.Topology{
		Terrain:     s.Field,
		Exploration: s.Fog,
		Bodies:      s.Bodies,
	}
}

// Bounds returns the world-space box of the terrain and water.
func (s *Scene) Bounds() (lo, hi mgl32.Vec3) {
	ground, top := s.Field.HeightRange()
	top = math32.Max(top, s.Level)
	return mgl32.Vec3{0, -float32(s.Field.CornerHeight() - 1), ground},
		mgl32.Vec3{float32(s.Field.CornerWidth() - 1), 0, top}
}

// RevealAll clears the fog and returns the changed cells.
func (s *Scene) RevealAll() (terrain.Rect, bool) {
	return s.Fog.RevealAll()
}

// Export converts the scene to a GAT table. Corner heights become cell
// corner altitudes and labelled cells become water cells.
func (s *Scene) Export() *formats.GAT {
	w, h := s.Field.CellWidth(), s.Field.CellHeight()
	gat := &formats.GAT{
		Version: formats.GATVersion{Major: 1, Minor: 2},
		Width:   uint32(w),
		Height:  uint32(h),
		Cells:   make([]formats.GATCell, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := &gat.Cells[y*w+x]
			corners := [4][2]int{{x, y}, {x + 1, y}, {x, y + 1}, {x + 1, y + 1}}
			wet := true
			for i, c := range corners {
				cell.Heights[i] = -s.Field.HeightAtCorner(c[0], c[1])
				if s.Field.Label(c[0], c[1]) == terrain.NoBody {
					wet = false
				}
			}
			cell.Type = formats.GATWalkable
			if wet {
				cell.Type = formats.GATWater
			}
		}
	}
	return gat
}
