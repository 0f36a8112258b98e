package water

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/logger"
)

// ChunkMesh is the CPU side of a chunk's geometry. Corner slots are laid out
// row-major, CornerWidth per row; slots with Valid false hold stale data and
// are never indexed.
type ChunkMesh struct {
	CornerWidth  int
	CornerHeight int
	Detail       int

	Positions []float32 // xyz per slot
	Colors    []float32 // rgba per slot, nil unless translucency is done per vertex
	Valid     []bool
	Indices   []uint32 // 4 per quad: bottom-left, bottom-right, top-right, top-left
}

// Slots returns the number of corner slots.
func (m *ChunkMesh) Slots() int {
	return m.CornerWidth * m.CornerHeight
}

// Quads returns the number of quads in the index buffer.
func (m *ChunkMesh) Quads() int {
	return len(m.Indices) / 4
}

// HasColors reports whether the mesh carries a color buffer.
func (m *ChunkMesh) HasColors() bool {
	return m.Colors != nil
}

// CornerGrid returns the number of corner slots along an axis spanning span
// corners at the given detail: ceil(span/detail) + 1.
func CornerGrid(span, detail int) int {
	detail = max(detail, 1)
	return (span+detail-1)/detail + 1
}

// MeshBuilder regenerates chunk meshes from terrain and exploration state.
type MeshBuilder struct {
	terrain     Terrain
	exploration Exploration

	alphaMultiplier float32
	alphaBase       float32

	rebuilds      int
	reallocations int

	log *zap.Logger
}

// NewMeshBuilder returns a builder over t. A nil exploration treats every
// cell as explored.
func NewMeshBuilder(t Terrain, exploration Exploration) *MeshBuilder {
	return &MeshBuilder{
		terrain:         t,
		exploration:     exploration,
		alphaMultiplier: 0.8,
		log:             logger.Named("water"),
	}
}

// SetSource replaces the terrain and exploration meshes are built from.
func (b *MeshBuilder) SetSource(t Terrain, exploration Exploration) {
	b.terrain = t
	b.exploration = exploration
}

// SetAlpha sets the depth-to-alpha mapping used for per-vertex translucency.
func (b *MeshBuilder) SetAlpha(multiplier, base float32) {
	b.alphaMultiplier = multiplier
	b.alphaBase = base
}

// Rebuilds returns how many meshes have been built.
func (b *MeshBuilder) Rebuilds() int {
	return b.rebuilds
}

// Reallocations returns how many builds had to allocate new buffers.
func (b *MeshBuilder) Reallocations() int {
	return b.reallocations
}

// EnsureFresh rebuilds the chunk mesh if the chunk is dirty or was built at
// another detail. It reports whether a rebuild happened.
func (b *MeshBuilder) EnsureFresh(c *Chunk, body *WaterBody, detail int, withColors bool) bool {
	detail = max(detail, 1)
	if !c.Dirty && c.LastDetail == detail {
		return false
	}
	return b.Build(c, body, detail, withColors)
}

// Build regenerates the chunk mesh unconditionally. It returns false without
// touching the chunk when the builder has no terrain or body does not own c.
func (b *MeshBuilder) Build(c *Chunk, body *WaterBody, detail int, withColors bool) bool {
	if b.terrain == nil || body == nil || c.Body != body.ID {
		b.log.Error("mesh build without terrain or owning body")
		return false
	}
	detail = max(detail, 1)

	fp := c.Footprint
	w := CornerGrid(fp.Width(), detail)
	h := CornerGrid(fp.Height(), detail)

	m := &c.Mesh
	b.prepare(m, w, h, withColors)
	m.Detail = detail

	for j := 0; j < h; j++ {
		gy := min(fp.MinY+j*detail, fp.MaxY)
		for i := 0; i < w; i++ {
			gx := min(fp.MinX+i*detail, fp.MaxX)
			if !b.terrain.HasAnyCorner(body.Label, gx-detail, gy-detail, gx+detail, gy+detail) {
				continue
			}

			k := j*w + i
			m.Valid[k] = true
			m.Positions[k*3+0] = float32(gx)
			m.Positions[k*3+1] = -float32(gy)
			m.Positions[k*3+2] = body.Level

			if withColors {
				depth := body.Level - b.terrain.HeightAtCorner(gx, gy)
				alpha := max(0, min(1, depth*b.alphaMultiplier+b.alphaBase))
				copy(m.Colors[k*4:], []float32{1, 1, 1, alpha})
			}
		}
	}

	for j := 0; j < h-1; j++ {
		gy0 := fp.MinY + j*detail
		gy1 := min(gy0+detail, fp.MaxY)
		for i := 0; i < w-1; i++ {
			gx0 := fp.MinX + i*detail
			gx1 := min(gx0+detail, fp.MaxX)

			if !b.explored(gx0, gy0, gx1, gy1) {
				continue
			}
			if !b.terrain.HasAnyCorner(body.Label, gx0, gy0, gx1, gy1) {
				continue
			}

			tl := uint32(j*w + i)
			tr := tl + 1
			bl := tl + uint32(w)
			br := bl + 1
			if !m.Valid[tl] || !m.Valid[tr] || !m.Valid[bl] || !m.Valid[br] {
				b.log.Debug("quad skipped, corner outside valid grid",
					zap.Int("body", body.Label), zap.Int("x", gx0), zap.Int("y", gy0))
				continue
			}
			m.Indices = append(m.Indices, bl, br, tr, tl)
		}
	}

	c.Dirty = false
	c.LastDetail = detail
	b.rebuilds++
	return true
}

// prepare sizes the mesh buffers for a w×h grid, reusing them in place when
// the grid size and color layout are unchanged.
func (b *MeshBuilder) prepare(m *ChunkMesh, w, h int, withColors bool) {
	n := w * h
	if m.Positions != nil && m.CornerWidth == w && m.CornerHeight == h && m.HasColors() == withColors {
		clear(m.Valid)
		m.Indices = m.Indices[:0]
		return
	}

	m.CornerWidth, m.CornerHeight = w, h
	m.Positions = make([]float32, n*3)
	m.Valid = make([]bool, n)
	m.Colors = nil
	if withColors {
		m.Colors = make([]float32, n*4)
	}
	m.Indices = make([]uint32, 0, (w-1)*(h-1)*4)
	b.reallocations++
}

// explored reports whether any cell in the corner span (x0,y0)-(x1,y1) is
// explored.
func (b *MeshBuilder) explored(x0, y0, x1, y1 int) bool {
	if b.exploration == nil {
		return true
	}
	for y := y0; y < max(y1, y0+1); y++ {
		for x := x0; x < max(x1, x0+1); x++ {
			if b.exploration.IsExplored(x, y) {
				return true
			}
		}
	}
	return false
}
