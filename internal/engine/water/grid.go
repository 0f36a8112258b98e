package water

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/terrain"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// minChunkCorners is the fewest valid corners that can form a quad.
const minChunkCorners = 4

// NewBody builds a WaterBody with its chunk grid from a detected terrain body.
func NewBody(id BodyID, b terrain.Body, t Terrain) WaterBody {
	body := WaterBody{
		ID:        id,
		Label:     b.Label,
		Footprint: b.Bounds,
		Level:     b.Level,
	}
	body.Chunks = BuildChunks(&body, t)
	body.updateBounds()
	return body
}

// updateBounds derives the body box, center and radius from its footprint,
// level and the ground under its chunks.
func (b *WaterBody) updateBounds() {
	lo := b.Level
	for i := range b.Chunks {
		lo = min(lo, b.Chunks[i].MinGround)
	}
	b.BoxMin, b.BoxMax = worldBox(b.Footprint, lo, b.Level)
	b.Center = b.BoxMin.Add(b.BoxMax).Mul(0.5)
	b.Radius = b.BoxMax.Sub(b.BoxMin).Len() / 2
}

// BuildChunks partitions the body footprint into tiles of at most ChunkEdge
// per axis, row-major from the footprint minimum. Adjacent tiles share their
// edge corners. Tiles with fewer than four valid corners are dropped; the
// rest shrink to the bounds of their valid corners.
func BuildChunks(body *WaterBody, t Terrain) []Chunk {
	log := logger.Named("water")
	fp := body.Footprint

	var chunks []Chunk
	for y := fp.MinY; y < fp.MaxY; y += ChunkEdge {
		y2 := min(y+ChunkEdge, fp.MaxY)
		for x := fp.MinX; x < fp.MaxX; x += ChunkEdge {
			tile := terrain.Rect{MinX: x, MinY: y, MaxX: min(x+ChunkEdge, fp.MaxX), MaxY: y2}

			c, ok := scanTile(body, t, tile)
			if !ok {
				log.Debug("chunk discarded",
					zap.Int("body", body.Label),
					zap.Int("x", tile.MinX), zap.Int("y", tile.MinY),
					zap.Int("corners", c.Corners),
				)
				continue
			}
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// scanTile collects the valid corners of tile. ok is false when they cannot
// form a quad.
func scanTile(body *WaterBody, t Terrain, tile terrain.Rect) (c Chunk, ok bool) {
	for y := tile.MinY; y <= tile.MaxY; y++ {
		for x := tile.MinX; x <= tile.MaxX; x++ {
			if !t.IsBodyCorner(body.Label, x, y) {
				continue
			}
			h := t.HeightAtCorner(x, y)
			if c.Corners == 0 {
				c.Footprint = terrain.Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}
				c.MinGround, c.MaxGround = h, h
			} else {
				c.Footprint = c.Footprint.Extend(x, y)
				c.MinGround = min(c.MinGround, h)
				c.MaxGround = max(c.MaxGround, h)
			}
			c.Corners++
		}
	}
	if c.Corners < minChunkCorners {
		return c, false
	}

	fp := c.Footprint
	c.Body = body.ID
	c.Center = worldPoint(float32(fp.MinX+fp.MaxX)/2, float32(fp.MinY+fp.MaxY)/2, body.Level)
	c.BoxMin, c.BoxMax = worldBox(fp, min(c.MinGround, body.Level), body.Level)
	c.Dirty = true
	return c, true
}

// chunkRadius is the culling sphere radius of a full chunk.
var chunkRadius = float32(ChunkEdge) / 2 * math32.Sqrt(2)
