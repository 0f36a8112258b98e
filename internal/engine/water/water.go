// Package water turns labelled water bodies on a terrain height field into
// chunked, culled meshes and draws them with the best technique the
// hardware supports.
//
// Grid coordinates are terrain corners. World space is z-up with the grid Y
// axis inverted: corner (x, y) of a body at level L lies at (x, -y, L).
package water

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/terrain"
)

const (
	// ChunkEdge is the maximum chunk extent along each axis, in corners.
	ChunkEdge = 10

	// DefaultDetail is one vertex per terrain corner.
	DefaultDetail = 1

	// AnimRate is the default animated bump frame rate, frames per second.
	AnimRate = 15
)

var (
	ErrNotInitialized = errors.New("water: techniques not initialized")
	ErrNoTerrain      = errors.New("water: no terrain set")
	ErrNoLight        = errors.New("water: technique needs a light source")
	ErrNoFrustum      = errors.New("water: no view frustum")
	ErrInvalidProgram = errors.New("water: shader program not valid")
)

// Terrain is the height field the water is laid over.
type Terrain interface {
	HeightAtCorner(x, y int) float32
	IsBodyCorner(label, x, y int) bool
	// HasAnyCorner reports whether any corner of body label lies in the
	// inclusive rectangle (x1,y1)-(x2,y2).
	HasAnyCorner(label, x1, y1, x2, y2 int) bool
}

// Exploration answers fog-of-war queries per cell.
type Exploration interface {
	IsExplored(x, y int) bool
}

// Topology is the terrain and body set handed to Engine.SetTopology.
type Topology struct {
	Terrain     Terrain
	Exploration Exploration // nil means everything is explored
	Bodies      []terrain.Body
}

// BodyID addresses a WaterBody. Generation changes every time the topology
// is replaced, so stale IDs never resolve.
type BodyID struct {
	Index      int
	Generation uint32
}

// WaterBody is one contiguous water area and the chunks it owns.
type WaterBody struct {
	ID        BodyID
	Label     int
	Footprint terrain.Rect
	Level     float32

	Center mgl32.Vec3
	Radius float32
	BoxMin mgl32.Vec3
	BoxMax mgl32.Vec3

	Chunks []Chunk
}

// Chunk is a sub-rectangle of a body with its own mesh.
type Chunk struct {
	Body      BodyID
	Footprint terrain.Rect // bounds of the valid corners
	Corners   int          // valid corner count, always >= 4

	MinGround float32
	MaxGround float32
	Center    mgl32.Vec3
	BoxMin    mgl32.Vec3
	BoxMax    mgl32.Vec3

	Mesh    ChunkMesh
	Buffers ChunkBuffers

	Dirty      bool
	LastDetail int
}

// worldPoint maps a grid corner to world space at height z.
func worldPoint(x, y float32, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, -y, z}
}

// worldBox returns the world-space box of a corner rectangle spanning
// heights lo..hi.
func worldBox(r terrain.Rect, lo, hi float32) (mgl32.Vec3, mgl32.Vec3) {
	return mgl32.Vec3{float32(r.MinX), -float32(r.MaxY), lo},
		mgl32.Vec3{float32(r.MaxX), -float32(r.MinY), hi}
}
