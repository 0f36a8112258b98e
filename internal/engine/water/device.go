package water

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/lighting"
)

// Texture is a backend texture handle. Zero means none.
type Texture uint32

// Textures are the images the techniques sample.
type Textures struct {
	Diffuse     Texture
	Bump        []Texture // one frame for static bump, several for animation
	Environment Texture   // cube map
}

// BumpFrame returns bump frame i, wrapping, or 0 when none is loaded.
func (t Textures) BumpFrame(i int) Texture {
	if len(t.Bump) == 0 {
		return 0
	}
	return t.Bump[i%len(t.Bump)]
}

// TextureTarget selects the texture binding point.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// Combine is a texture compositing stage operation.
type Combine int

const (
	// CombineModulate multiplies the texture with the previous stage.
	CombineModulate Combine = iota
	// CombineModulateConstant multiplies the texture with the constant color.
	CombineModulateConstant
	// CombineDot3 computes the dot product of the texture and the constant,
	// both read as signed vectors.
	CombineDot3
	// CombineInterpolate mixes previous and texture by the constant's alpha.
	CombineInterpolate
)

// BlendMode is the framebuffer blend equation.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// DepthFunc is the depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

// Material holds fixed-function lighting constants.
type Material struct {
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
	Shininess float32
}

// waterMaterial is used by the plain technique.
var waterMaterial = Material{
	Ambient:   mgl32.Vec4{0.6, 0.6, 0.6, 1},
	Diffuse:   mgl32.Vec4{0.8, 0.8, 0.8, 1},
	Specular:  mgl32.Vec4{0.5, 0.5, 0.5, 1},
	Shininess: 16,
}

// upNormal is the normal of flat water.
var upNormal = mgl32.Vec3{0, 0, 1}

// ChunkBuffers are the backend buffers of one chunk.
type ChunkBuffers struct {
	Vertex uint32
	Color  uint32
	Index  uint32

	VertexCap int // corner slots the vertex (and color) buffers hold
	IndexCap  int
	Count     int // indices uploaded
}

// Allocated reports whether buffers exist.
func (b ChunkBuffers) Allocated() bool {
	return b.Vertex != 0
}

// Device is the graphics backend the pipeline drives. All calls happen on
// the thread owning the graphics context.
type Device interface {
	// PushState and PopState save and restore blend, depth, lighting,
	// texture unit and texgen state.
	PushState()
	PopState()

	// BindTexture binds tex on unit and enables the unit; tex 0 disables it.
	BindTexture(unit int, target TextureTarget, tex Texture)
	SetCombine(unit int, mode Combine, constant mgl32.Vec4)
	SetReflectionTexGen(unit int, enabled bool)
	PushTextureMatrix(unit int, m mgl32.Mat4)
	PopTextureMatrix(unit int)

	SetBlend(mode BlendMode)
	SetDepth(fn DepthFunc, write bool)
	// SetLighting enables material lighting from sun; a nil sun keeps the
	// backend's default light.
	SetLighting(sun *lighting.Sun, mat Material)
	// SetVertexColorMaterial makes lit vertices take ambient and diffuse,
	// alpha included, from the per-vertex color array.
	SetVertexColorMaterial(enabled bool)
	SetNormal(n mgl32.Vec3)

	// UploadChunk writes mesh into buf, reusing its buffers when they are
	// large enough, and returns the buffers now holding the mesh.
	UploadChunk(buf ChunkBuffers, mesh *ChunkMesh) (ChunkBuffers, error)
	ReleaseChunk(buf ChunkBuffers)
	DrawChunk(buf ChunkBuffers, withColors bool)
}

// Program is a linked shader program.
type Program interface {
	Valid() bool
	Bind()
	Unbind()
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
}
