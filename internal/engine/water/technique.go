package water

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/capability"
)

// technique draws chunks with one rendering family. begin and end bracket
// every draw of a frame; draw may issue several passes.
type technique interface {
	needsLight() bool
	begin() error
	draw(c *Chunk)
	end()
}

func newTechniques(p *Pipeline) [4]technique {
	var t [4]technique
	t[capability.TechniquePlain] = plainTechnique{p}
	t[capability.TechniqueReflectOnly] = reflectTechnique{p}
	t[capability.TechniqueBumpReflect] = bumpTechnique{p}
	t[capability.TechniqueShader] = shaderTechnique{p}
	return t
}

// blendFor returns the blend mode of the first pass.
func (p *Pipeline) blendFor() BlendMode {
	if p.set.Translucency {
		return BlendAlpha
	}
	return BlendNone
}

// reflectionConstant carries the reflection strength in alpha for
// CombineInterpolate.
func (p *Pipeline) reflectionConstant() mgl32.Vec4 {
	return mgl32.Vec4{0, 0, 0, p.params.ReflectionStrength}
}

// bindEnvironment sets unit up to mix in the reflected environment.
func (p *Pipeline) bindEnvironment(unit int) {
	p.dev.BindTexture(unit, TextureCube, p.textures.Environment)
	p.dev.SetReflectionTexGen(unit, true)
	p.dev.SetCombine(unit, CombineInterpolate, p.reflectionConstant())
}

// plainTechnique draws textured quads lit by the fixed material.
type plainTechnique struct{ p *Pipeline }

func (t plainTechnique) needsLight() bool { return false }

func (t plainTechnique) begin() error {
	p := t.p
	p.dev.SetBlend(p.blendFor())
	p.dev.SetLighting(p.frame.Light, waterMaterial)
	p.dev.SetVertexColorMaterial(p.set.NeedsColorBuffer())
	p.dev.BindTexture(0, Texture2D, p.textures.Diffuse)
	p.dev.SetCombine(0, CombineModulate, mgl32.Vec4{})
	p.dev.PushTextureMatrix(0, p.frame.TextureMatrix)
	return nil
}

func (t plainTechnique) draw(c *Chunk) {
	t.p.dev.SetNormal(upNormal)
	t.p.dev.DrawChunk(c.Buffers, c.Mesh.HasColors())
}

func (t plainTechnique) end() {
	t.p.dev.PopTextureMatrix(0)
}

// reflectTechnique draws diffuse mixed with the environment map in one pass.
type reflectTechnique struct{ p *Pipeline }

func (t reflectTechnique) needsLight() bool { return false }

func (t reflectTechnique) begin() error {
	p := t.p
	p.dev.SetBlend(p.blendFor())
	p.dev.BindTexture(0, Texture2D, p.textures.Diffuse)
	p.dev.SetCombine(0, CombineModulate, mgl32.Vec4{})
	p.dev.PushTextureMatrix(0, p.frame.TextureMatrix)
	p.bindEnvironment(1)
	p.dev.PushTextureMatrix(1, p.frame.TextureMatrix)
	return nil
}

func (t reflectTechnique) draw(c *Chunk) {
	t.p.dev.DrawChunk(c.Buffers, c.Mesh.HasColors())
}

func (t reflectTechnique) end() {
	t.p.dev.PopTextureMatrix(1)
	t.p.dev.PopTextureMatrix(0)
}

// bumpTechnique draws two passes per chunk: bump×diffuse, then ambient and
// reflection added on top.
type bumpTechnique struct{ p *Pipeline }

func (t bumpTechnique) needsLight() bool { return true }

func (t bumpTechnique) begin() error {
	p := t.p
	dir := p.frame.Light.Direction
	encoded := mgl32.Vec4{dir[0]*0.5 + 0.5, dir[1]*0.5 + 0.5, dir[2]*0.5 + 0.5, 1}

	p.dev.SetBlend(p.blendFor())
	p.dev.BindTexture(0, Texture2D, p.textures.BumpFrame(p.frame.BumpFrame))
	p.dev.SetCombine(0, CombineDot3, encoded)
	p.dev.PushTextureMatrix(0, p.frame.TextureMatrix)
	p.dev.BindTexture(1, Texture2D, p.textures.Diffuse)
	p.dev.SetCombine(1, CombineModulate, mgl32.Vec4{})
	p.dev.PushTextureMatrix(1, p.frame.TextureMatrix)
	return nil
}

func (t bumpTechnique) draw(c *Chunk) {
	p := t.p
	p.dev.DrawChunk(c.Buffers, c.Mesh.HasColors())

	p.dev.PushState()
	p.dev.SetBlend(BlendAdditive)
	p.dev.SetDepth(DepthLessEqual, false)
	p.dev.BindTexture(0, Texture2D, p.textures.Diffuse)
	p.dev.SetCombine(0, CombineModulateConstant, p.frame.Light.Ambient)
	if p.set.Reflections {
		p.bindEnvironment(1)
	} else {
		p.dev.BindTexture(1, Texture2D, 0)
	}
	p.dev.DrawChunk(c.Buffers, false)
	p.dev.PopState()
}

func (t bumpTechnique) end() {
	t.p.dev.PopTextureMatrix(1)
	t.p.dev.PopTextureMatrix(0)
}

// shaderTechnique draws everything in one programmable pass.
type shaderTechnique struct{ p *Pipeline }

func (t shaderTechnique) needsLight() bool { return true }

func (t shaderTechnique) begin() error {
	p := t.p
	if p.program == nil || !p.program.Valid() {
		return ErrInvalidProgram
	}

	alpha := float32(1)
	if p.set.Translucency {
		alpha = p.params.ShaderAlpha
	}

	p.dev.SetBlend(BlendAlpha)
	p.dev.BindTexture(0, Texture2D, p.textures.Diffuse)
	p.dev.PushTextureMatrix(0, p.frame.TextureMatrix)
	p.dev.BindTexture(1, Texture2D, p.textures.BumpFrame(p.frame.BumpFrame))
	p.dev.PushTextureMatrix(1, p.frame.TextureMatrix)
	p.dev.BindTexture(2, TextureCube, p.textures.Environment)

	prog := p.program
	prog.Bind()
	prog.SetInt("uDiffuse", 0)
	prog.SetInt("uBump", 1)
	prog.SetInt("uEnvironment", 2)
	prog.SetFloat("uTime", p.frame.Time)
	prog.SetFloat("uReflectionStrength", p.params.ReflectionStrength)
	prog.SetFloat("uAlpha", alpha)
	prog.SetVec3("uLightDir", p.frame.Light.Direction)
	prog.SetVec4("uAmbient", p.frame.Light.Ambient)
	prog.SetVec4("uDiffuseColor", p.frame.Light.Diffuse)
	return nil
}

func (t shaderTechnique) draw(c *Chunk) {
	t.p.dev.DrawChunk(c.Buffers, false)
}

func (t shaderTechnique) end() {
	t.p.program.Unbind()
	t.p.dev.PopTextureMatrix(1)
	t.p.dev.PopTextureMatrix(0)
}
