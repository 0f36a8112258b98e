// Package gldevice implements the water graphics backend on the OpenGL 2.1
// compatibility profile.
package gldevice

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/water"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// texelsPerUnit maps world units to texture coordinates for generated UVs.
const texelsPerUnit = 1.0 / 8

// Device draws water through the fixed-function pipeline.
type Device struct {
	log *zap.Logger
}

var _ water.Device = (*Device)(nil)

// New initializes OpenGL. It must be called after the context is current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{log: logger.Named("gl")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	return d, nil
}

// BeginFrame clears the framebuffer and loads the camera matrices.
func (d *Device) BeginFrame(projection, view mgl32.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&projection[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(&view[0])
}

// Resize updates the viewport.
func (d *Device) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// PushState implements water.Device.
func (d *Device) PushState() {
	gl.PushAttrib(gl.ENABLE_BIT | gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT |
		gl.LIGHTING_BIT | gl.TEXTURE_BIT | gl.CURRENT_BIT)
	gl.PushClientAttrib(gl.CLIENT_VERTEX_ARRAY_BIT)
}

// PopState implements water.Device.
func (d *Device) PopState() {
	gl.PopClientAttrib()
	gl.PopAttrib()
	gl.ActiveTexture(gl.TEXTURE0)
}

func glTarget(t water.TextureTarget) uint32 {
	if t == water.TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

// BindTexture implements water.Device. 2D units get planar texture
// coordinates generated from the vertex position.
func (d *Device) BindTexture(unit int, target water.TextureTarget, tex water.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.Disable(gl.TEXTURE_2D)
	gl.Disable(gl.TEXTURE_CUBE_MAP)
	if tex == 0 {
		return
	}

	gl.Enable(glTarget(target))
	gl.BindTexture(glTarget(target), uint32(tex))
	if target == water.Texture2D {
		planeS := [4]float32{texelsPerUnit, 0, 0, 0}
		planeT := [4]float32{0, texelsPerUnit, 0, 0}
		gl.TexGeni(gl.S, gl.TEXTURE_GEN_MODE, gl.OBJECT_LINEAR)
		gl.TexGeni(gl.T, gl.TEXTURE_GEN_MODE, gl.OBJECT_LINEAR)
		gl.TexGenfv(gl.S, gl.OBJECT_PLANE, &planeS[0])
		gl.TexGenfv(gl.T, gl.OBJECT_PLANE, &planeT[0])
		gl.Enable(gl.TEXTURE_GEN_S)
		gl.Enable(gl.TEXTURE_GEN_T)
	}
}

// SetCombine implements water.Device.
func (d *Device) SetCombine(unit int, mode water.Combine, constant mgl32.Vec4) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if mode == water.CombineModulate {
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
		return
	}

	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)
	gl.TexEnvfv(gl.TEXTURE_ENV, gl.TEXTURE_ENV_COLOR, &constant[0])

	switch mode {
	case water.CombineModulateConstant:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.MODULATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_RGB, gl.CONSTANT)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.PREVIOUS)
	case water.CombineDot3:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.DOT3_RGB)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_RGB, gl.CONSTANT)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.PRIMARY_COLOR)
	case water.CombineInterpolate:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.INTERPOLATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_RGB, gl.PREVIOUS)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC2_RGB, gl.CONSTANT)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND2_RGB, gl.SRC_ALPHA)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.PREVIOUS)
	}
}

// SetReflectionTexGen implements water.Device.
func (d *Device) SetReflectionTexGen(unit int, enabled bool) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	coords := []uint32{gl.TEXTURE_GEN_S, gl.TEXTURE_GEN_T, gl.TEXTURE_GEN_R}
	if !enabled {
		for _, c := range coords {
			gl.Disable(c)
		}
		return
	}
	for _, c := range []uint32{gl.S, gl.T, gl.R} {
		gl.TexGeni(c, gl.TEXTURE_GEN_MODE, gl.REFLECTION_MAP)
	}
	for _, c := range coords {
		gl.Enable(c)
	}
}

// PushTextureMatrix implements water.Device.
func (d *Device) PushTextureMatrix(unit int, m mgl32.Mat4) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.MatrixMode(gl.TEXTURE)
	gl.PushMatrix()
	gl.LoadMatrixf(&m[0])
	gl.MatrixMode(gl.MODELVIEW)
}

// PopTextureMatrix implements water.Device.
func (d *Device) PopTextureMatrix(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.MatrixMode(gl.TEXTURE)
	gl.PopMatrix()
	gl.MatrixMode(gl.MODELVIEW)
}

// SetBlend implements water.Device.
func (d *Device) SetBlend(mode water.BlendMode) {
	switch mode {
	case water.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case water.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

// SetDepth implements water.Device.
func (d *Device) SetDepth(fn water.DepthFunc, write bool) {
	if fn == water.DepthLessEqual {
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.DepthFunc(gl.LESS)
	}
	gl.DepthMask(write)
}

// SetLighting implements water.Device.
func (d *Device) SetLighting(sun *lighting.Sun, mat water.Material) {
	gl.Enable(gl.LIGHTING)
	gl.Enable(gl.LIGHT0)
	if sun != nil {
		pos := sun.Direction.Vec4(0)
		gl.Lightfv(gl.LIGHT0, gl.POSITION, &pos[0])
		gl.Lightfv(gl.LIGHT0, gl.AMBIENT, &sun.Ambient[0])
		gl.Lightfv(gl.LIGHT0, gl.DIFFUSE, &sun.Diffuse[0])
	}
	gl.Materialfv(gl.FRONT_AND_BACK, gl.AMBIENT, &mat.Ambient[0])
	gl.Materialfv(gl.FRONT_AND_BACK, gl.DIFFUSE, &mat.Diffuse[0])
	gl.Materialfv(gl.FRONT_AND_BACK, gl.SPECULAR, &mat.Specular[0])
	gl.Materialf(gl.FRONT_AND_BACK, gl.SHININESS, mat.Shininess)
}

// SetVertexColorMaterial implements water.Device.
func (d *Device) SetVertexColorMaterial(enabled bool) {
	if !enabled {
		gl.Disable(gl.COLOR_MATERIAL)
		return
	}
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)
	gl.Enable(gl.COLOR_MATERIAL)
}

// SetNormal implements water.Device.
func (d *Device) SetNormal(n mgl32.Vec3) {
	gl.Normal3f(n[0], n[1], n[2])
}

// UploadChunk implements water.Device. Buffers that are large enough are
// updated in place.
func (d *Device) UploadChunk(buf water.ChunkBuffers, mesh *water.ChunkMesh) (water.ChunkBuffers, error) {
	slots := mesh.Slots()
	if buf.Vertex == 0 {
		gl.GenBuffers(1, &buf.Vertex)
		gl.GenBuffers(1, &buf.Index)
		buf.VertexCap, buf.IndexCap = 0, 0
	}
	grow := buf.VertexCap < slots

	gl.BindBuffer(gl.ARRAY_BUFFER, buf.Vertex)
	writeFloats(gl.ARRAY_BUFFER, mesh.Positions, grow)

	if mesh.HasColors() {
		if buf.Color == 0 {
			gl.GenBuffers(1, &buf.Color)
			grow = true
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.Color)
		writeFloats(gl.ARRAY_BUFFER, mesh.Colors, grow)
	}
	if grow {
		buf.VertexCap = slots
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.Index)
	if n := len(mesh.Indices); n > 0 {
		if buf.IndexCap < n {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, n*4, unsafe.Pointer(&mesh.Indices[0]), gl.DYNAMIC_DRAW)
			buf.IndexCap = n
		} else {
			gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, n*4, unsafe.Pointer(&mesh.Indices[0]))
		}
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	buf.Count = len(mesh.Indices)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return buf, fmt.Errorf("uploading chunk buffers: GL error 0x%x", code)
	}
	return buf, nil
}

func writeFloats(target uint32, data []float32, grow bool) {
	if len(data) == 0 {
		return
	}
	if grow {
		gl.BufferData(target, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
		return
	}
	gl.BufferSubData(target, 0, len(data)*4, unsafe.Pointer(&data[0]))
}

// ReleaseChunk implements water.Device.
func (d *Device) ReleaseChunk(buf water.ChunkBuffers) {
	for _, id := range []uint32{buf.Vertex, buf.Color, buf.Index} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
}

// DrawChunk implements water.Device.
func (d *Device) DrawChunk(buf water.ChunkBuffers, withColors bool) {
	if buf.Count == 0 {
		return
	}

	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.Vertex)
	gl.VertexPointer(3, gl.FLOAT, 0, gl.PtrOffset(0))

	if withColors && buf.Color != 0 {
		gl.EnableClientState(gl.COLOR_ARRAY)
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.Color)
		gl.ColorPointer(4, gl.FLOAT, 0, gl.PtrOffset(0))
	} else {
		gl.Color4f(1, 1, 1, 1)
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.Index)
	gl.DrawElements(gl.QUADS, int32(buf.Count), gl.UNSIGNED_INT, gl.PtrOffset(0))

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.DisableClientState(gl.COLOR_ARRAY)
	gl.DisableClientState(gl.VERTEX_ARRAY)
}
