package water

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/frustum"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
)

var errUploadFailed = errors.New("buffer unmap failed")

// recordingDevice records every call and tracks state scopes.
type recordingDevice struct {
	calls []string

	depth     int // PushState nesting
	maxDepth  int
	texStacks map[int]int

	nextID     uint32
	uploads    int
	releases   int
	draws      int
	colorDraws int
	failUpload bool

	bound map[int]Texture
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{texStacks: map[int]int{}, bound: map[int]Texture{}}
}

func (d *recordingDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *recordingDevice) PushState() {
	d.depth++
	d.maxDepth = max(d.maxDepth, d.depth)
	d.record("PushState")
}

func (d *recordingDevice) PopState() {
	d.depth--
	d.record("PopState")
}

func (d *recordingDevice) BindTexture(unit int, target TextureTarget, tex Texture) {
	d.bound[unit] = tex
	d.record("BindTexture(%d,%d,%d)", unit, target, tex)
}

func (d *recordingDevice) SetCombine(unit int, mode Combine, constant mgl32.Vec4) {
	d.record("SetCombine(%d,%d)", unit, mode)
}

func (d *recordingDevice) SetReflectionTexGen(unit int, enabled bool) {
	d.record("SetReflectionTexGen(%d,%t)", unit, enabled)
}

func (d *recordingDevice) PushTextureMatrix(unit int, m mgl32.Mat4) {
	d.texStacks[unit]++
	d.record("PushTextureMatrix(%d)", unit)
}

func (d *recordingDevice) PopTextureMatrix(unit int) {
	d.texStacks[unit]--
	d.record("PopTextureMatrix(%d)", unit)
}

func (d *recordingDevice) SetBlend(mode BlendMode) { d.record("SetBlend(%d)", mode) }

func (d *recordingDevice) SetDepth(fn DepthFunc, write bool) {
	d.record("SetDepth(%d,%t)", fn, write)
}

func (d *recordingDevice) SetLighting(sun *lighting.Sun, mat Material) {
	d.record("SetLighting(%t)", sun != nil)
}

func (d *recordingDevice) SetVertexColorMaterial(enabled bool) {
	d.record("SetVertexColorMaterial(%t)", enabled)
}

func (d *recordingDevice) SetNormal(n mgl32.Vec3) { d.record("SetNormal") }

func (d *recordingDevice) UploadChunk(buf ChunkBuffers, mesh *ChunkMesh) (ChunkBuffers, error) {
	d.uploads++
	if d.failUpload {
		return buf, errUploadFailed
	}
	if !buf.Allocated() || buf.VertexCap < mesh.Slots() {
		d.nextID++
		buf.Vertex, buf.Index = d.nextID, d.nextID
		buf.VertexCap = mesh.Slots()
	}
	buf.Count = len(mesh.Indices)
	return buf, nil
}

func (d *recordingDevice) ReleaseChunk(buf ChunkBuffers) {
	d.releases++
}

func (d *recordingDevice) DrawChunk(buf ChunkBuffers, withColors bool) {
	d.draws++
	if withColors {
		d.colorDraws++
	}
	d.record("DrawChunk")
}

// checkBalanced fails when a state or texture matrix scope was left open.
func (d *recordingDevice) checkBalanced(t *testing.T) {
	t.Helper()
	if d.depth != 0 {
		t.Errorf("state scope depth = %d after render, want 0", d.depth)
	}
	for unit, n := range d.texStacks {
		if n != 0 {
			t.Errorf("texture matrix stack of unit %d = %d after render, want 0", unit, n)
		}
	}
}

func (d *recordingDevice) count(call string) int {
	n := 0
	for _, c := range d.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeProgram is a shader program whose validity is set by the test.
type fakeProgram struct {
	valid    bool
	bound    bool
	binds    int
	uniforms map[string]any
}

func newFakeProgram(valid bool) *fakeProgram {
	return &fakeProgram{valid: valid, uniforms: map[string]any{}}
}

func (p *fakeProgram) Valid() bool { return p.valid }
func (p *fakeProgram) Bind()       { p.bound = true; p.binds++ }
func (p *fakeProgram) Unbind()     { p.bound = false }

func (p *fakeProgram) SetInt(name string, v int32)       { p.uniforms[name] = v }
func (p *fakeProgram) SetFloat(name string, v float32)   { p.uniforms[name] = v }
func (p *fakeProgram) SetVec3(name string, v mgl32.Vec3) { p.uniforms[name] = v }
func (p *fakeProgram) SetVec4(name string, v mgl32.Vec4) { p.uniforms[name] = v }

// memoryStore keeps the last persisted water config.
type memoryStore struct {
	saved  config.WaterConfig
	writes int
}

func (m *memoryStore) PersistWater(w config.WaterConfig) error {
	m.saved = w
	m.writes++
	return nil
}

func fullFacts() capability.Facts {
	return capability.Facts{
		TextureUnits:        4,
		CubeMap:             true,
		TextureEnvCombine:   true,
		Dot3Combine:         true,
		ConstantBlendColor:  true,
		BlendColorExtension: true,
		ShaderObjects:       true,
		FragmentShader:      true,
		FloatTextures:       true,
	}
}

// lake returns a field of cells×cells cells whose every corner belongs to
// body 1 with ground one unit below level 0.
func lake(cells int) (*terrain.Field, terrain.Body) {
	f := terrain.NewField(cells, cells)
	r := terrain.Rect{MaxX: cells, MaxY: cells}
	labelRect(f, 1, r, -1)
	return f, terrain.Body{Label: 1, Level: 0, Bounds: r, Corners: (cells + 1) * (cells + 1)}
}

// labelRect assigns label and ground height to every corner of r.
func labelRect(f *terrain.Field, label int, r terrain.Rect, ground float32) {
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			f.SetLabel(x, y, label)
			f.SetHeight(x, y, ground)
		}
	}
}

// overhead looks straight down on the lake from z=100.
func overhead() *frustum.Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 500)
	view := mgl32.LookAtV(mgl32.Vec3{10, -10, 100}, mgl32.Vec3{10, -10, 0}, mgl32.Vec3{0, 1, 0})
	f := frustum.FromMatrix(proj.Mul4(view))
	return &f
}

// skyward looks straight up from z=100, away from any water.
func skyward() *frustum.Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 500)
	view := mgl32.LookAtV(mgl32.Vec3{10, -10, 100}, mgl32.Vec3{10, -10, 200}, mgl32.Vec3{0, 1, 0})
	f := frustum.FromMatrix(proj.Mul4(view))
	return &f
}

// setFor returns a negotiated set with only the given flags enabled.
func setFor(req capability.Request) capability.Set {
	set, _ := capability.Negotiate(req, fullFacts())
	return set
}
