package water

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/frustum"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
)

type pipelineFixture struct {
	dev      *recordingDevice
	builder  *MeshBuilder
	pipeline *Pipeline
	bodies   []WaterBody
	program  *fakeProgram
}

func newPipelineFixture(exploration Exploration) *pipelineFixture {
	f, b := lake(20)
	dev := newRecordingDevice()
	builder := NewMeshBuilder(f, exploration)
	p := NewPipeline(dev, builder)
	prog := newFakeProgram(true)
	p.SetProgram(prog)
	p.SetTextures(Textures{Diffuse: 1, Bump: []Texture{2, 3}, Environment: 4})
	return &pipelineFixture{
		dev:      dev,
		builder:  builder,
		pipeline: p,
		bodies:   []WaterBody{NewBody(BodyID{}, b, f)},
		program:  prog,
	}
}

func (fx *pipelineFixture) frame() FrameState {
	return FrameState{
		Frustum:       overhead(),
		Light:         lighting.DefaultSun(),
		TextureMatrix: mgl32.Ident4(),
	}
}

func TestRender_Techniques(t *testing.T) {
	tests := []struct {
		name          string
		req           capability.Request
		technique     capability.Technique
		drawsPerChunk int
		stateScopes   int // PushState calls per frame
	}{
		{"plain", capability.Request{}, capability.TechniquePlain, 1, 1},
		{"reflect only", capability.Request{Reflections: true}, capability.TechniqueReflectOnly, 1, 1},
		{"bump and reflect", capability.Request{Reflections: true, BumpMapping: true}, capability.TechniqueBumpReflect, 2, 1 + 4},
		{"shader", capability.Request{Shaders: true, Translucency: true}, capability.TechniqueShader, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newPipelineFixture(nil)
			set := setFor(tt.req)
			if set.Technique() != tt.technique {
				t.Fatalf("set picks %s, want %s", set.Technique(), tt.technique)
			}

			stats, err := fx.pipeline.Render(fx.bodies, set, fx.frame())
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if stats != (Stats{Bodies: 1, Chunks: 4, Quads: 400}) {
				t.Errorf("stats = %+v", stats)
			}
			if fx.dev.draws != 4*tt.drawsPerChunk {
				t.Errorf("draw calls = %d, want %d", fx.dev.draws, 4*tt.drawsPerChunk)
			}
			if got := fx.dev.count("PushState"); got != tt.stateScopes {
				t.Errorf("state scopes = %d, want %d", got, tt.stateScopes)
			}
			fx.dev.checkBalanced(t)
		})
	}
}

func TestRender_PlainVertexAlpha(t *testing.T) {
	tests := []struct {
		name         string
		translucency bool
		wantCall     string
		colorDraws   int
	}{
		{"translucent", true, "SetVertexColorMaterial(true)", 4},
		{"opaque", false, "SetVertexColorMaterial(false)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newPipelineFixture(nil)
			set := setFor(capability.Request{Translucency: tt.translucency})
			if set.Technique() != capability.TechniquePlain {
				t.Fatalf("set picks %s, want plain", set.Technique())
			}

			if _, err := fx.pipeline.Render(fx.bodies, set, fx.frame()); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got := fx.dev.count(tt.wantCall); got != 1 {
				t.Errorf("%s calls = %d, want 1", tt.wantCall, got)
			}
			if fx.dev.colorDraws != tt.colorDraws {
				t.Errorf("color draws = %d, want %d", fx.dev.colorDraws, tt.colorDraws)
			}
			fx.dev.checkBalanced(t)
		})
	}
}

func TestRender_BumpSecondPass(t *testing.T) {
	fx := newPipelineFixture(nil)
	set := setFor(capability.Request{Reflections: true, BumpMapping: true, Translucency: true})

	if _, err := fx.pipeline.Render(fx.bodies, set, fx.frame()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// Only the first pass reads the alpha buffer.
	if fx.dev.colorDraws != 4 {
		t.Errorf("color draws = %d, want 4", fx.dev.colorDraws)
	}
	if got := fx.dev.count("SetBlend(2)"); got != 4 {
		t.Errorf("additive passes = %d, want 4", got)
	}
	if got := fx.dev.count("SetDepth(1,false)"); got != 4 {
		t.Errorf("depth-equal passes without depth write = %d, want 4", got)
	}
	if got := fx.dev.count("SetReflectionTexGen(1,true)"); got != 4 {
		t.Errorf("reflection texgen setups = %d, want 4", got)
	}
}

func TestRender_BumpWithoutReflections(t *testing.T) {
	fx := newPipelineFixture(nil)
	set := setFor(capability.Request{BumpMapping: true})

	if _, err := fx.pipeline.Render(fx.bodies, set, fx.frame()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := fx.dev.count("SetReflectionTexGen(1,true)"); got != 0 {
		t.Errorf("reflection used without reflections enabled (%d)", got)
	}
	if got := fx.dev.count("BindTexture(1,0,0)"); got != 4 {
		t.Errorf("unit 1 disabled %d times in pass 2, want 4", got)
	}
}

func TestRender_ShaderUniforms(t *testing.T) {
	fx := newPipelineFixture(nil)
	fx.pipeline.SetParams(Params{ReflectionStrength: 0.3, ScrollSpeed: 0.1, ShaderAlpha: 0.6})
	set := setFor(capability.Request{Shaders: true, Translucency: true})

	fs := fx.frame()
	fs.Time = 2
	fs.BumpFrame = 1
	if _, err := fx.pipeline.Render(fx.bodies, set, fs); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if fx.program.binds != 1 || fx.program.bound {
		t.Errorf("program binds = %d, still bound = %v", fx.program.binds, fx.program.bound)
	}
	want := map[string]any{
		"uDiffuse":            int32(0),
		"uBump":               int32(1),
		"uEnvironment":        int32(2),
		"uTime":               float32(2),
		"uReflectionStrength": float32(0.3),
		"uAlpha":              float32(0.6),
	}
	for name, v := range want {
		if fx.program.uniforms[name] != v {
			t.Errorf("uniform %s = %v, want %v", name, fx.program.uniforms[name], v)
		}
	}
	if fx.dev.bound[1] != 3 {
		t.Errorf("bump unit bound to %d, want frame 1 texture 3", fx.dev.bound[1])
	}
}

func TestRender_Idempotent(t *testing.T) {
	fx := newPipelineFixture(nil)
	set := setFor(capability.Request{Translucency: true})

	first, _ := fx.pipeline.Render(fx.bodies, set, fx.frame())
	rebuilds := fx.builder.Rebuilds()
	uploads := fx.dev.uploads
	second, _ := fx.pipeline.Render(fx.bodies, set, fx.frame())

	if rebuilds != 4 {
		t.Errorf("first frame rebuilt %d chunks, want 4", rebuilds)
	}
	if fx.builder.Rebuilds() != rebuilds || fx.dev.uploads != uploads {
		t.Errorf("second frame rebuilt meshes: %d -> %d", rebuilds, fx.builder.Rebuilds())
	}
	if first != second {
		t.Errorf("stats differ between frames: %+v vs %+v", first, second)
	}
}

func TestRender_CulledChunksNotCounted(t *testing.T) {
	fx := newPipelineFixture(nil)
	fs := fx.frame()
	fs.Frustum = skyward()

	stats, err := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fs)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if fx.dev.draws != 0 || fx.builder.Rebuilds() != 0 {
		t.Errorf("culled water drew %d times, rebuilt %d meshes", fx.dev.draws, fx.builder.Rebuilds())
	}
	fx.dev.checkBalanced(t)
}

func TestRender_PartiallyVisible(t *testing.T) {
	fx := newPipelineFixture(nil)
	// Camera low over the far corner sees only part of the lake.
	proj := mgl32.Perspective(mgl32.DegToRad(30), 1, 1, 500)
	view := mgl32.LookAtV(mgl32.Vec3{16, -16, 20}, mgl32.Vec3{16, -16, 0}, mgl32.Vec3{0, 1, 0})
	fr := frustum.FromMatrix(proj.Mul4(view))
	fs := fx.frame()
	fs.Frustum = &fr

	stats, _ := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fs)
	if stats.Chunks != 1 || stats.Quads != 100 {
		t.Errorf("stats = %+v, want only the chunk under the camera", stats)
	}
}

func TestRender_MissingLight(t *testing.T) {
	for _, req := range []capability.Request{
		{BumpMapping: true},
		{Shaders: true},
	} {
		fx := newPipelineFixture(nil)
		fs := fx.frame()
		fs.Light = nil

		stats, err := fx.pipeline.Render(fx.bodies, setFor(req), fs)
		if !errors.Is(err, ErrNoLight) {
			t.Errorf("%+v: err = %v, want ErrNoLight", req, err)
		}
		if stats != (Stats{}) || len(fx.dev.calls) != 0 {
			t.Errorf("%+v: frame was not skipped", req)
		}
	}

	// Plain water draws with the device's default light.
	fx := newPipelineFixture(nil)
	fs := fx.frame()
	fs.Light = nil
	if _, err := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fs); err != nil {
		t.Errorf("plain technique without light: %v", err)
	}
}

func TestRender_InvalidProgram(t *testing.T) {
	fx := newPipelineFixture(nil)
	fx.program.valid = false

	_, err := fx.pipeline.Render(fx.bodies, setFor(capability.Request{Shaders: true}), fx.frame())
	if !errors.Is(err, ErrInvalidProgram) {
		t.Fatalf("err = %v, want ErrInvalidProgram", err)
	}
	if fx.dev.draws != 0 {
		t.Errorf("drew %d chunks with an invalid program", fx.dev.draws)
	}
	fx.dev.checkBalanced(t)
}

func TestRender_UploadFailure(t *testing.T) {
	fx := newPipelineFixture(nil)
	fx.dev.failUpload = true

	stats, err := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fx.frame())
	if err != nil {
		t.Fatalf("upload failure escaped Render: %v", err)
	}
	if fx.dev.uploads != 4 {
		t.Errorf("uploads attempted = %d, want 4", fx.dev.uploads)
	}
	if stats.Chunks != 0 || fx.dev.draws != 0 {
		t.Errorf("chunks without buffers were drawn: %+v", stats)
	}

	// Failed chunks stay dirty and retry on the next frame.
	fx.dev.failUpload = false
	stats, _ = fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fx.frame())
	if stats.Chunks != 4 {
		t.Errorf("recovered frame drew %d chunks, want 4", stats.Chunks)
	}
}

func TestRender_SkipsEmptyChunks(t *testing.T) {
	fog := terrain.NewFogMap(20, 20)
	fog.Reveal(terrain.Rect{MinX: 0, MinY: 0, MaxX: 9, MaxY: 9})
	fx := newPipelineFixture(fog)

	stats, _ := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fx.frame())
	if stats.Chunks != 1 || stats.Quads != 100 {
		t.Errorf("stats = %+v, want one explored chunk", stats)
	}
	if fx.dev.draws != 1 {
		t.Errorf("draw calls = %d, want 1", fx.dev.draws)
	}
	if fx.builder.Rebuilds() != 4 {
		t.Errorf("rebuilds = %d, want 4", fx.builder.Rebuilds())
	}
}

func TestRender_DetailPolicy(t *testing.T) {
	fx := newPipelineFixture(nil)
	fx.pipeline.SetDetailPolicy(FixedDetail(2))

	stats, _ := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fx.frame())
	if stats.Quads != 4*25 {
		t.Errorf("quads = %d, want 100 at detail 2", stats.Quads)
	}
	for _, c := range fx.bodies[0].Chunks {
		if c.LastDetail != 2 {
			t.Errorf("chunk built at detail %d", c.LastDetail)
		}
	}
}

func TestRender_NoFrustum(t *testing.T) {
	fx := newPipelineFixture(nil)
	fs := fx.frame()
	fs.Frustum = nil
	stats, err := fx.pipeline.Render(fx.bodies, setFor(capability.Request{}), fs)
	if !errors.Is(err, ErrNoFrustum) {
		t.Errorf("render without frustum: err = %v, want ErrNoFrustum", err)
	}
	if stats != (Stats{}) || fx.dev.draws != 0 || fx.dev.count("PushState") != 0 {
		t.Errorf("render without frustum touched the device: %+v, %v", stats, fx.dev.calls)
	}
}
