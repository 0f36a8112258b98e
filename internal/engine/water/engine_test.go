package water

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
)

func plainConfig() config.WaterConfig {
	w := config.DefaultWater()
	w.Reflections = false
	w.BumpMapping = false
	w.Translucency = false
	w.Shaders = false
	w.AnimatedBump = false
	return w
}

func newTestEngine(t *testing.T, cfg config.WaterConfig, facts capability.Facts, opts ...Option) (*Engine, *recordingDevice) {
	t.Helper()
	dev := newRecordingDevice()
	e := New(dev, opts...)
	e.Initialize(cfg, facts)

	f, b := lake(20)
	if err := e.SetTopology(Topology{Terrain: f, Bodies: []terrain.Body{b}}); err != nil {
		t.Fatalf("SetTopology failed: %v", err)
	}
	return e, dev
}

func litFrame() Frame {
	return Frame{Frustum: overhead(), Light: lighting.DefaultSun()}
}

func TestEngine_RenderLake(t *testing.T) {
	e, dev := newTestEngine(t, plainConfig(), fullFacts())

	stats := e.Render(litFrame())
	if stats != (Stats{Bodies: 1, Chunks: 4, Quads: 400}) {
		t.Errorf("stats = %+v", stats)
	}
	if e.Rebuilds() != 4 {
		t.Errorf("rebuilds = %d, want 4", e.Rebuilds())
	}

	e.Render(litFrame())
	if e.Rebuilds() != 4 {
		t.Errorf("second frame rebuilt meshes, rebuilds = %d", e.Rebuilds())
	}
	dev.checkBalanced(t)
}

func TestEngine_CorrectsUnsupportedRequest(t *testing.T) {
	store := &memoryStore{}
	cfg := plainConfig()
	cfg.Reflections = true

	e, _ := newTestEngine(t, cfg, capability.Facts{TextureUnits: 1}, WithPersister(store))

	if e.Capabilities().Reflections {
		t.Error("reflections enabled on single texture unit hardware")
	}
	if store.writes != 1 || store.saved.Reflections {
		t.Errorf("corrected config not persisted: writes=%d saved=%+v", store.writes, store.saved)
	}
	if stats := e.Render(litFrame()); stats.Chunks != 4 {
		t.Errorf("fallback technique drew %d chunks, want 4", stats.Chunks)
	}
}

func TestEngine_ReloadTranslucencyInvalidatesMeshes(t *testing.T) {
	e, dev := newTestEngine(t, plainConfig(), fullFacts())
	e.Render(litFrame())
	for _, c := range e.Bodies()[0].Chunks {
		if c.Dirty || c.Mesh.HasColors() {
			t.Fatal("chunk not built without colors")
		}
	}

	cfg := plainConfig()
	cfg.Translucency = true
	e.ReloadConfiguration(cfg)

	if dev.releases != 4 {
		t.Errorf("released %d chunk buffers, want 4", dev.releases)
	}
	for i, c := range e.Bodies()[0].Chunks {
		if !c.Dirty {
			t.Errorf("chunk %d not dirty after translucency toggle", i)
		}
		if c.Buffers.Allocated() {
			t.Errorf("chunk %d kept its buffers", i)
		}
	}

	e.Render(litFrame())
	for i, c := range e.Bodies()[0].Chunks {
		if !c.Mesh.HasColors() {
			t.Errorf("chunk %d has no color buffer after rebuild", i)
		}
	}
	if e.Rebuilds() != 8 {
		t.Errorf("rebuilds = %d, want 8", e.Rebuilds())
	}
}

func TestEngine_ReloadWithoutLayoutChange(t *testing.T) {
	e, dev := newTestEngine(t, plainConfig(), fullFacts())
	e.Render(litFrame())

	cfg := plainConfig()
	cfg.Reflections = true
	cfg.ScrollSpeed = 0.2
	e.ReloadConfiguration(cfg)

	if dev.releases != 0 {
		t.Errorf("reflections toggle released %d buffers", dev.releases)
	}
	e.Render(litFrame())
	if e.Rebuilds() != 4 {
		t.Errorf("reflections toggle rebuilt meshes, rebuilds = %d", e.Rebuilds())
	}
	if e.Capabilities().Technique() != capability.TechniqueReflectOnly {
		t.Errorf("technique = %s", e.Capabilities().Technique())
	}
}

func TestEngine_ReloadDetail(t *testing.T) {
	e, _ := newTestEngine(t, plainConfig(), fullFacts())
	e.Render(litFrame())

	cfg := plainConfig()
	cfg.Detail = 2
	e.ReloadConfiguration(cfg)
	stats := e.Render(litFrame())

	if stats.Quads != 100 {
		t.Errorf("quads at detail 2 = %d, want 100", stats.Quads)
	}
	if e.Rebuilds() != 8 {
		t.Errorf("rebuilds = %d, want 8", e.Rebuilds())
	}
}

func TestEngine_CellExploredChanged(t *testing.T) {
	dev := newRecordingDevice()
	e := New(dev)
	e.Initialize(plainConfig(), fullFacts())

	f, b := lake(20)
	fog := terrain.NewFogMap(20, 20)
	if err := e.SetTopology(Topology{Terrain: f, Exploration: fog, Bodies: []terrain.Body{b}}); err != nil {
		t.Fatalf("SetTopology failed: %v", err)
	}

	if stats := e.Render(litFrame()); stats.Quads != 0 {
		t.Errorf("unexplored lake drew %d quads", stats.Quads)
	}

	changed, _ := fog.Reveal(terrain.Rect{MaxX: 19, MaxY: 19})
	e.CellExploredChanged(changed)
	for i, c := range e.Bodies()[0].Chunks {
		if !c.Dirty {
			t.Errorf("chunk %d not dirty after exploration change", i)
		}
	}
	if stats := e.Render(litFrame()); stats.Quads != 400 {
		t.Errorf("explored lake drew %d quads, want 400", stats.Quads)
	}
}

func TestEngine_InvalidProgramAtInit(t *testing.T) {
	prog := newFakeProgram(false)
	cfg := config.DefaultWater()
	store := &memoryStore{}

	e, _ := newTestEngine(t, cfg, fullFacts(), WithProgram(prog), WithPersister(store))

	set := e.Capabilities()
	if set.Shaders {
		t.Fatal("shaders enabled with an invalid program")
	}
	if set.Technique() != capability.TechniqueBumpReflect {
		t.Errorf("technique = %s, want BumpReflect", set.Technique())
	}
	if store.writes != 0 {
		t.Errorf("runtime refusal was persisted")
	}
	if stats := e.Render(litFrame()); stats.Chunks != 4 {
		t.Errorf("fallback drew %d chunks, want 4", stats.Chunks)
	}
}

func TestEngine_ProgramLostAtRender(t *testing.T) {
	prog := newFakeProgram(true)
	cfg := config.DefaultWater()
	e, dev := newTestEngine(t, cfg, fullFacts(), WithProgram(prog))
	if e.Capabilities().Technique() != capability.TechniqueShader {
		t.Fatalf("technique = %s, want Shader", e.Capabilities().Technique())
	}

	prog.valid = false
	stats := e.Render(litFrame())
	if e.Capabilities().Shaders {
		t.Error("shaders still enabled after the program failed")
	}
	if stats.Chunks != 4 {
		t.Errorf("fallback frame drew %d chunks, want 4", stats.Chunks)
	}
	// Leaving the shader path changes the buffer layout.
	for _, c := range e.Bodies()[0].Chunks {
		if !c.Mesh.HasColors() {
			t.Error("translucent fallback built without colors")
		}
	}
	dev.checkBalanced(t)
}

func TestEngine_MissingCollaborators(t *testing.T) {
	dev := newRecordingDevice()
	e := New(dev)

	if stats := e.Render(litFrame()); stats != (Stats{}) {
		t.Errorf("render before Initialize drew %+v", stats)
	}
	e.ReloadConfiguration(plainConfig())

	e.Initialize(config.DefaultWater(), fullFacts())
	if stats := e.Render(litFrame()); stats != (Stats{}) {
		t.Errorf("render without terrain drew %+v", stats)
	}
	if err := e.SetTopology(Topology{}); !errors.Is(err, ErrNoTerrain) {
		t.Errorf("SetTopology without terrain: %v", err)
	}

	f, b := lake(20)
	e.SetTopology(Topology{Terrain: f, Bodies: []terrain.Body{b}})
	if stats := e.Render(Frame{Frustum: overhead()}); stats != (Stats{}) {
		t.Errorf("bump water without light drew %+v", stats)
	}
	if stats := e.Render(litFrame()); stats.Chunks != 4 {
		t.Errorf("frame after light was supplied drew %d chunks", stats.Chunks)
	}

	if stats := e.Render(Frame{Light: lighting.DefaultSun()}); stats != (Stats{}) {
		t.Errorf("frame without frustum drew %+v", stats)
	}
	if !errors.Is(e.lastErr, ErrNoFrustum) {
		t.Errorf("frame without frustum reported %v, want ErrNoFrustum", e.lastErr)
	}
}

func TestEngine_SetTopologyReplacesBodies(t *testing.T) {
	e, dev := newTestEngine(t, plainConfig(), fullFacts())
	e.Render(litFrame())
	oldID := e.Bodies()[0].ID

	if _, ok := e.Body(oldID); !ok {
		t.Fatal("current body id does not resolve")
	}

	f, b := lake(10)
	if err := e.SetTopology(Topology{Terrain: f, Bodies: []terrain.Body{b}}); err != nil {
		t.Fatalf("SetTopology failed: %v", err)
	}
	if dev.releases != 4 {
		t.Errorf("released %d buffers, want 4", dev.releases)
	}
	if _, ok := e.Body(oldID); ok {
		t.Error("stale body id still resolves")
	}
	body, ok := e.Body(e.Bodies()[0].ID)
	if !ok || len(body.Chunks) != 1 {
		t.Errorf("new body not resolvable or wrong chunk count")
	}
	for _, c := range body.Chunks {
		if c.Body != body.ID {
			t.Errorf("chunk back-reference %+v, want %+v", c.Body, body.ID)
		}
	}
}

func TestEngine_AnimatedBump(t *testing.T) {
	cfg := config.DefaultWater()
	cfg.Shaders = false
	cfg.AnimRate = 16
	e, dev := newTestEngine(t, cfg, fullFacts())
	e.SetTextures(Textures{Diffuse: 1, Bump: []Texture{10, 11, 12, 13}, Environment: 2})

	e.Advance(1.0 / 8) // frame 2
	e.Render(litFrame())
	if got := dev.count("BindTexture(0,0,12)"); got != 1 {
		t.Errorf("bump frame 2 bound %d times, want once per frame", got)
	}
}

func TestEngine_Shutdown(t *testing.T) {
	e, dev := newTestEngine(t, plainConfig(), fullFacts())
	e.Render(litFrame())
	e.Shutdown()

	if dev.releases != 4 {
		t.Errorf("released %d buffers, want 4", dev.releases)
	}
	if len(e.Bodies()) != 0 {
		t.Error("bodies kept after shutdown")
	}
	if stats := e.Render(litFrame()); stats != (Stats{}) {
		t.Errorf("render after shutdown drew %+v", stats)
	}
}
