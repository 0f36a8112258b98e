package water

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/frustum"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// Frame is what the caller supplies for one render.
type Frame struct {
	Frustum *frustum.Frustum
	Light   *lighting.Sun
}

// Option configures an Engine.
type Option func(*Engine)

// WithPersister saves negotiation corrections through p.
func WithPersister(p capability.Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithProgram sets the shader program used by the shader technique.
func WithProgram(prog Program) Option {
	return func(e *Engine) { e.program = prog }
}

// Engine owns the water bodies of the current terrain and renders them.
// It is not safe for concurrent use; every method runs on the render thread.
type Engine struct {
	dev        Device
	persister  capability.Persister
	negotiator *capability.Negotiator
	set        capability.Set
	cfg        config.WaterConfig

	terrain    Terrain
	bodies     []WaterBody
	generation uint32

	builder  *MeshBuilder
	pipeline *Pipeline
	animator *Animator
	textures Textures
	program  Program

	lastErr error

	log *zap.Logger
}

// New creates an engine drawing through dev. Initialize must run before
// the first Render.
func New(dev Device, opts ...Option) *Engine {
	builder := NewMeshBuilder(nil, nil)
	e := &Engine{
		dev:      dev,
		builder:  builder,
		pipeline: NewPipeline(dev, builder),
		animator: NewAnimator(AnimRate),
		log:      logger.Named("water"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pipeline.SetProgram(e.program)
	return e
}

// Initialize negotiates the techniques for the probed hardware facts.
func (e *Engine) Initialize(cfg config.WaterConfig, facts capability.Facts) {
	e.negotiator = capability.NewNegotiator(facts, e.persister)
	e.ReloadConfiguration(cfg)
}

// ReloadConfiguration renegotiates techniques and applies the tunables.
// Meshes are invalidated when the buffer layout changes. It must run
// between frames.
func (e *Engine) ReloadConfiguration(cfg config.WaterConfig) {
	if e.negotiator == nil {
		e.report(ErrNotInitialized)
		return
	}

	prev := e.cfg
	e.cfg = cfg
	set, changes := e.negotiator.Reload(cfg)
	e.apply(set, changes)

	if set.Shaders && (e.program == nil || !e.program.Valid()) {
		e.refuseShaders()
	}

	e.builder.SetAlpha(cfg.AlphaMultiplier, cfg.AlphaBase)
	if set.NeedsColorBuffer() && (prev.AlphaMultiplier != cfg.AlphaMultiplier || prev.AlphaBase != cfg.AlphaBase) {
		e.markDirty()
	}

	params := e.pipeline.Params()
	params.ReflectionStrength = cfg.ReflectionStrength
	params.ScrollSpeed = cfg.ScrollSpeed
	e.pipeline.SetParams(params)

	if cfg.DynamicLOD {
		e.pipeline.SetDetailPolicy(DefaultDistanceDetail(cfg.Detail))
	} else {
		e.pipeline.SetDetailPolicy(FixedDetail(cfg.Detail))
	}
	e.animator.SetRate(cfg.AnimRate)
}

// apply commits a negotiated set.
func (e *Engine) apply(set capability.Set, changes capability.Changes) {
	e.set = set
	if changes.LayoutChanged() {
		e.releaseBuffers()
		e.markDirty()
	}
	e.animator.Configure(set.AnimatedBump, len(e.textures.Bump))
}

// refuseShaders drops the shader path for the rest of the process.
func (e *Engine) refuseShaders() {
	set, changes := e.negotiator.Refuse("shaders", ErrInvalidProgram.Error())
	e.apply(set, changes)
}

// Capabilities returns the negotiated technique set.
func (e *Engine) Capabilities() capability.Set {
	return e.set
}

// SetTopology replaces all bodies with ones built from topo. The previous
// bodies' buffers are released and their IDs stop resolving.
func (e *Engine) SetTopology(topo Topology) error {
	if topo.Terrain == nil {
		return ErrNoTerrain
	}

	e.releaseBuffers()
	e.generation++
	e.terrain = topo.Terrain
	e.builder.SetSource(topo.Terrain, topo.Exploration)

	e.bodies = make([]WaterBody, 0, len(topo.Bodies))
	chunks := 0
	for i, b := range topo.Bodies {
		body := NewBody(BodyID{Index: i, Generation: e.generation}, b, topo.Terrain)
		chunks += len(body.Chunks)
		e.bodies = append(e.bodies, body)
	}

	e.log.Info("water topology set",
		zap.Int("bodies", len(e.bodies)),
		zap.Int("chunks", chunks),
	)
	return nil
}

// Bodies returns the current bodies in construction order.
func (e *Engine) Bodies() []WaterBody {
	return e.bodies
}

// Body resolves id, failing for IDs from a replaced topology.
func (e *Engine) Body(id BodyID) (*WaterBody, bool) {
	if id.Generation != e.generation || id.Index < 0 || id.Index >= len(e.bodies) {
		return nil, false
	}
	return &e.bodies[id.Index], true
}

// CellExploredChanged invalidates the meshes after a fog-of-war change.
func (e *Engine) CellExploredChanged(r terrain.Rect) {
	e.log.Debug("explored cells changed",
		zap.Int("min_x", r.MinX), zap.Int("min_y", r.MinY),
		zap.Int("max_x", r.MaxX), zap.Int("max_y", r.MaxY),
	)
	e.markDirty()
}

// SetTextures replaces the sampled textures.
func (e *Engine) SetTextures(t Textures) {
	e.textures = t
	e.pipeline.SetTextures(t)
	e.animator.Configure(e.set.AnimatedBump, len(t.Bump))
}

// Advance moves animation time forward by dt seconds.
func (e *Engine) Advance(dt float32) {
	e.animator.Advance(dt)
}

// Render draws all visible water and returns what was drawn. Problems are
// logged and the frame is skipped; the engine stays usable.
func (e *Engine) Render(frame Frame) Stats {
	if e.negotiator == nil {
		e.report(ErrNotInitialized)
		return Stats{}
	}
	if e.terrain == nil {
		e.report(ErrNoTerrain)
		return Stats{}
	}

	fs := FrameState{
		Frustum:       frame.Frustum,
		Light:         frame.Light,
		Time:          e.animator.Time(),
		BumpFrame:     e.animator.BumpFrame(),
		TextureMatrix: e.animator.TextureMatrix(e.pipeline.Params().ScrollSpeed),
	}

	stats, err := e.pipeline.Render(e.bodies, e.set, fs)
	if errors.Is(err, ErrInvalidProgram) {
		e.refuseShaders()
		stats, err = e.pipeline.Render(e.bodies, e.set, fs)
	}
	e.report(err)
	return stats
}

// Rebuilds returns the number of chunk meshes built so far.
func (e *Engine) Rebuilds() int {
	return e.builder.Rebuilds()
}

// Shutdown releases every chunk buffer and drops the bodies.
func (e *Engine) Shutdown() {
	e.releaseBuffers()
	e.bodies = nil
	e.terrain = nil
	e.builder.SetSource(nil, nil)
	e.log.Info("water engine shut down")
}

func (e *Engine) markDirty() {
	for bi := range e.bodies {
		for ci := range e.bodies[bi].Chunks {
			e.bodies[bi].Chunks[ci].Dirty = true
		}
	}
}

func (e *Engine) releaseBuffers() {
	for bi := range e.bodies {
		for ci := range e.bodies[bi].Chunks {
			c := &e.bodies[bi].Chunks[ci]
			if c.Buffers.Allocated() {
				e.dev.ReleaseChunk(c.Buffers)
			}
			c.Buffers = ChunkBuffers{}
		}
	}
}

// report logs err once until a different outcome occurs.
func (e *Engine) report(err error) {
	if err != nil && !errors.Is(err, e.lastErr) {
		e.log.Error("water frame skipped", zap.Error(err))
	}
	e.lastErr = err
}
