package water

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/frustum"
	"github.com/Faultbox/midgard-water/internal/engine/lighting"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// Params are the tunables shared by all techniques.
type Params struct {
	ReflectionStrength float32 // environment weight in CombineInterpolate
	ScrollSpeed        float32 // texture units per second
	ShaderAlpha        float32 // surface alpha of the translucent shader path
}

// DefaultParams returns the stock tunables.
func DefaultParams() Params {
	return Params{ReflectionStrength: 0.25, ScrollSpeed: 0.05, ShaderAlpha: 0.7}
}

// FrameState is rebuilt every frame.
type FrameState struct {
	Frustum       *frustum.Frustum
	Light         *lighting.Sun
	Time          float32
	BumpFrame     int
	TextureMatrix mgl32.Mat4
}

// Stats counts what a frame drew.
type Stats struct {
	Bodies int
	Chunks int
	Quads  int
}

// Pipeline culls, refreshes and draws water chunks.
type Pipeline struct {
	dev     Device
	builder *MeshBuilder
	policy  DetailPolicy

	textures Textures
	program  Program
	params   Params

	techniques [4]technique

	// per frame
	set   capability.Set
	frame FrameState

	log *zap.Logger
}

// NewPipeline returns a pipeline drawing through dev with meshes from builder.
func NewPipeline(dev Device, builder *MeshBuilder) *Pipeline {
	p := &Pipeline{
		dev:     dev,
		builder: builder,
		policy:  FixedDetail(DefaultDetail),
		params:  DefaultParams(),
		log:     logger.Named("water"),
	}
	p.techniques = newTechniques(p)
	return p
}

// SetTextures replaces the textures sampled by the techniques.
func (p *Pipeline) SetTextures(t Textures) { p.textures = t }

// SetProgram sets the shader program of the shader technique.
func (p *Pipeline) SetProgram(prog Program) { p.program = prog }

// SetParams replaces the tunables.
func (p *Pipeline) SetParams(params Params) { p.params = params }

// SetDetailPolicy sets how visible chunks pick their detail.
func (p *Pipeline) SetDetailPolicy(policy DetailPolicy) { p.policy = policy }

// Params returns the current tunables.
func (p *Pipeline) Params() Params { return p.params }

// Render draws every visible chunk of bodies with the technique chosen by
// set. Graphics state is restored before it returns. A frame whose
// technique lacks a collaborator draws nothing and returns the error.
func (p *Pipeline) Render(bodies []WaterBody, set capability.Set, fs FrameState) (Stats, error) {
	var stats Stats
	if fs.Frustum == nil {
		return stats, ErrNoFrustum
	}

	tech := p.techniques[set.Technique()]
	if tech.needsLight() && fs.Light == nil {
		return stats, ErrNoLight
	}

	p.set = set
	p.frame = fs
	withColors := set.NeedsColorBuffer()
	cull := NewCuller(fs.Frustum)

	p.dev.PushState()
	defer p.dev.PopState()
	if err := tech.begin(); err != nil {
		return stats, err
	}
	defer tech.end()

	for bi := range bodies {
		body := &bodies[bi]
		if !cull.TestBody(body) {
			continue
		}
		stats.Bodies++

		for ci := range body.Chunks {
			c := &body.Chunks[ci]
			distance := cull.TestChunk(c)
			if distance == 0 {
				continue
			}

			if p.builder.EnsureFresh(c, body, p.policy.Detail(distance), withColors) {
				p.upload(c)
			}
			if c.Mesh.Quads() == 0 || !c.Buffers.Allocated() {
				continue
			}

			tech.draw(c)
			stats.Chunks++
			stats.Quads += c.Mesh.Quads()
		}
	}
	return stats, nil
}

// upload pushes a rebuilt mesh to the device. On failure the chunk keeps
// whatever buffers the device returned and is rebuilt next frame.
func (p *Pipeline) upload(c *Chunk) {
	buf, err := p.dev.UploadChunk(c.Buffers, &c.Mesh)
	c.Buffers = buf
	if err != nil {
		c.Dirty = true
		p.log.Error("chunk buffer upload failed",
			zap.Int("body", c.Body.Index),
			zap.Int("x", c.Footprint.MinX), zap.Int("y", c.Footprint.MinY),
			zap.Error(err),
		)
	}
}
