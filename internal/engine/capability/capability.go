// Package capability reduces the requested water techniques to the set the
// current graphics hardware can run.
package capability

import (
	"fmt"

	"github.com/Faultbox/midgard-water/internal/config"
)

// Facts describes what the graphics context supports.
type Facts struct {
	TextureUnits        int
	CubeMap             bool
	TextureEnvCombine   bool
	Dot3Combine         bool
	ConstantBlendColor  bool
	BlendColorExtension bool
	ShaderObjects       bool
	FragmentShader      bool
	FloatTextures       bool
}

// Request is the set of techniques asked for by configuration.
type Request struct {
	Reflections  bool
	BumpMapping  bool
	Translucency bool
	Shaders      bool
	AnimatedBump bool
}

// RequestFromConfig extracts the technique toggles from water settings.
func RequestFromConfig(w config.WaterConfig) Request {
	return Request{
		Reflections:  w.Reflections,
		BumpMapping:  w.BumpMapping,
		Translucency: w.Translucency,
		Shaders:      w.Shaders,
		AnimatedBump: w.AnimatedBump,
	}
}

// Apply writes the toggles of r into w, leaving tunables untouched.
func (r Request) Apply(w config.WaterConfig) config.WaterConfig {
	w.Reflections = r.Reflections
	w.BumpMapping = r.BumpMapping
	w.Translucency = r.Translucency
	w.Shaders = r.Shaders
	w.AnimatedBump = r.AnimatedBump
	return w
}

// Set is the negotiated, process-wide technique state. The embedded Request
// holds the enabled flags.
type Set struct {
	Request

	Facts Facts
}

// Enabled returns the enabled flags, for diffing.
func (s Set) Enabled() Request {
	return s.Request
}

// NeedsColorBuffer reports whether chunk meshes carry a per-vertex RGBA buffer.
// The shader path uses a uniform surface alpha instead.
func (s Set) NeedsColorBuffer() bool {
	return s.Translucency && !s.Shaders
}

// Technique picks the rendering family for a frame.
func (s Set) Technique() Technique {
	switch {
	case s.Shaders:
		return TechniqueShader
	case s.BumpMapping:
		return TechniqueBumpReflect
	case s.Reflections:
		return TechniqueReflectOnly
	default:
		return TechniquePlain
	}
}

// Technique is one complete water rendering strategy.
type Technique int

// Techniques in increasing order of hardware demands.
const (
	TechniquePlain Technique = iota
	TechniqueReflectOnly
	TechniqueBumpReflect
	TechniqueShader
)

// String returns a human-readable technique name.
func (t Technique) String() string {
	switch t {
	case TechniquePlain:
		return "Plain"
	case TechniqueReflectOnly:
		return "ReflectOnly"
	case TechniqueBumpReflect:
		return "BumpReflect"
	case TechniqueShader:
		return "Shader"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Correction records a requested technique that had to be disabled.
type Correction struct {
	Technique string
	Reason    string
}

// dependency is one row of the technique dependency table.
type dependency struct {
	name  string
	flag  func(*Request) *bool
	check func(Facts, Set) string // empty when satisfied
}

var dependencies = []dependency{
	{
		name: "reflections",
		flag: func(r *Request) *bool { return &r.Reflections },
		check: func(f Facts, _ Set) string {
			switch {
			case f.TextureUnits <= 1:
				return "needs more than one texture unit"
			case !f.CubeMap:
				return "cube map textures not supported"
			case !f.TextureEnvCombine:
				return "texture combine not supported"
			}
			return ""
		},
	},
	{
		name: "bump_mapping",
		flag: func(r *Request) *bool { return &r.BumpMapping },
		check: func(f Facts, _ Set) string {
			switch {
			case f.TextureUnits <= 1:
				return "needs more than one texture unit"
			case !f.TextureEnvCombine:
				return "texture combine not supported"
			case !f.Dot3Combine:
				return "dot3 combine not supported"
			case !f.ConstantBlendColor && !f.BlendColorExtension:
				return "constant blend color not supported"
			}
			return ""
		},
	},
	{
		name: "translucency",
		flag: func(r *Request) *bool { return &r.Translucency },
		check: func(f Facts, _ Set) string {
			switch {
			case f.TextureUnits <= 1:
				return "needs more than one texture unit"
			case !f.TextureEnvCombine:
				return "texture combine not supported"
			}
			return ""
		},
	},
	{
		name: "shaders",
		flag: func(r *Request) *bool { return &r.Shaders },
		check: func(f Facts, _ Set) string {
			switch {
			case !f.ShaderObjects:
				return "shader objects not supported"
			case !f.FragmentShader:
				return "fragment shaders not supported"
			case f.TextureUnits < 3:
				return "needs at least three texture units"
			}
			return ""
		},
	},
	// Last: depends on the outcome of the rows above.
	{
		name: "animated_bump",
		flag: func(r *Request) *bool { return &r.AnimatedBump },
		check: func(_ Facts, s Set) string {
			if !s.BumpMapping && !s.Shaders {
				return "needs bump mapping or shaders"
			}
			return ""
		},
	},
}

// Negotiate returns the techniques of req that facts allow, plus one
// correction for every requested technique that was refused.
func Negotiate(req Request, facts Facts) (Set, []Correction) {
	set := Set{Facts: facts}
	var corrections []Correction
	for _, dep := range dependencies {
		if !*dep.flag(&req) {
			continue
		}
		if reason := dep.check(facts, set); reason != "" {
			corrections = append(corrections, Correction{Technique: dep.name, Reason: reason})
			continue
		}
		*dep.flag(&set.Request) = true
	}
	return set, corrections
}

// Corrected returns req with every refused technique switched off.
func Corrected(req Request, corrections []Correction) Request {
	for _, c := range corrections {
		for _, dep := range dependencies {
			if dep.name == c.Technique {
				*dep.flag(&req) = false
			}
		}
	}
	return req
}
