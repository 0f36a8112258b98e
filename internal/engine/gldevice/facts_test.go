package gldevice

import (
	"testing"

	"github.com/Faultbox/midgard-water/internal/engine/capability"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in           string
		major, minor int
	}{
		{"2.1 Mesa 23.1.4", 2, 1},
		{"4.6.0 NVIDIA 535.54", 4, 6},
		{"1.5", 1, 5},
		{"", 1, 1},
		{"garbage", 1, 1},
		{"x.y", 1, 1},
	}
	for _, tt := range tests {
		ma, mi := parseVersion(tt.in)
		if ma != tt.major || mi != tt.minor {
			t.Errorf("parseVersion(%q) = %d.%d, want %d.%d", tt.in, ma, mi, tt.major, tt.minor)
		}
	}
}

func TestFactsFrom(t *testing.T) {
	tests := []struct {
		name    string
		version string
		exts    string
		units   int
		want    capability.Facts
	}{
		{
			name:    "legacy card with extensions",
			version: "1.2.2",
			exts:    "GL_ARB_multitexture GL_ARB_texture_env_combine GL_EXT_blend_color",
			units:   2,
			want: capability.Facts{
				TextureUnits:        2,
				TextureEnvCombine:   true,
				BlendColorExtension: true,
			},
		},
		{
			name:    "gl 2.1",
			version: "2.1 Mesa 23.1.4",
			units:   8,
			want: capability.Facts{
				TextureUnits:       8,
				CubeMap:            true,
				TextureEnvCombine:  true,
				Dot3Combine:        true,
				ConstantBlendColor: true,
				ShaderObjects:      true,
				FragmentShader:     true,
			},
		},
		{
			name:    "gl 2.1 with float textures",
			version: "2.1",
			exts:    "GL_ARB_texture_float",
			units:   4,
			want: capability.Facts{
				TextureUnits:       4,
				CubeMap:            true,
				TextureEnvCombine:  true,
				Dot3Combine:        true,
				ConstantBlendColor: true,
				ShaderObjects:      true,
				FragmentShader:     true,
				FloatTextures:      true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FactsFrom(tt.version, tt.exts, tt.units); got != tt.want {
				t.Errorf("FactsFrom = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFactsFromNegotiation(t *testing.T) {
	facts := FactsFrom("1.2.2", "GL_ARB_texture_env_combine", 1)
	set, corrections := capability.Negotiate(capability.Request{Reflections: true, Translucency: true}, facts)
	if set.Reflections || set.Translucency {
		t.Errorf("single unit card enabled %+v", set.Request)
	}
	if len(corrections) != 2 {
		t.Errorf("expected 2 corrections, got %v", corrections)
	}
}
