package gldevice

import (
	"strconv"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-water/internal/engine/capability"
)

// ProbeFacts reads the hardware facts of the current GL context.
func ProbeFacts() capability.Facts {
	var units int32
	gl.GetIntegerv(gl.MAX_TEXTURE_UNITS, &units)
	return FactsFrom(
		gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.EXTENSIONS)),
		int(units),
	)
}

// FactsFrom derives hardware facts from a GL version string, the space
// separated extension list and the fixed-function texture unit count.
// Features promoted to core count as present on versions that include them.
func FactsFrom(version, extensions string, textureUnits int) capability.Facts {
	major, minor := parseVersion(version)
	atLeast := func(ma, mi int) bool {
		return major > ma || (major == ma && minor >= mi)
	}
	exts := make(map[string]bool)
	for _, e := range strings.Fields(extensions) {
		exts[e] = true
	}

	return capability.Facts{
		TextureUnits:        textureUnits,
		CubeMap:             atLeast(1, 3) || exts["GL_ARB_texture_cube_map"],
		TextureEnvCombine:   atLeast(1, 3) || exts["GL_ARB_texture_env_combine"],
		Dot3Combine:         atLeast(1, 3) || exts["GL_ARB_texture_env_dot3"],
		ConstantBlendColor:  atLeast(1, 4) || exts["GL_ARB_imaging"],
		BlendColorExtension: exts["GL_EXT_blend_color"],
		ShaderObjects:       atLeast(2, 0) || exts["GL_ARB_shader_objects"],
		FragmentShader:      atLeast(2, 0) || exts["GL_ARB_fragment_shader"],
		FloatTextures:       atLeast(3, 0) || exts["GL_ARB_texture_float"],
	}
}

// parseVersion reads "major.minor" from the start of a GL version string
// such as "2.1 Mesa 23.1.4". Unparseable strings yield 1.1.
func parseVersion(s string) (major, minor int) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 1, 1
	}
	parts := strings.SplitN(fields[0], ".", 3)
	if len(parts) < 2 {
		return 1, 1
	}
	ma, err1 := strconv.Atoi(parts[0])
	mi, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 1, 1
	}
	return ma, mi
}
