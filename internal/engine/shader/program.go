package shader

import (
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/logger"
)

// Program is a linked shader program with cached uniform locations. A
// program that failed to build stays usable as a value and reports
// Valid() == false; binding it is a no-op.
type Program struct {
	id       uint32
	err      error
	uniforms map[string]int32
}

// Load compiles and links a program. Failures are logged and recorded on the
// returned Program rather than returned.
func Load(name, vertexSrc, fragmentSrc string) *Program {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		logger.Error("shader program failed to load", zap.String("program", name), zap.Error(err))
	}
	return &Program{id: id, err: err, uniforms: make(map[string]int32)}
}

// ID returns the GL program name, 0 when invalid.
func (p *Program) ID() uint32 { return p.id }

// Err returns the build error, if any.
func (p *Program) Err() error { return p.err }

// Valid reports whether the program linked.
func (p *Program) Valid() bool {
	return p != nil && p.id != 0 && p.err == nil
}

// Bind makes the program current.
func (p *Program) Bind() {
	if p.Valid() {
		gl.UseProgram(p.id)
	}
}

// Unbind restores fixed-function rendering.
func (p *Program) Unbind() {
	gl.UseProgram(0)
}

// Uniform returns the location of a uniform, -1 if inactive.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// SetInt sets an int or sampler uniform on the bound program.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.Uniform(name), v)
}

// SetFloat sets a float uniform on the bound program.
func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.Uniform(name), v)
}

// SetVec3 sets a vec3 uniform on the bound program.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.Uniform(name), v[0], v[1], v[2])
}

// SetVec4 sets a vec4 uniform on the bound program.
func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.Uniform(name), v[0], v[1], v[2], v[3])
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}
