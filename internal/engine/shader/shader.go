// Package shader compiles GLSL programs and tracks whether they loaded.
package shader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"
)

// BuildError names the stage of a program build that failed together with
// the driver's info log.
type BuildError struct {
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("shader %s: %s", e.Stage, e.Log)
}

type stage struct {
	kind   uint32
	name   string
	source string
}

// CompileProgram builds a program from GLSL sources and returns its GL name.
// Empty sources are rejected before any GL call is made.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	stages := []stage{
		{gl.VERTEX_SHADER, "vertex", vertexSrc},
		{gl.FRAGMENT_SHADER, "fragment", fragmentSrc},
	}
	for _, st := range stages {
		if strings.TrimSpace(st.source) == "" {
			return 0, &BuildError{Stage: st.name, Log: "empty source"}
		}
	}

	program := gl.CreateProgram()
	for _, st := range stages {
		id, err := compileStage(st)
		if err != nil {
			gl.DeleteProgram(program)
			return 0, err
		}
		// Flagged for deletion; the driver frees it with the program.
		gl.AttachShader(program, id)
		gl.DeleteShader(id)
	}

	gl.LinkProgram(program)
	var linked int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &linked)
	if linked == gl.FALSE {
		err := &BuildError{Stage: "link", Log: readLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)}
		gl.DeleteProgram(program)
		return 0, err
	}
	return program, nil
}

func compileStage(st stage) (uint32, error) {
	id := gl.CreateShader(st.kind)
	src, free := gl.Strs(st.source + "\x00")
	gl.ShaderSource(id, 1, src, nil)
	free()
	gl.CompileShader(id)

	var ok int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		err := &BuildError{Stage: st.name, Log: readLog(id, gl.GetShaderiv, gl.GetShaderInfoLog)}
		gl.DeleteShader(id)
		return 0, err
	}
	return id, nil
}

func readLog(id uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var n int32
	getiv(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return cleanLog(nil)
	}
	buf := make([]byte, n)
	getLog(id, n, nil, &buf[0])
	return cleanLog(buf)
}

// cleanLog drops the terminating NUL and trailing whitespace drivers leave
// in info logs.
func cleanLog(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "no info log"
	}
	return s
}
