package shader

import _ "embed"

// WaterVertexShader is the vertex shader of the water shader technique.
//
//go:embed shaders/water.vert
var WaterVertexShader string

// WaterFragmentShader is the fragment shader of the water shader technique.
//
//go:embed shaders/water.frag
var WaterFragmentShader string
