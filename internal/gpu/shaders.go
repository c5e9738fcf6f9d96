//go:build !nogpu

package gpu

import (
	_ "embed"
)

//go:embed shaders/seed.wgsl
var seedShaderSource string

//go:embed shaders/jfa.wgsl
var jfaShaderSource string

//go:embed shaders/encode.wgsl
var encodeShaderSource string

//go:embed shaders/render.wgsl
var renderShaderSource string

// shaderSource pairs a WGSL module with the label its pipelines use.
type shaderSource struct {
	label  string
	source string
}

func shaderSources() []shaderSource {
	return []shaderSource{
		{"ink_seed", seedShaderSource},
		{"ink_jfa", jfaShaderSource},
		{"ink_encode", encodeShaderSource},
		{"ink_render", renderShaderSource},
	}
}
