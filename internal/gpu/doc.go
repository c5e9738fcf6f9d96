//go:build !nogpu

// Package gpu runs the ink stroke passes on a wgpu/hal device.
//
// Every stroke update records one command buffer: three seed dispatches,
// the jump-flooding iterations, the encode dispatch and a fullscreen
// render pass into an RGBA8 target. The target is either copied back for
// CPU compositing or handed to the host as a native texture.
//
// The package registers nothing itself. The public ink/gpu package
// creates a StrokeAccelerator and registers it with ink.
package gpu
