// Package ink renders freehand strokes for drawing applications.
//
// # Overview
//
// Pointer samples are recorded into a polyline, packed into an edge buffer
// and turned into a multi-channel signed distance field by three passes:
// seed initialization, jump flooding and encoding. A render pass then
// reconstructs antialiased coverage from the per-channel median and blends
// it with the pen (source-over) or eraser (destination-out) pipeline.
//
// # Quick Start
//
//	r, err := ink.NewRenderer(layer, history)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	r.StartStroke(x, y, pressure)
//	r.UpdateStroke(x, y, pressure) // on every pointer move
//	r.Flush()                      // once per displayed frame
//	r.FinalizeStroke()             // on pointer up
//
// # Accelerators
//
// The passes run on the CPU worker pool by default. Importing the gpu
// package registers a wgpu/hal accelerator that runs them as compute
// shaders in a single command buffer per update:
//
//	import _ "github.com/gogpu/ink/gpu"
//
// When the GPU device is lost the renderer abandons the active stroke and
// reinitializes the accelerator with exponential backoff, rendering on the
// CPU in the meantime. Subscribe with Renderer.OnDeviceStatus.
//
// # Coordinate System
//
// Points are in layer-local space: origin at top-left, X right, Y down.
// Surfaces are placed at the floor of the stroke's padded bounds.
package ink
