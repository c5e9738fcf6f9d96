//go:build !nogpu

// Package gpu registers the wgpu/hal stroke accelerator.
//
// Importing it moves the seed, jump-flooding, encode and render passes of
// every ink.Renderer created without WithAccelerator onto the GPU:
//
//	import _ "github.com/gogpu/ink/gpu" // enable GPU stroke rendering
//
// If GPU initialization fails (no Vulkan device, or a shader the local
// naga cannot lower), registration is skipped with a warning and strokes
// render on the CPU worker pool.
package gpu

import (
	"github.com/gogpu/ink"
	gpuimpl "github.com/gogpu/ink/internal/gpu"
)

func init() {
	if err := ink.RegisterAccelerator(&gpuimpl.StrokeAccelerator{}); err != nil {
		ink.Logger().Warn("GPU stroke accelerator not available", "err", err)
	}
}

// Texture is the native handle carried by surfaces rendered with
// Config.DirectPreview.
type Texture = gpuimpl.Texture

// SetDeviceProvider makes the registered accelerator share the host's GPU
// device instead of opening its own. The provider must expose
// HalDevice() any and HalQueue() any, as gogpu windows do through
// gpucontext.HalProvider.
//
// Call it once after the window's device exists, typically from
// bridge.NewLayer.
func SetDeviceProvider(provider any) error {
	return ink.SetAcceleratorDeviceProvider(provider)
}
