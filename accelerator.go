package ink

import (
	"errors"
	"image"
	"sync"

	"github.com/gogpu/ink/internal/msdf"
)

// PassParams are the constants shared by the encode and render passes.
type PassParams = msdf.Params

// Job is one Seed→JFA→Encode→Render run for a stroke update.
type Job struct {
	Edges   *EdgeBuffer
	Color   RGBA
	Opacity float64
	Mode    BlendMode
	Params  PassParams

	// Destination holds the layer pixels under Edges.Bounds, premultiplied
	// and sized Edges.Width × Edges.Height. When nil the render target is
	// cleared to transparent, or to opaque white for the eraser so the
	// result is a keep-mask.
	Destination *image.RGBA

	// Direct allows the accelerator to return a Surface carrying only a
	// native texture handle without a CPU readback.
	Direct bool
}

// Accelerator runs the stroke passes. The CPU implementation is always
// available; GPU implementations register themselves from the ink/gpu
// package:
//
//	import _ "github.com/gogpu/ink/gpu" // enables GPU stroke rendering
type Accelerator interface {
	// Name returns the accelerator name (e.g., "cpu", "vulkan").
	Name() string

	// Init creates the device and compiles pipelines. It is also called
	// again after Close during device-loss recovery.
	Init() error

	// Close releases every resource Init created.
	Close()

	// Render runs one job and returns the stroke surface.
	// Returns ErrFallbackToCPU if the job cannot be accelerated,
	// ErrNotInitialized before Init, and an error wrapping ErrDeviceLost
	// when the device became unusable.
	Render(job *Job) (*Surface, error)
}

// DeviceProviderAware is an optional interface for accelerators that can
// share a GPU device with the host (e.g., a gogpu window). The provider
// implements HalDevice() any and HalQueue() any.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

// ResourceCounter is an optional interface for accelerators that track
// per-update GPU resources.
type ResourceCounter interface {
	LiveResources() int
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers the process-wide accelerator used by
// renderers created without WithAccelerator.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. Init is called during registration; if it fails the
// accelerator is not registered and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("ink: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil && old != a {
		old.Close()
	}
	Logger().Info("ink: accelerator registered", "name", a.Name())
	return nil
}

// Registered returns the registered accelerator, or nil if none.
func Registered() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator. It is a no-op when none is registered or it cannot share
// devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Registered()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
