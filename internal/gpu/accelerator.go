//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// StrokeAccelerator runs the stroke passes with wgpu/hal compute shaders.
// It implements ink.Accelerator.
//
// Render serializes submissions on one mutex. Each call records a single
// command buffer; readback jobs wait on its fence, direct jobs return at
// once and keep their resources until the surface is released.
type StrokeAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	pipes    *pipelines

	// provider is kept across Close so recovery reattaches to the host device.
	provider       halProvider
	externalDevice bool
	ready          bool
	adapterName    string

	live atomic.Int64
}

var (
	_ ink.Accelerator         = (*StrokeAccelerator)(nil)
	_ ink.DeviceProviderAware = (*StrokeAccelerator)(nil)
	_ ink.ResourceCounter     = (*StrokeAccelerator)(nil)
)

type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Name returns "gpu".
func (a *StrokeAccelerator) Name() string { return "gpu" }

// SetLogger receives the logger from ink.SetLogger.
func (a *StrokeAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// LiveResources returns how many updates still hold GPU buffers or
// textures. It drops to zero once every direct surface is released.
func (a *StrokeAccelerator) LiveResources() int { return int(a.live.Load()) }

// Init validates the shaders, opens a device (or reattaches to the shared
// one) and builds the pipelines. Calling Init on a ready accelerator is a
// no-op.
func (a *StrokeAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	if err := validateShaders(); err != nil {
		return &ink.StageError{Stage: ink.StageSetup, Err: err}
	}
	if a.provider != nil {
		if err := a.attach(a.provider); err != nil {
			return &ink.StageError{Stage: ink.StageSetup, Err: err}
		}
	} else if err := a.openDevice(); err != nil {
		a.closeLocked()
		return &ink.StageError{Stage: ink.StageSetup, Err: err}
	}
	pipes, err := createPipelines(a.device)
	if err != nil {
		a.closeLocked()
		return &ink.StageError{Stage: ink.StageSetup, Err: fmt.Errorf("create pipelines: %w", err)}
	}
	a.pipes = pipes
	a.ready = true
	slogger().Info("ink/gpu: accelerator initialized", "adapter", a.adapterName, "shared", a.externalDevice)
	return nil
}

// validateShaders compiles every module to SPIR-V with naga so a broken
// shader is reported by name before any device object exists.
func validateShaders() error {
	for _, src := range shaderSources() {
		spirv, err := naga.Compile(src.source)
		if err != nil {
			return fmt.Errorf("validate %s: %w", src.label, err)
		}
		slogger().Debug("ink/gpu: shader validated", "shader", src.label, "spirv_bytes", len(spirv))
	}
	return nil
}

func (a *StrokeAccelerator) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	a.adapterName = selected.Info.Name
	return nil
}

func (a *StrokeAccelerator) attach(hp halProvider) error {
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("ink/gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("ink/gpu: provider HalQueue is not hal.Queue")
	}
	a.device = device
	a.queue = queue
	a.externalDevice = true
	a.adapterName = "shared"
	return nil
}

// SetDeviceProvider switches the accelerator to a GPU device owned by the
// host (e.g., a gogpu window). The provider must implement HalDevice() any
// and HalQueue() any returning hal.Device and hal.Queue. The shared device
// is never destroyed by Close.
func (a *StrokeAccelerator) SetDeviceProvider(provider any) error {
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("ink/gpu: provider does not expose HAL types")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
	if err := a.attach(hp); err != nil {
		return err
	}
	a.provider = hp
	pipes, err := createPipelines(a.device)
	if err != nil {
		a.closeLocked()
		return fmt.Errorf("ink/gpu: create pipelines with shared device: %w", err)
	}
	a.pipes = pipes
	a.ready = true
	slogger().Info("ink/gpu: switched to shared GPU device")
	return nil
}

// Close destroys the pipelines and, unless shared, the device. Surfaces
// still holding direct textures keep them alive until released.
func (a *StrokeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
}

func (a *StrokeAccelerator) closeLocked() {
	if a.pipes != nil {
		a.pipes.destroy()
		a.pipes = nil
	}
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.ready = false
	a.externalDevice = false
}

// Render runs one update. Jobs larger than the default device limits
// return ink.ErrFallbackToCPU.
func (a *StrokeAccelerator) Render(job *ink.Job) (*ink.Surface, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return nil, ink.ErrNotInitialized
	}
	buf := job.Edges
	if buf.Count() == 0 {
		return nil, nil
	}
	if !fits(buf.Width, buf.Height, buf.Count()) {
		return nil, ink.ErrFallbackToCPU
	}

	f := &frame{
		device: a.device,
		queue:  a.queue,
		pipes:  a.pipes,
		job:    job,
		params: newFrameParams(job),
	}
	a.live.Add(1)
	f.onRelease = func() { a.live.Add(-1) }

	s, err := a.run(f, job.Direct)
	if err != nil {
		f.release()
		return nil, err
	}
	slogger().Debug("ink/gpu: stroke rendered",
		"width", buf.Width, "height", buf.Height, "edges", buf.Count(),
		"exact", f.params.exact(), "direct", job.Direct)
	return s, nil
}

func (a *StrokeAccelerator) run(f *frame, direct bool) (*ink.Surface, error) {
	b, err := f.prepare()
	if err != nil {
		return nil, f.stageErr(ink.StageSetup, err)
	}
	if err := f.target(direct); err != nil {
		return nil, f.stageErr(ink.StageRender, err)
	}
	var staging hal.Buffer
	if !direct {
		if staging, err = f.staging(); err != nil {
			return nil, f.stageErr(ink.StageReadback, err)
		}
	}
	if err := f.record(b, staging); err != nil {
		return nil, f.stageErr(ink.StageRender, err)
	}
	if err := f.submit(); err != nil {
		return nil, err
	}

	origin := ink.SurfaceOrigin(f.job.Edges)
	if direct {
		native := &Texture{Texture: f.texture, View: f.view, Width: int(f.params.Width), Height: int(f.params.Height)}
		s := ink.NewSurface(nil, origin, native, func() {
			// Waiting here only bounds destruction; a lost device has
			// already been reported by a later update.
			_, _ = f.device.Wait(f.fence, 1, fenceTimeout)
			f.release()
		})
		s.Mode = f.job.Mode
		s.Composited = f.job.Destination != nil
		return s, nil
	}

	img, err := f.readback(staging)
	if err != nil {
		return nil, err
	}
	f.release()
	s := ink.NewSurface(img, origin, nil, nil)
	s.Mode = f.job.Mode
	s.Composited = f.job.Destination != nil
	return s, nil
}
