//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink"
)

var targetFormat = gputypes.TextureFormatRGBA8Unorm

// fenceTimeout bounds every wait on a submitted update.
const fenceTimeout = 5 * time.Second

// Texture is the native handle carried by direct surfaces. It stays valid
// until the surface is released.
type Texture struct {
	Texture       hal.Texture
	View          hal.TextureView
	Width, Height int
}

// frame owns every per-update GPU object. Nothing in it outlives the
// surface produced from it.
type frame struct {
	device hal.Device
	queue  hal.Queue
	pipes  *pipelines
	job    *ink.Job
	params frameParams

	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
	texture    hal.Texture
	view       hal.TextureView
	cmd        hal.CommandBuffer
	fence      hal.Fence

	onRelease func()
}

// stageErr tags err with the stage and job dimensions.
func (f *frame) stageErr(stage string, err error) error {
	return &ink.StageError{
		Stage: stage,
		Width: int(f.params.Width), Height: int(f.params.Height),
		Edges: int(f.params.EdgeCount),
		Err:   err,
	}
}

func (f *frame) buffer(desc *hal.BufferDescriptor, data []byte) (hal.Buffer, error) {
	b, err := f.device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", desc.Label, err)
	}
	f.buffers = append(f.buffers, b)
	if data != nil {
		f.queue.WriteBuffer(b, 0, data)
	}
	return b, nil
}

func (f *frame) storage(label string, size uint64, data []byte) (hal.Buffer, error) {
	return f.buffer(&hal.BufferDescriptor{
		Label: label, Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	}, data)
}

// uniform creates a params buffer with the given JFA step.
func (f *frame) uniform(label string, step uint32) (hal.Buffer, error) {
	p := f.params
	p.Step = step
	return f.buffer(&hal.BufferDescriptor{
		Label: label, Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	}, p.bytes())
}

// staging creates the readback buffer for the render target.
func (f *frame) staging() (hal.Buffer, error) {
	return f.buffer(&hal.BufferDescriptor{
		Label: "ink_staging", Size: uint64(f.params.Width) * uint64(f.params.Height) * 4,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	}, nil)
}

// bufferRef is one bound buffer and its bound size.
type bufferRef struct {
	buf  hal.Buffer
	size uint64
}

func (f *frame) bind(label string, layout hal.BindGroupLayout, refs ...bufferRef) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, len(refs))
	for i, r := range refs {
		entries[i] = gputypes.BindGroupEntry{
			Binding:  uint32(i), //nolint:gosec // at most four
			Resource: gputypes.BufferBinding{Buffer: r.buf.NativeHandle(), Offset: 0, Size: r.size},
		}
	}
	bg, err := f.device.CreateBindGroup(&hal.BindGroupDescriptor{Label: label, Layout: layout, Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	f.bindGroups = append(f.bindGroups, bg)
	return bg, nil
}

// bindings are the bind groups one update dispatches with.
type bindings struct {
	seed   hal.BindGroup
	jfa    []hal.BindGroup
	encode hal.BindGroup
	render hal.BindGroup
}

// prepare uploads the edges and builds every buffer and bind group.
// In exact mode the seed and JFA groups are left nil.
func (f *frame) prepare() (*bindings, error) {
	w, h := int(f.params.Width), int(f.params.Height)
	texels := uint64(w) * uint64(h)
	fieldSize := texels * texelSize

	edgeBytes := packEdges(f.job.Edges.Edges)
	edges, err := f.storage("ink_edges", uint64(len(edgeBytes)), edgeBytes)
	if err != nil {
		return nil, err
	}
	base, err := f.uniform("ink_params", 0)
	if err != nil {
		return nil, err
	}
	field, err := f.storage("ink_field", fieldSize, nil)
	if err != nil {
		return nil, err
	}

	b := &bindings{}
	seeds := bufferRef{size: texelSize}
	if f.params.exact() {
		// The encoder never reads seeds in exact mode; bind a single texel.
		if seeds.buf, err = f.storage("ink_seeds_unused", texelSize, nil); err != nil {
			return nil, err
		}
	} else {
		keys, err := f.storage("ink_seed_keys", texels*keySize, nil)
		if err != nil {
			return nil, err
		}
		ping, err := f.storage("ink_seeds_a", fieldSize, nil)
		if err != nil {
			return nil, err
		}
		pong, err := f.storage("ink_seeds_b", fieldSize, nil)
		if err != nil {
			return nil, err
		}
		if b.seed, err = f.bind("ink_seed", f.pipes.seedLayout,
			bufferRef{base, paramsSize}, bufferRef{edges, uint64(len(edgeBytes))},
			bufferRef{keys, texels * keySize}, bufferRef{ping, fieldSize}); err != nil {
			return nil, err
		}

		src, dst := ping, pong
		for k, step := range jfaSteps(w, h) {
			ub, err := f.uniform("ink_jfa_params", step)
			if err != nil {
				return nil, err
			}
			bg, err := f.bind(fmt.Sprintf("ink_jfa_%d", k), f.pipes.jfaLayout,
				bufferRef{ub, paramsSize}, bufferRef{src, fieldSize}, bufferRef{dst, fieldSize})
			if err != nil {
				return nil, err
			}
			b.jfa = append(b.jfa, bg)
			src, dst = dst, src
		}
		seeds = bufferRef{src, fieldSize}
	}

	if b.encode, err = f.bind("ink_encode", f.pipes.encodeLayout,
		bufferRef{base, paramsSize}, bufferRef{edges, uint64(len(edgeBytes))},
		seeds, bufferRef{field, fieldSize}); err != nil {
		return nil, err
	}
	if b.render, err = f.bind("ink_render", f.pipes.renderLayout,
		bufferRef{base, paramsSize}, bufferRef{field, fieldSize}); err != nil {
		return nil, err
	}
	return b, nil
}

// target creates the render target and uploads the destination pixels
// when the job carries them.
func (f *frame) target(direct bool) error {
	w, h := f.params.Width, f.params.Height
	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	if direct {
		usage |= gputypes.TextureUsageTextureBinding
	}
	tex, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ink_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	f.texture = tex
	view, err := f.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "ink_target_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create target view: %w", err)
	}
	f.view = view

	if dst := f.job.Destination; dst != nil {
		f.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
			tightPixels(dst, int(w), int(h)),
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
			&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
	}
	return nil
}

// colorAttachment loads the uploaded destination, or clears to
// transparent for the pen and to opaque white for an eraser keep-mask.
func (f *frame) colorAttachment() hal.RenderPassColorAttachment {
	a := hal.RenderPassColorAttachment{View: f.view, LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore}
	switch {
	case f.job.Destination != nil:
		a.LoadOp = gputypes.LoadOpLoad
	case f.job.Mode == ink.BlendEraser:
		a.ClearValue = gputypes.Color{R: 1, G: 1, B: 1, A: 1}
	}
	return a
}

func (f *frame) computePass(enc hal.CommandEncoder, label string, pipe hal.ComputePipeline, bg hal.BindGroup, x, y uint32) {
	pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipe)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(x, y, 1)
	pass.End()
}

// record encodes the whole update into one command buffer. When staging
// is non-nil the target is copied into it after the render pass.
func (f *frame) record(b *bindings, staging hal.Buffer) error {
	w, h := int(f.params.Width), int(f.params.Height)
	enc, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ink_stroke_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("ink_stroke"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// One compute pass per dispatch so each sees the previous one's writes.
	gx, gy := tileGroups(w, h)
	if b.seed != nil {
		f.computePass(enc, "ink_seed_clear", f.pipes.clearKeys, b.seed, linearGroups(w*h), 1)
		f.computePass(enc, "ink_seed_scatter", f.pipes.scatter, b.seed, linearGroups(int(f.params.EdgeCount)*seedSamples), 1)
		f.computePass(enc, "ink_seed_resolve", f.pipes.resolve, b.seed, linearGroups(w*h), 1)
		for _, bg := range b.jfa {
			f.computePass(enc, "ink_jfa", f.pipes.jfa, bg, gx, gy)
		}
	}
	f.computePass(enc, "ink_encode", f.pipes.encode, b.encode, gx, gy)

	pipe := f.pipes.pen
	if f.job.Mode == ink.BlendEraser {
		pipe = f.pipes.eraser
	}
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "ink_render_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{f.colorAttachment()},
	})
	rp.SetPipeline(pipe)
	rp.SetBindGroup(0, b.render, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	if staging != nil {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: f.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		uw, uh := f.params.Width, f.params.Height
		enc.CopyTextureToBuffer(f.texture, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uw * 4, RowsPerImage: uh},
			TextureBase:  hal.ImageCopyTexture{Texture: f.texture, MipLevel: 0},
			Size:         hal.Extent3D{Width: uw, Height: uh, DepthOrArrayLayers: 1},
		}})
	}

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	f.cmd = cmd
	return nil
}

// submit queues the command buffer with a fresh fence. A failure here
// means the device is gone.
func (f *frame) submit() error {
	fence, err := f.device.CreateFence()
	if err != nil {
		return f.stageErr(ink.StageSubmit, fmt.Errorf("%w: create fence: %w", ink.ErrDeviceLost, err))
	}
	f.fence = fence
	if err := f.queue.Submit([]hal.CommandBuffer{f.cmd}, fence, 1); err != nil {
		return f.stageErr(ink.StageSubmit, fmt.Errorf("%w: submit: %w", ink.ErrDeviceLost, err))
	}
	return nil
}

func (f *frame) wait() error {
	ok, err := f.device.Wait(f.fence, 1, fenceTimeout)
	if err != nil || !ok {
		return f.stageErr(ink.StageSubmit, fmt.Errorf("%w: wait for GPU: ok=%v err=%v", ink.ErrDeviceLost, ok, err))
	}
	return nil
}

// readback waits for the update and copies the staging buffer into an image.
func (f *frame) readback(staging hal.Buffer) (*image.RGBA, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	w, h := int(f.params.Width), int(f.params.Height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := f.queue.ReadBuffer(staging, 0, img.Pix); err != nil {
		return nil, f.stageErr(ink.StageReadback, fmt.Errorf("%w: read staging: %w", ink.ErrDeviceLost, err))
	}
	return img, nil
}

// release destroys everything the frame created. It is safe to call on a
// partially built frame.
func (f *frame) release() {
	d := f.device
	if f.cmd != nil {
		d.FreeCommandBuffer(f.cmd)
	}
	if f.fence != nil {
		d.DestroyFence(f.fence)
	}
	for _, bg := range f.bindGroups {
		d.DestroyBindGroup(bg)
	}
	for _, b := range f.buffers {
		d.DestroyBuffer(b)
	}
	if f.view != nil {
		d.DestroyTextureView(f.view)
	}
	if f.texture != nil {
		d.DestroyTexture(f.texture)
	}
	*f = frame{device: d, onRelease: f.onRelease}
	if f.onRelease != nil {
		f.onRelease()
		f.onRelease = nil
	}
}
