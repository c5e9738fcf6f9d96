//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pipelines holds the device objects that live from Init to Close.
// Per-update buffers and bind groups belong to a frame.
type pipelines struct {
	device hal.Device

	shaders []hal.ShaderModule

	seedLayout   hal.BindGroupLayout
	jfaLayout    hal.BindGroupLayout
	encodeLayout hal.BindGroupLayout
	renderLayout hal.BindGroupLayout

	pipeLayouts []hal.PipelineLayout

	clearKeys hal.ComputePipeline
	scatter   hal.ComputePipeline
	resolve   hal.ComputePipeline
	jfa       hal.ComputePipeline
	encode    hal.ComputePipeline

	pen    hal.RenderPipeline
	eraser hal.RenderPipeline
}

// binding is the kind of buffer bound at one slot.
type binding int

const (
	bindUniform binding = iota
	bindRead
	bindReadWrite
)

// bufferEntries lays out buffer bindings 0..n-1 visible to the compute
// stage, or to the fragment stage when fragment is set.
func bufferEntries(fragment bool, kinds ...binding) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(kinds))
	for i, k := range kinds {
		e := gputypes.BindGroupLayoutEntry{Binding: uint32(i), Visibility: gputypes.ShaderStageCompute} //nolint:gosec // at most four
		if fragment {
			e.Visibility = gputypes.ShaderStageFragment
		}
		switch k {
		case bindUniform:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case bindRead:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
		default:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
		}
		entries[i] = e
	}
	return entries
}

// createPipelines compiles the four shader modules and builds every
// pipeline. On error the partially built set is destroyed.
func createPipelines(device hal.Device) (_ *pipelines, err error) {
	p := &pipelines{device: device}
	defer func() {
		if err != nil {
			p.destroy()
		}
	}()

	modules := make(map[string]hal.ShaderModule, 4)
	for _, src := range shaderSources() {
		m, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  src.label,
			Source: hal.ShaderSource{WGSL: src.source},
		})
		if err != nil {
			return nil, fmt.Errorf("compile %s shader: %w", src.label, err)
		}
		p.shaders = append(p.shaders, m)
		modules[src.label] = m
	}

	if p.seedLayout, err = p.bindLayout("ink_seed_bind_layout",
		bufferEntries(false, bindUniform, bindRead, bindReadWrite, bindReadWrite)); err != nil {
		return nil, err
	}
	if p.jfaLayout, err = p.bindLayout("ink_jfa_bind_layout",
		bufferEntries(false, bindUniform, bindRead, bindReadWrite)); err != nil {
		return nil, err
	}
	if p.encodeLayout, err = p.bindLayout("ink_encode_bind_layout",
		bufferEntries(false, bindUniform, bindRead, bindRead, bindReadWrite)); err != nil {
		return nil, err
	}
	if p.renderLayout, err = p.bindLayout("ink_render_bind_layout",
		bufferEntries(true, bindUniform, bindRead)); err != nil {
		return nil, err
	}

	seedPL, err := p.pipeLayout("ink_seed_pipe_layout", p.seedLayout)
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		dst   *hal.ComputePipeline
		entry string
	}{
		{&p.clearKeys, "clear_keys"},
		{&p.scatter, "scatter"},
		{&p.resolve, "resolve"},
	} {
		if *c.dst, err = p.computePipeline("ink_seed_"+c.entry, seedPL, modules["ink_seed"], c.entry); err != nil {
			return nil, err
		}
	}

	jfaPL, err := p.pipeLayout("ink_jfa_pipe_layout", p.jfaLayout)
	if err != nil {
		return nil, err
	}
	if p.jfa, err = p.computePipeline("ink_jfa", jfaPL, modules["ink_jfa"], "main"); err != nil {
		return nil, err
	}

	encodePL, err := p.pipeLayout("ink_encode_pipe_layout", p.encodeLayout)
	if err != nil {
		return nil, err
	}
	if p.encode, err = p.computePipeline("ink_encode", encodePL, modules["ink_encode"], "main"); err != nil {
		return nil, err
	}

	renderPL, err := p.pipeLayout("ink_render_pipe_layout", p.renderLayout)
	if err != nil {
		return nil, err
	}
	if p.pen, err = p.renderPipeline("ink_render_pen", renderPL, modules["ink_render"], gputypes.BlendStatePremultiplied()); err != nil {
		return nil, err
	}
	if p.eraser, err = p.renderPipeline("ink_render_eraser", renderPL, modules["ink_render"], eraserBlend()); err != nil {
		return nil, err
	}
	return p, nil
}

// eraserBlend keeps dst·(1−a): destination-out with the coverage as source.
func eraserBlend() gputypes.BlendState {
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: c, Alpha: c}
}

func (p *pipelines) bindLayout(label string, entries []gputypes.BindGroupLayoutEntry) (hal.BindGroupLayout, error) {
	l, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: label, Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return l, nil
}

func (p *pipelines) pipeLayout(label string, layout hal.BindGroupLayout) (hal.PipelineLayout, error) {
	pl, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label, BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	p.pipeLayouts = append(p.pipeLayouts, pl)
	return pl, nil
}

func (p *pipelines) computePipeline(label string, layout hal.PipelineLayout, module hal.ShaderModule, entry string) (hal.ComputePipeline, error) {
	cp, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label, Layout: layout,
		Compute: hal.ComputeState{Module: module, EntryPoint: entry},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return cp, nil
}

func (p *pipelines) renderPipeline(label string, layout hal.PipelineLayout, module hal.ShaderModule, blend gputypes.BlendState) (hal.RenderPipeline, error) {
	rp, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return rp, nil
}

func (p *pipelines) destroy() {
	d := p.device
	for _, rp := range []hal.RenderPipeline{p.pen, p.eraser} {
		if rp != nil {
			d.DestroyRenderPipeline(rp)
		}
	}
	for _, cp := range []hal.ComputePipeline{p.clearKeys, p.scatter, p.resolve, p.jfa, p.encode} {
		if cp != nil {
			d.DestroyComputePipeline(cp)
		}
	}
	for _, pl := range p.pipeLayouts {
		d.DestroyPipelineLayout(pl)
	}
	for _, l := range []hal.BindGroupLayout{p.seedLayout, p.jfaLayout, p.encodeLayout, p.renderLayout} {
		if l != nil {
			d.DestroyBindGroupLayout(l)
		}
	}
	for _, m := range p.shaders {
		d.DestroyShaderModule(m)
	}
	*p = pipelines{device: d}
}
