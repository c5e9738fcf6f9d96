package ink

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/ink/internal/edge"
	"github.com/gogpu/ink/internal/msdf"
	"github.com/gogpu/ink/internal/stroke"
)

// State is the renderer's stroke state.
type State uint8

const (
	StateIdle State = iota
	StatePreviewing
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateFinalizing:
		return "finalizing"
	}
	return "unknown"
}

// Stats are cumulative renderer counters.
type Stats struct {
	// Flushes counts pipeline runs for previews.
	Flushes int
	// Strokes counts finalized strokes pushed to history.
	Strokes int
	// Taps counts finalized strokes rendered as a dot.
	Taps int
	// Failures counts runs that produced no surface because of an error.
	Failures int
	// Fallbacks counts jobs retried on the CPU.
	Fallbacks int

	// Points is the number of recorded points in the active stroke.
	Points int
	// Queued is the number of samples waiting for the next Flush.
	Queued int
	// LastEdges is the edge count of the most recent run.
	LastEdges int

	// LiveSurfaces is the process-wide count of unreleased surfaces.
	LiveSurfaces int

	Accelerator string
	Device      DeviceStatus
}

// Renderer turns pointer samples into stroke surfaces. Samples are queued
// by StartStroke and UpdateStroke; Flush, driven by the host's frame tick,
// runs the pass sequence at most once and replaces the preview.
// FinalizeStroke renders one last time and registers an undoable command.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	comp    Compositor
	hist    History
	brushes BrushSource

	accel Accelerator
	cpu   *CPUAccelerator

	cfg       Config
	params    PassParams
	mode      RenderMode
	immediate bool
	health    *health

	mu      sync.Mutex
	brush   Brush
	state   State
	pointer int
	rec     *Recorder
	queue   []StrokePoint
	dirty   bool
	preview *Surface
	closed  bool
	lost    error
	tapped  bool // last render drew a tap dot
	stats   Stats
}

// NewRenderer creates a renderer that inserts finalized strokes into comp
// and registers them with hist. Both are required.
//
// The accelerator is the one given by WithAccelerator, else the registered
// one, else the CPU accelerator. If it fails to initialize the renderer
// logs a warning and uses the CPU.
func NewRenderer(comp Compositor, hist History, opts ...Option) (*Renderer, error) {
	if comp == nil {
		return nil, fmt.Errorf("%w: compositor", ErrMissingDependency)
	}
	if hist == nil {
		return nil, fmt.Errorf("%w: history", ErrMissingDependency)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.config
	if o.mode != nil {
		cfg.Mode = *o.mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		comp:      comp,
		hist:      hist,
		brushes:   o.brushes,
		cfg:       cfg,
		params:    cfg.params(),
		mode:      cfg.Mode,
		immediate: o.immediate,
		brush:     cfg.Brush,
		pointer:   -1,
		rec:       NewRecorder(cfg.InterpolationThreshold, cfg.MinSampleDistance),
		cpu:       NewCPUAccelerator(cfg.Workers),
	}
	if err := r.cpu.Init(); err != nil {
		return nil, err
	}

	r.accel = o.accel
	if r.accel == nil {
		r.accel = Registered()
	} else if err := r.accel.Init(); err != nil {
		Logger().Warn("ink: accelerator init failed, using CPU", "name", r.accel.Name(), "err", err)
		r.accel = nil
	}
	if r.accel == nil {
		r.accel = r.cpu
	}
	r.health = newHealth(cfg.MaxRecoveryAttempts, time.Duration(cfg.RecoveryBaseDelay), o.scheduler, r.reinit)

	Logger().Debug("ink: renderer created", "accelerator", r.accel.Name(), "mode", r.mode.String())
	return r, nil
}

// unlock releases mu and reports a device loss seen while it was held.
func (r *Renderer) unlock() {
	lost := r.lost
	r.lost = nil
	r.mu.Unlock()
	if lost != nil {
		r.health.deviceLost(lost)
	}
}

// StartStroke begins a stroke at (x, y).
func (r *Renderer) StartStroke(x, y, pressure float64) error {
	return r.start(x, y, pressure, -1)
}

func (r *Renderer) start(x, y, pressure float64, pointer int) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	if r.health.current().State == DeviceFatal {
		return ErrDeviceFatal
	}
	if r.state != StateIdle {
		return ErrStrokeActive
	}
	if r.brushes != nil {
		b := r.brushes.Brush()
		if err := b.Validate(); err != nil {
			Logger().Warn("ink: brush source returned invalid brush", "err", err)
		} else {
			r.brush = b
		}
	}
	r.rec.Reset()
	r.queue = append(r.queue[:0], StrokePoint{X: x, Y: y, Pressure: pressure, Time: time.Now()})
	r.dirty = true
	r.pointer = pointer
	r.state = StatePreviewing
	if r.immediate {
		r.flushLocked()
	}
	return nil
}

// UpdateStroke adds a sample to the active stroke.
func (r *Renderer) UpdateStroke(x, y, pressure float64) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	if r.state != StatePreviewing {
		return ErrNoActiveStroke
	}
	r.queue = append(r.queue, StrokePoint{X: x, Y: y, Pressure: pressure, Time: time.Now()})
	r.dirty = true
	if r.immediate {
		r.flushLocked()
	}
	return nil
}

// Flush renders the queued samples into a new preview. It does nothing
// when no stroke is active or nothing changed since the last Flush.
// Rendering failures are logged, not returned.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	if r.state == StatePreviewing && r.dirty {
		r.flushLocked()
	}
	return nil
}

func (r *Renderer) flushLocked() {
	r.drainLocked()
	r.dirty = false
	surf := r.renderLocked(r.snapshotLocked(), r.cfg.DirectPreview)
	r.stats.Flushes++
	if r.state != StatePreviewing {
		surf.Release()
		return
	}
	r.preview.Release()
	r.preview = surf
}

func (r *Renderer) drainLocked() {
	for _, p := range r.queue {
		r.rec.Add(p)
	}
	r.queue = r.queue[:0]
}

// Preview returns the current preview surface, or nil. It stays valid
// until the next Flush, FinalizeStroke or CancelStroke; do not Release it.
func (r *Renderer) Preview() *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preview
}

// FinalizeStroke renders the stroke one last time, pushes an undoable
// command to history and applies it. A stroke that fails to render is
// dropped without touching history.
func (r *Renderer) FinalizeStroke() error {
	r.mu.Lock()
	if r.closed {
		r.unlock()
		return ErrClosed
	}
	if r.state != StatePreviewing {
		r.unlock()
		return ErrNoActiveStroke
	}
	r.state = StateFinalizing
	r.drainLocked()
	snap := r.snapshotLocked()
	surf := r.renderLocked(snap, false)
	if r.state != StateFinalizing {
		surf.Release()
		r.unlock()
		return nil
	}
	r.resetLocked()
	if surf == nil {
		r.unlock()
		return nil
	}
	r.stats.Strokes++
	if r.tapped {
		r.stats.Taps++
	}
	r.unlock()

	cmd := &strokeCommand{
		comp: r.comp,
		surf: surf,
		render: func() *Surface {
			r.mu.Lock()
			defer r.unlock()
			if r.closed {
				return nil
			}
			return r.renderLocked(snap, false)
		},
	}
	r.hist.Push(cmd)
	if err := cmd.Do(); err != nil {
		Logger().Error("ink: insert stroke failed", "err", err)
	}
	return nil
}

// CancelStroke discards the active stroke and its preview.
func (r *Renderer) CancelStroke() {
	r.mu.Lock()
	defer r.unlock()
	r.resetLocked()
}

func (r *Renderer) resetLocked() {
	r.queue = r.queue[:0]
	r.rec.Reset()
	r.preview.Release()
	r.preview = nil
	r.dirty = false
	r.pointer = -1
	r.state = StateIdle
}

// IsActive reports whether a stroke is in progress.
func (r *Renderer) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != StateIdle
}

// State returns the stroke state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// HandleSample routes a pointer sample. Samples from pointers other than
// the one that started the active stroke are ignored.
func (r *Renderer) HandleSample(s Sample) error {
	switch s.Type {
	case EventDown:
		return r.start(s.X, s.Y, s.Pressure, s.PointerID)
	case EventMove, EventUp, EventCancel:
		r.mu.Lock()
		own := r.state == StatePreviewing && r.pointer == s.PointerID
		r.mu.Unlock()
		if !own {
			return nil
		}
	}
	switch s.Type {
	case EventMove:
		return r.UpdateStroke(s.X, s.Y, s.Pressure)
	case EventUp:
		if err := r.UpdateStroke(s.X, s.Y, s.Pressure); err != nil {
			return err
		}
		return r.FinalizeStroke()
	case EventCancel:
		r.CancelStroke()
	}
	return nil
}

// SetBlendMode switches between the pen and eraser pipelines for
// subsequent renders.
func (r *Renderer) SetBlendMode(m BlendMode) {
	r.mu.Lock()
	r.brush.Mode = m
	r.mu.Unlock()
}

// SetBrush replaces the brush for subsequent renders.
func (r *Renderer) SetBrush(b Brush) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.brush = b
	r.mu.Unlock()
	return nil
}

// Brush returns the current brush.
func (r *Renderer) Brush() Brush {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brush
}

// OnDeviceStatus registers f for device health changes. f runs without
// renderer locks held and may call back into the renderer.
func (r *Renderer) OnDeviceStatus(f func(DeviceStatus)) {
	r.health.subscribe(f)
}

// DeviceStatus returns the current device health.
func (r *Renderer) DeviceStatus() DeviceStatus {
	return r.health.current()
}

// Stats returns a snapshot of the renderer counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	s := r.stats
	s.Points = r.rec.Len()
	s.Queued = len(r.queue)
	s.Accelerator = r.accel.Name()
	r.mu.Unlock()
	s.LiveSurfaces = LiveSurfaces()
	s.Device = r.health.current()
	return s
}

// Close cancels the active stroke and stops recovery. The accelerator is
// not closed; it belongs to the registry or the caller.
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.resetLocked()
	r.lost = nil
	r.mu.Unlock()
	r.health.close()
	r.cpu.Close()
}

// reinit recreates the accelerator's device and pipelines.
func (r *Renderer) reinit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.accel.Close()
	return r.accel.Init()
}

// snapshot is everything needed to render a stroke again later.
type snapshot struct {
	points []StrokePoint
	brush  Brush
	mode   RenderMode
}

func (r *Renderer) snapshotLocked() snapshot {
	return snapshot{points: r.rec.Points(), brush: r.brush, mode: r.mode}
}

// renderLocked runs the configured path for s and returns nil when there
// is nothing to draw or the run failed.
func (r *Renderer) renderLocked(s snapshot, direct bool) *Surface {
	r.tapped = false
	pts := edge.Clean(edgePoints(s.points))
	if len(pts) == 0 {
		return nil
	}
	size := s.brush.Size

	var buf *EdgeBuffer
	switch s.mode {
	case ModeOutline:
		if outline := stroke.Outline(pts, size); outline != nil {
			buf = edge.BuildClosed(outline, size)
		}
	default:
		buf = edge.Build(pts, size)
	}
	if buf == nil {
		return r.renderTapLocked(pts[len(pts)-1], s.brush)
	}
	r.stats.LastEdges = buf.Count()

	if s.mode == ModePolygon {
		rect := SurfaceRect(buf)
		return r.maskSurface(stroke.Capsules(pts, size, rect), s.brush)
	}

	params := r.params
	params.Exact = buf.Count() <= r.cfg.ExactEdgeThreshold
	job := &Job{
		Edges:   buf,
		Color:   s.brush.Color,
		Opacity: s.brush.Opacity,
		Mode:    s.brush.Mode,
		Params:  params,
		Direct:  direct,
	}
	if rr, ok := r.comp.(RegionReader); ok {
		job.Destination = rr.ReadRegion(SurfaceRect(buf))
	}
	return r.runLocked(job)
}

func (r *Renderer) runLocked(job *Job) *Surface {
	acc := r.accel
	if acc != r.cpu && r.health.current().State != DeviceHealthy {
		acc = r.cpu
	}
	surf, err := acc.Render(job)
	if errors.Is(err, ErrFallbackToCPU) && acc != r.cpu {
		r.stats.Fallbacks++
		Logger().Warn("ink: falling back to CPU", "accelerator", acc.Name())
		surf, err = r.cpu.Render(job)
	}
	if err == nil {
		return surf
	}

	r.stats.Failures++
	attrs := []any{
		"accelerator", acc.Name(),
		"width", job.Edges.Width, "height", job.Edges.Height,
		"edges", job.Edges.Count(), "err", err,
	}
	var se *StageError
	if errors.As(err, &se) {
		attrs = append(attrs, "stage", se.Stage)
	}
	switch {
	case errors.Is(err, ErrNotInitialized):
		Logger().Warn("ink: pipeline not initialized, frame skipped", attrs...)
	case errors.Is(err, ErrDeviceLost):
		Logger().Error("ink: device lost, stroke abandoned", attrs...)
		r.resetLocked()
		r.lost = err
	default:
		Logger().Error("ink: stroke render failed", attrs...)
	}
	return nil
}

// renderTapLocked draws a dot of diameter size × pressure for strokes too
// short to produce edges.
func (r *Renderer) renderTapLocked(p edge.Point, b Brush) *Surface {
	m := stroke.Dot(p.X, p.Y, b.Size*p.Pressure)
	if m == nil {
		return nil
	}
	r.tapped = true
	return r.maskSurface(m, b)
}

// maskSurface blends a coverage mask into a surface the same way the
// render pass blends the distance field.
func (r *Renderer) maskSurface(m *stroke.Mask, b Brush) *Surface {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	img := pixelPool.get(w, h)
	job := &Job{Mode: b.Mode}
	if rr, ok := r.comp.(RegionReader); ok {
		job.Destination = rr.ReadRegion(image.Rect(0, 0, w, h).Add(m.Origin))
	}
	composited := preload(img, job)
	msdf.Composite(img, m.Alpha, msdfColor(b.Color), float32(b.Opacity), msdfBlend(b.Mode))
	return newPooledSurface(img, m.Origin, b.Mode, composited)
}
