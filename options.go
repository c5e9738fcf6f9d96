package ink

// Option configures a Renderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	config    Config
	accel     Accelerator
	brushes   BrushSource
	immediate bool
	mode      *RenderMode
	scheduler Scheduler
}

func defaultOptions() rendererOptions {
	return rendererOptions{config: DefaultConfig()}
}

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(o *rendererOptions) {
		o.config = c
	}
}

// WithAccelerator sets the accelerator instead of the registered one.
// The renderer calls Init on it and never Close; the caller owns it.
func WithAccelerator(a Accelerator) Option {
	return func(o *rendererOptions) {
		o.accel = a
	}
}

// WithBrushSource reads the brush from s at the start of every stroke.
func WithBrushSource(s BrushSource) Option {
	return func(o *rendererOptions) {
		o.brushes = s
	}
}

// WithImmediateFlush renders on every StartStroke and UpdateStroke, for
// hosts without a frame loop.
func WithImmediateFlush() Option {
	return func(o *rendererOptions) {
		o.immediate = true
	}
}

// WithRenderMode overrides Config.Mode.
func WithRenderMode(m RenderMode) Option {
	return func(o *rendererOptions) {
		o.mode = &m
	}
}

// WithScheduler replaces time.AfterFunc for device recovery backoff.
func WithScheduler(s Scheduler) Option {
	return func(o *rendererOptions) {
		o.scheduler = s
	}
}
