package ink

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrMissingDependency is returned by NewRenderer when a required
	// collaborator is nil.
	ErrMissingDependency = errors.New("ink: missing required dependency")

	// ErrNotInitialized means a pass ran before its GPU resources existed.
	// The renderer logs it and skips the frame.
	ErrNotInitialized = errors.New("ink: pipeline not initialized")

	// ErrDeviceLost means the GPU device became unusable. The renderer
	// abandons the active stroke and starts recovery.
	ErrDeviceLost = errors.New("ink: GPU device lost")

	// ErrDeviceFatal means recovery attempts are exhausted.
	ErrDeviceFatal = errors.New("ink: GPU device unrecoverable")

	// ErrNoActiveStroke is returned by operations that need a stroke in progress.
	ErrNoActiveStroke = errors.New("ink: no active stroke")

	// ErrStrokeActive is returned by StartStroke while another stroke is in progress.
	ErrStrokeActive = errors.New("ink: stroke already active")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ink: renderer closed")

	// ErrFallbackToCPU is returned by accelerators that cannot handle a job.
	// The renderer retries it on the CPU.
	ErrFallbackToCPU = errors.New("ink: falling back to CPU rendering")
)

// Pipeline stages reported in StageError.
const (
	StageEdges    = "edges"
	StageSetup    = "setup"
	StageSeed     = "seed"
	StageJFA      = "jfa"
	StageEncode   = "encode"
	StageRender   = "render"
	StageSubmit   = "submit"
	StageReadback = "readback"
)

// StageError wraps a failure inside one pipeline stage with the dimensions
// and edge count of the job that hit it.
type StageError struct {
	Stage         string
	Width, Height int
	Edges         int
	Err           error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ink: %s stage failed (%dx%d, %d edges): %v", e.Stage, e.Width, e.Height, e.Edges, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "ink: invalid config." + e.Field + ": " + e.Reason
}
