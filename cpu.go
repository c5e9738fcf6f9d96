package ink

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/ink/internal/msdf"
	"github.com/gogpu/ink/internal/parallel"
)

// CPUAccelerator runs the stroke passes on a worker pool. It is the default
// when no GPU accelerator is registered and the fallback for jobs a GPU
// accelerator rejects with ErrFallbackToCPU.
type CPUAccelerator struct {
	workers int

	mu   sync.Mutex
	pool *parallel.WorkerPool
	own  bool
}

// NewCPUAccelerator creates a CPU accelerator. workers <= 0 shares the
// process-wide pool sized to GOMAXPROCS.
func NewCPUAccelerator(workers int) *CPUAccelerator {
	return &CPUAccelerator{workers: workers}
}

// Name returns "cpu".
func (a *CPUAccelerator) Name() string { return "cpu" }

// Init starts the worker pool.
func (a *CPUAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		return nil
	}
	if a.workers > 0 {
		a.pool = parallel.NewWorkerPool(a.workers)
		a.own = true
	} else {
		a.pool = parallel.Default()
	}
	return nil
}

// Close stops the worker pool if this accelerator owns it.
func (a *CPUAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.own && a.pool != nil {
		a.pool.Close()
	}
	a.pool = nil
	a.own = false
}

// Render runs Seed→JFA→Encode→Render for the job. Jobs with Params.Exact set
// skip the seed and JFA passes.
func (a *CPUAccelerator) Render(job *Job) (*Surface, error) {
	a.mu.Lock()
	pool := a.pool
	a.mu.Unlock()
	if pool == nil {
		return nil, ErrNotInitialized
	}
	buf := job.Edges
	if buf.Count() == 0 {
		return nil, nil
	}

	res := msdf.Generate(pool, buf, job.Params)
	img := pixelPool.get(buf.Width, buf.Height)
	composited := preload(img, job)
	msdf.Render(pool, res.Field, img, msdfColor(job.Color), float32(job.Opacity), msdfBlend(job.Mode), job.Params)

	Logger().Debug("ink: cpu stroke rendered",
		"width", buf.Width, "height", buf.Height,
		"edges", buf.Count(), "iterations", res.Iterations, "exact", job.Params.Exact)
	return newPooledSurface(img, SurfaceOrigin(buf), job.Mode, composited), nil
}

// preload fills the render target before blending and reports whether it
// now holds the destination pixels.
func preload(img *image.RGBA, job *Job) bool {
	if job.Destination != nil {
		h := min(img.Rect.Dy(), job.Destination.Rect.Dy())
		w := min(img.Rect.Dx(), job.Destination.Rect.Dx()) * 4
		for y := 0; y < h; y++ {
			src := job.Destination.Pix[y*job.Destination.Stride:]
			copy(img.Pix[y*img.Stride:y*img.Stride+w], src[:w])
		}
		return true
	}
	if job.Mode == BlendEraser {
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
	}
	return false
}

// SurfaceOrigin returns the layer-space pixel at which a buffer's surface is
// placed.
func SurfaceOrigin(b *EdgeBuffer) image.Point {
	return image.Pt(int(math.Floor(b.Bounds.MinX)), int(math.Floor(b.Bounds.MinY)))
}

// SurfaceRect returns the layer-space rectangle a buffer's surface covers.
func SurfaceRect(b *EdgeBuffer) image.Rectangle {
	o := SurfaceOrigin(b)
	return image.Rect(o.X, o.Y, o.X+b.Width, o.Y+b.Height)
}

func msdfColor(c RGBA) msdf.Color {
	return msdf.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

func msdfBlend(m BlendMode) msdf.Blend {
	if m == BlendEraser {
		return msdf.BlendEraser
	}
	return msdf.BlendPen
}
