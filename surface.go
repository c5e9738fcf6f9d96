package ink

import (
	"image"
	"math/bits"
	"sync"
	"sync/atomic"
)

// Surface is the rendered result of one stroke update, placed at Offset in
// layer space.
//
// Image is nil when the accelerator handed over a native texture without
// reading it back; Native is nil on the CPU path. Release must be called
// exactly once by whoever owns the surface last; extra calls are ignored.
type Surface struct {
	Image  *image.RGBA
	Offset image.Point
	Native any

	// Mode is the blend mode the stroke was rendered with.
	Mode BlendMode

	// Composited reports that Image already contains the destination
	// pixels and replaces the region. Otherwise a pen surface is drawn
	// source-over and an eraser surface is a keep-mask multiplied into the
	// destination.
	Composited bool

	release  func()
	released atomic.Bool
}

var liveSurfaces atomic.Int64

// NewSurface creates a surface. release, if non-nil, runs once on Release
// and frees whatever backs img or native.
func NewSurface(img *image.RGBA, offset image.Point, native any, release func()) *Surface {
	liveSurfaces.Add(1)
	return &Surface{Image: img, Offset: offset, Native: native, release: release}
}

// Bounds returns the layer-space rectangle covered by the surface.
func (s *Surface) Bounds() image.Rectangle {
	if s.Image == nil {
		return image.Rectangle{Min: s.Offset, Max: s.Offset}
	}
	return s.Image.Bounds().Add(s.Offset)
}

// Released reports whether Release has run.
func (s *Surface) Released() bool {
	return s.released.Load()
}

// Release frees the surface's backing memory and native resources.
func (s *Surface) Release() {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}
	liveSurfaces.Add(-1)
	if s.release != nil {
		s.release()
	}
}

// LiveSurfaces returns the number of surfaces created and not yet released.
func LiveSurfaces() int {
	return int(liveSurfaces.Load())
}

// surfacePool recycles RGBA pixel slices by power-of-two size bucket.
type surfacePool struct {
	buckets [32]sync.Pool
}

var pixelPool surfacePool

func bucketOf(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// get returns a zeroed w×h image.
func (p *surfacePool) get(w, h int) *image.RGBA {
	n := w * h * 4
	b := bucketOf(n)
	if b >= len(p.buckets) {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	var pix []uint8
	if v, ok := p.buckets[b].Get().(*[]uint8); ok {
		pix = (*v)[:n]
		clear(pix)
	} else {
		pix = make([]uint8, n, 1<<b)
	}
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

func (p *surfacePool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	c := cap(img.Pix)
	b := bucketOf(c)
	if b >= len(p.buckets) || c != 1<<b {
		return
	}
	pix := img.Pix[:c]
	p.buckets[b].Put(&pix)
}

// newPooledSurface wraps a pooled image in a Surface that returns it to
// the pool on Release.
func newPooledSurface(img *image.RGBA, offset image.Point, mode BlendMode, composited bool) *Surface {
	s := NewSurface(img, offset, nil, func() { pixelPool.put(img) })
	s.Mode = mode
	s.Composited = composited
	return s
}
