// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package bridge

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gpucontext"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/ink"
)

// Layer errors.
var (
	// ErrLayerClosed is returned when operations are attempted on a closed layer.
	ErrLayerClosed = errors.New("bridge: layer is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("bridge: invalid dimensions")

	// ErrNoPixels is returned by AddStroke for a surface without a CPU image.
	ErrNoPixels = errors.New("bridge: surface has no pixels")
)

// committed is a stroke inserted into the layer and the pixels it covered.
type committed struct {
	surf  *ink.Surface
	rect  image.Rectangle
	under *image.RGBA
}

// Layer is a premultiplied RGBA pixel layer that ink strokes are committed
// to. It is safe for concurrent use: the renderer may commit strokes while
// the frame loop presents.
type Layer struct {
	mu sync.Mutex

	img     *image.RGBA
	strokes []committed

	preview *ink.Surface
	shown   *ink.Surface // preview composed into the last uploaded frame
	scratch *image.RGBA

	texture hostTexture
	dirty   bool
	closed  bool
}

var (
	_ ink.Compositor   = (*Layer)(nil)
	_ ink.RegionReader = (*Layer)(nil)
)

// NewLayer creates a transparent layer. When provider is non-nil the
// registered accelerator is asked to share its GPU device; failure to do
// so is not an error and the accelerator keeps its own device.
func NewLayer(provider gpucontext.DeviceProvider, width, height int) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if provider != nil {
		if err := ink.SetAcceleratorDeviceProvider(provider); err != nil {
			ink.Logger().Warn("bridge: accelerator keeps its own device", "err", err)
		}
	}
	return &Layer{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		dirty: true,
	}, nil
}

// Size returns the layer dimensions.
func (l *Layer) Size() (width, height int) {
	return l.img.Rect.Dx(), l.img.Rect.Dy()
}

// Fill replaces every pixel with c and forgets committed strokes.
func (l *Layer) Fill(c color.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	xdraw.Draw(l.img, l.img.Rect, image.NewUniform(c), image.Point{}, xdraw.Src)
	l.strokes = l.strokes[:0]
	l.dirty = true
}

// Snapshot returns a copy of the committed pixels.
func (l *Layer) Snapshot() *image.RGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := image.NewRGBA(l.img.Rect)
	copy(out.Pix, l.img.Pix)
	return out
}

// ReadRegion implements ink.RegionReader. Pixels outside the layer are
// transparent.
func (l *Layer) ReadRegion(r image.Rectangle) *image.RGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRegionLocked(r)
}

func (l *Layer) readRegionLocked(r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(out, out.Rect, l.img, r.Min, xdraw.Src)
	return out
}

// AddStroke implements ink.Compositor.
func (l *Layer) AddStroke(s *ink.Surface) error {
	if s == nil || s.Image == nil {
		return ErrNoPixels
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLayerClosed
	}
	rect := s.Bounds()
	under := l.readRegionLocked(rect)
	compose(l.img, s)
	l.strokes = append(l.strokes, committed{surf: s, rect: rect, under: under})
	l.dirty = true
	return nil
}

// RemoveStroke implements ink.Compositor by restoring the pixels the
// stroke covered. History removes strokes newest first; removing an older
// stroke also discards what later strokes drew over its area.
func (l *Layer) RemoveStroke(s *ink.Surface) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.strokes) - 1; i >= 0; i-- {
		c := l.strokes[i]
		if c.surf != s {
			continue
		}
		if i != len(l.strokes)-1 {
			ink.Logger().Warn("bridge: removing a stroke out of order", "index", i, "strokes", len(l.strokes))
		}
		xdraw.Draw(l.img, c.rect, c.under, image.Point{}, xdraw.Src)
		l.strokes = append(l.strokes[:i], l.strokes[i+1:]...)
		l.dirty = true
		return
	}
}

// Strokes returns the number of committed strokes.
func (l *Layer) Strokes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.strokes)
}

// SetPreview sets the in-progress stroke drawn on top of the layer.
// The renderer owns the surface and releases it on the next Flush, so
// call SetPreview and Present from the goroutine that calls Flush.
func (l *Layer) SetPreview(s *ink.Surface) {
	l.mu.Lock()
	l.preview = s
	l.mu.Unlock()
}

// compose applies a stroke surface to dst: composited surfaces replace
// their area, pen surfaces are drawn source-over, and eraser keep-masks
// scale the destination by their alpha.
func compose(dst *image.RGBA, s *ink.Surface) {
	r := s.Bounds().Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	sp := r.Min.Sub(s.Offset)
	switch {
	case s.Composited:
		xdraw.Draw(dst, r, s.Image, sp, xdraw.Src)
	case s.Mode == ink.BlendEraser:
		keepMask(dst, r, s.Image, sp)
	default:
		xdraw.Draw(dst, r, s.Image, sp, xdraw.Over)
	}
}

// keepMask multiplies every channel of dst in r by the mask's alpha.
func keepMask(dst *image.RGBA, r image.Rectangle, mask *image.RGBA, sp image.Point) {
	for y := 0; y < r.Dy(); y++ {
		d := dst.Pix[dst.PixOffset(r.Min.X, r.Min.Y+y):]
		m := mask.Pix[mask.PixOffset(sp.X, sp.Y+y):]
		for x := 0; x < r.Dx(); x++ {
			a := uint32(m[x*4+3])
			for c := 0; c < 4; c++ {
				d[x*4+c] = uint8((uint32(d[x*4+c])*a + 127) / 255) //nolint:gosec // ≤ 255
			}
		}
	}
}

// Present uploads the layer, with any CPU preview composed in, and draws
// it at the origin. A native preview is drawn on top when dc implements
// NativeDrawer.
func (l *Layer) Present(dc TextureDrawer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLayerClosed
	}
	l.texture.collect()

	preview := l.preview
	if preview != nil && preview.Released() {
		preview = nil
	}
	var cpuPreview, nativePreview *ink.Surface
	switch {
	case preview == nil:
	case preview.Image != nil:
		cpuPreview = preview
	case preview.Native != nil:
		nativePreview = preview
	}

	if l.dirty || cpuPreview != l.shown || l.texture.tex == nil {
		frame := l.img
		if cpuPreview != nil {
			if l.scratch == nil || l.scratch.Rect != l.img.Rect {
				l.scratch = image.NewRGBA(l.img.Rect)
			}
			copy(l.scratch.Pix, l.img.Pix)
			compose(l.scratch, cpuPreview)
			frame = l.scratch
		}
		w, h := l.img.Rect.Dx(), l.img.Rect.Dy()
		if err := l.texture.upload(dc.TextureCreator(), w, h, frame.Pix); err != nil {
			return fmt.Errorf("bridge: upload layer: %w", err)
		}
		l.dirty = false
		l.shown = cpuPreview
	}

	if err := dc.DrawTexture(l.texture.tex, 0, 0); err != nil {
		return fmt.Errorf("bridge: draw layer: %w", err)
	}
	if nativePreview != nil {
		if nd, ok := dc.(NativeDrawer); ok {
			o := nativePreview.Offset
			if err := nd.DrawNative(nativePreview.Native, float32(o.X), float32(o.Y)); err != nil {
				return fmt.Errorf("bridge: draw native preview: %w", err)
			}
		}
	}
	return nil
}

// Textures returns the number of host textures not yet destroyed.
func (l *Layer) Textures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.texture.live()
}

// Close destroys the host textures. It is idempotent.
func (l *Layer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.texture.destroy()
	l.preview, l.shown = nil, nil
	return nil
}
