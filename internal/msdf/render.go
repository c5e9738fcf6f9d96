package msdf

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/ink/internal/parallel"
)

// Blend selects how coverage is combined with the destination.
type Blend uint8

const (
	// BlendPen is premultiplied source-over.
	BlendPen Blend = iota
	// BlendEraser is destination-out: dst × (1 − coverage).
	BlendEraser
)

// Color is a straight-alpha colour in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Render converts the field into coverage and blends it into dst, which must
// be exactly field-sized. dst holds premultiplied RGBA and may already carry
// the destination pixels under the stroke.
func Render(pool *parallel.WorkerPool, f *Field, dst *image.RGBA, c Color, opacity float32, mode Blend, p Params) {
	w := f.Width
	lo, hi := p.Threshold-p.Range, p.Threshold+p.Range
	pool.Dispatch(f.Height, rowsPerGroup, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				a := Smoothstep(lo, hi, f.Median(x, y)) * opacity * c.A
				px := row[x*4 : x*4+4 : x*4+4]
				blendPixel(px, c, a, mode)
			}
		}
	})
}

// Coverage returns the unblended alpha at (x, y).
func Coverage(f *Field, x, y int, p Params) float32 {
	return Smoothstep(p.Threshold-p.Range, p.Threshold+p.Range, f.Median(x, y))
}

func blendPixel(px []uint8, c Color, a float32, mode Blend) {
	inv := 1 - a
	var r, g, b, al float32
	switch mode {
	case BlendEraser:
		r = unorm(px[0]) * inv
		g = unorm(px[1]) * inv
		b = unorm(px[2]) * inv
		al = unorm(px[3]) * inv
	default:
		r = c.R*a + unorm(px[0])*inv
		g = c.G*a + unorm(px[1])*inv
		b = c.B*a + unorm(px[2])*inv
		al = a + unorm(px[3])*inv
	}
	px[0], px[1], px[2], px[3] = toUnorm(r), toUnorm(g), toUnorm(b), toUnorm(al)
}

func unorm(v uint8) float32 { return float32(v) / 255 }

func toUnorm(v float32) uint8 {
	return uint8(math32.Floor(clamp01(v)*255 + 0.5))
}

// Composite blends a coverage mask into dst with the same rules as Render.
// cov and dst share their origin; pixels outside either are skipped.
func Composite(dst *image.RGBA, cov *image.Alpha, c Color, opacity float32, mode Blend) {
	r := dst.Rect.Intersect(cov.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := unorm(cov.Pix[cov.PixOffset(x, y)]) * opacity * c.A
			i := dst.PixOffset(x, y)
			blendPixel(dst.Pix[i:i+4:i+4], c, a, mode)
		}
	}
}
