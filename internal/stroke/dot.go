package stroke

import (
	"image"
	"math"

	"github.com/gogpu/ink/internal/cache"
)

// Tap positions are snapped to 1/8 px and diameters to 1/16 px so repeated
// taps reuse one rasterized stamp.
const (
	positionSteps = 8
	diameterSteps = 16
	stampLimit    = 256
)

type stampKey struct {
	diameter int // in 1/diameterSteps px
	fx, fy   int // subpixel offset in 1/positionSteps px
}

var stamps = cache.New[stampKey, *Mask](stampLimit)

// Dot returns the coverage of a disc of the given diameter centred on
// (x, y). The mask is sized to the disc's pixel bounds and must not be
// modified: stamps are shared between calls. It returns nil for a
// non-positive diameter.
func Dot(x, y, diameter float64) *Mask {
	if !(diameter > 0) || math.IsInf(diameter, 1) {
		return nil
	}
	qx := math.Round(x*positionSteps) / positionSteps
	qy := math.Round(y*positionSteps) / positionSteps
	ix, iy := math.Floor(qx), math.Floor(qy)
	key := stampKey{
		diameter: max(int(math.Round(diameter*diameterSteps)), 1),
		fx:       int((qx - ix) * positionSteps),
		fy:       int((qy - iy) * positionSteps),
	}
	stamp := stamps.GetOrCreate(key, func() *Mask {
		return rasterDot(float64(key.fx)/positionSteps, float64(key.fy)/positionSteps,
			float64(key.diameter)/diameterSteps)
	})
	return &Mask{Alpha: stamp.Alpha, Origin: stamp.Origin.Add(image.Pt(int(ix), int(iy)))}
}

// edgeWidth is half the width of the antialiased rim of a dot, in pixels.
const edgeWidth = 0.5

// rasterDot computes the coverage of a disc centred at (x, y) with
// 0 ≤ x, y < 1 from each pixel centre's distance to the rim.
func rasterDot(x, y, diameter float64) *Mask {
	r := diameter / 2
	rect := image.Rect(floor(x-r)-1, floor(y-r)-1, floor(x+r)+2, floor(y+r)+2)
	dst := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	cx, cy := x-float64(rect.Min.X), y-float64(rect.Min.Y)
	for py := 0; py < rect.Dy(); py++ {
		for px := 0; px < rect.Dx(); px++ {
			d := math.Hypot(float64(px)+0.5-cx, float64(py)+0.5-cy) - r
			dst.Pix[py*dst.Stride+px] = uint8(rimCoverage(d)*255 + 0.5)
		}
	}
	return &Mask{Alpha: dst, Origin: rect.Min}
}

// rimCoverage maps a signed distance to the rim (negative inside) to
// coverage with a Hermite smoothstep across [-edgeWidth, edgeWidth].
func rimCoverage(d float64) float64 {
	if d >= edgeWidth {
		return 0
	}
	if d <= -edgeWidth {
		return 1
	}
	t := (d + edgeWidth) / (2 * edgeWidth)
	return 1 - t*t*(3-2*t)
}

// StampStats reports the tap stamp cache counters.
func StampStats() cache.Stats { return stamps.Stats() }
