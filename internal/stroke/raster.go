package stroke

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/gogpu/ink/internal/edge"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498307936

// Mask is an alpha coverage mask placed at Origin in layer space.
type Mask struct {
	*image.Alpha
	Origin image.Point
}

// Capsules rasterizes the union of one circle per point and one trapezoid
// per segment over the given layer-space rectangle.
func Capsules(points []edge.Point, baseSize float64, rect image.Rectangle) *Mask {
	z := newRasterizer(rect)
	o := Vec2{float64(rect.Min.X), float64(rect.Min.Y)}
	for i, p := range points {
		c := pos(p).Sub(o)
		r := p.Pressure * baseSize / 2
		if r > 0 {
			addCircle(z, c, r)
		}
		if i == 0 {
			continue
		}
		prev := points[i-1]
		addTrapezoid(z, pos(prev).Sub(o), c, prev.Pressure*baseSize/2, r)
	}
	return finish(z, rect)
}

// Polygon rasterizes a closed polygon over the given layer-space rectangle.
func Polygon(poly []edge.Point, rect image.Rectangle) *Mask {
	z := newRasterizer(rect)
	if len(poly) >= 3 {
		o := Vec2{float64(rect.Min.X), float64(rect.Min.Y)}
		pts := make([]Vec2, len(poly))
		for i, p := range poly {
			pts[i] = pos(p).Sub(o)
		}
		addPath(z, pts)
	}
	return finish(z, rect)
}

func newRasterizer(rect image.Rectangle) *vector.Rasterizer {
	z := vector.NewRasterizer(rect.Dx(), rect.Dy())
	z.DrawOp = draw.Src
	return z
}

func finish(z *vector.Rasterizer, rect image.Rectangle) *Mask {
	dst := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return &Mask{Alpha: dst, Origin: rect.Min}
}

// addCircle adds a circle with positive signed area.
func addCircle(z *vector.Rasterizer, c Vec2, r float64) {
	k := r * kappa
	x, y := float32(c.X), float32(c.Y)
	fr, fk := float32(r), float32(k)
	z.MoveTo(x+fr, y)
	z.CubeTo(x+fr, y+fk, x+fk, y+fr, x, y+fr)
	z.CubeTo(x-fk, y+fr, x-fr, y+fk, x-fr, y)
	z.CubeTo(x-fr, y-fk, x-fk, y-fr, x, y-fr)
	z.CubeTo(x+fk, y-fr, x+fr, y-fk, x+fr, y)
	z.ClosePath()
}

// addTrapezoid adds the quad joining two circles' tangent diameters,
// oriented to match addCircle.
func addTrapezoid(z *vector.Rasterizer, a, b Vec2, ra, rb float64) {
	n := b.Sub(a).Normalize().Perp()
	if n == (Vec2{}) {
		return
	}
	quad := []Vec2{
		a.Add(n.Scale(ra)),
		b.Add(n.Scale(rb)),
		b.Sub(n.Scale(rb)),
		a.Sub(n.Scale(ra)),
	}
	addPath(z, quad)
}

// addPath adds a closed polygon, reversing it when needed so its signed
// area is positive.
func addPath(z *vector.Rasterizer, pts []Vec2) {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}
