package stroke

import (
	"math"

	"github.com/gogpu/ink/internal/edge"
)

const (
	// capSegments is the number of chords in each round cap.
	capSegments = 8

	// maxMiterScale limits how far an offset point moves out at sharp turns.
	maxMiterScale = 2.0

	// minStep is the distance below which consecutive points are merged.
	minStep = 0.1
)

// Outline returns the closed outline of a variable-width stroke through
// points, with round caps at both ends. It returns nil for fewer than two
// distinct points. The returned points carry zero pressure.
func Outline(points []edge.Point, baseSize float64) []edge.Point {
	pts := dedupe(points, minStep)
	n := len(pts)
	if n < 2 {
		return nil
	}

	normals := make([]Vec2, n)
	half := make([]float64, n)
	for i := range pts {
		normals[i] = offsetNormal(pts, i)
		half[i] = pts[i].Pressure * baseSize / 2
	}

	poly := make([]Vec2, 0, 2*n+2*capSegments)
	for i := 0; i < n; i++ {
		poly = append(poly, pos(pts[i]).Add(normals[i].Scale(half[i])))
	}
	poly = appendCap(poly, pos(pts[n-1]), normals[n-1], half[n-1])
	for i := n - 1; i >= 0; i-- {
		poly = append(poly, pos(pts[i]).Sub(normals[i].Scale(half[i])))
	}
	poly = appendCap(poly, pos(pts[0]), normals[0].Scale(-1), half[0])

	out := make([]edge.Point, len(poly))
	for i, v := range poly {
		out[i] = edge.Point{X: v.X, Y: v.Y}
	}
	return out
}

// offsetNormal returns the left normal at point i, averaged over the
// adjacent segments and scaled so the offset keeps its distance from both.
func offsetNormal(pts []edge.Point, i int) Vec2 {
	n := len(pts)
	var in, out Vec2
	if i > 0 {
		in = pos(pts[i]).Sub(pos(pts[i-1])).Normalize()
	}
	if i < n-1 {
		out = pos(pts[i+1]).Sub(pos(pts[i])).Normalize()
	}
	dir := in.Add(out)
	if dir.Length() < 1e-9 {
		// the path folds back on itself; use the incoming direction
		dir = in
	}
	nrm := dir.Normalize().Perp()
	if i == 0 || i == n-1 {
		return nrm
	}
	c := nrm.Dot(out.Perp())
	if c <= 1/maxMiterScale {
		return nrm.Scale(maxMiterScale)
	}
	return nrm.Scale(1 / c)
}

// appendCap appends the interior points of a half circle around center,
// sweeping from +nrm through the forward tangent to −nrm.
func appendCap(poly []Vec2, center, nrm Vec2, r float64) []Vec2 {
	a0 := math.Atan2(nrm.Y, nrm.X)
	for k := 1; k < capSegments; k++ {
		a := a0 - math.Pi*float64(k)/capSegments
		poly = append(poly, center.Add(Vec2{math.Cos(a), math.Sin(a)}.Scale(r)))
	}
	return poly
}
