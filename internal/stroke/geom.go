package stroke

import (
	"math"

	"github.com/gogpu/ink/internal/edge"
)

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Add returns v + w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns v − w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns v × s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product.
func (v Vec2) Dot(w Vec2) float64 { return v.X*w.X + v.Y*w.Y }

// Length returns the Euclidean length.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Perp returns v rotated by 90 degrees.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

func pos(p edge.Point) Vec2 { return Vec2{p.X, p.Y} }

// signedArea returns twice the signed shoelace area of a polygon.
func signedArea(poly []Vec2) float64 {
	var a float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// dedupe drops consecutive points closer than minStep.
func dedupe(points []edge.Point, minStep float64) []edge.Point {
	out := make([]edge.Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && pos(p).Sub(pos(out[n-1])).Length() < minStep {
			continue
		}
		out = append(out, p)
	}
	return out
}
