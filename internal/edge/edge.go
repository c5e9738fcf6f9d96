// Package edge converts recorded stroke points into the packed edge list
// consumed by the MSDF passes.
//
// All coordinates in a Buffer are stroke-local: the padded bounding box
// starts at the texture origin, so the distance field only covers the
// stroke's own extent rather than the whole canvas.
package edge

import (
	"math"
)

const (
	// Margin is the fixed padding added around the widest point of a stroke.
	Margin = 20.0

	// DefaultPressure is used when an input point carries no pressure.
	DefaultPressure = 0.5

	// minLengthSq is the squared length below which an edge is dropped.
	minLengthSq = 0.01

	// Inside marks the generated outline as filled interior.
	Inside = -1

	// Channels is the number of MSDF channels edges are distributed over.
	Channels = 3
)

// Point is a normalized stroke sample.
type Point struct {
	X, Y     float64
	Pressure float64
}

// Edge is one oriented segment between consecutive stroke points.
// The layout matches the storage buffer read by the compute shaders:
// eight 32-bit words per edge.
type Edge struct {
	X0, Y0 float32
	X1, Y1 float32

	// ID is the edge's index in the buffer.
	ID int32

	// Channel is ID mod 3.
	Channel int32

	// Width0 and Width1 are the full stroke widths at each endpoint
	// (pressure × base size).
	Width0, Width1 float32
}

// HalfWidthAt returns half the stroke width interpolated at parameter t.
func (e Edge) HalfWidthAt(t float32) float32 {
	return 0.5 * (e.Width0 + (e.Width1-e.Width0)*t)
}

// Bounds is an axis-aligned box in layer-local space.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether (x, y) lies strictly inside the box.
func (b Bounds) Contains(x, y float64) bool {
	return x > b.MinX && x < b.MaxX && y > b.MinY && y < b.MaxY
}

// Buffer is the packed edge list for one stroke update. It is replaced
// wholesale every update and never mutated after Build returns.
type Buffer struct {
	Edges []Edge

	// Bounds is the padded box in layer-local space. MinX and MinY are
	// whole numbers; edge coordinates are relative to them.
	Bounds Bounds

	// Width and Height are the texture dimensions covering Bounds.
	Width, Height int

	// MaxWidth is the widest stroke width among the input points.
	MaxWidth float64

	// Closed marks an outline polygon. Closed buffers are signed by
	// winding instead of by stroke width.
	Closed bool
}

// Count returns the number of edges.
func (b *Buffer) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Edges)
}

// Build converts an open polyline into an edge buffer. It returns nil when
// fewer than two usable points remain or every edge was too short to keep;
// callers treat nil as "nothing to draw" rather than as an error.
func Build(points []Point, baseSize float64) *Buffer {
	return build(points, baseSize, false)
}

// BuildClosed is like Build but also emits the edge from the last point
// back to the first, producing a filled outline.
func BuildClosed(points []Point, baseSize float64) *Buffer {
	return build(points, baseSize, true)
}

func build(points []Point, baseSize float64, closed bool) *Buffer {
	pts := Clean(points)
	if len(pts) < 2 {
		return nil
	}

	maxWidth := 0.0
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		maxWidth = math.Max(maxWidth, p.Pressure*baseSize)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	pad := maxWidth/2 + Margin
	// The minimum corner is snapped to whole pixels so edge coordinates
	// and the surface origin share one pixel grid.
	bounds := Bounds{
		MinX: math.Floor(minX - pad), MinY: math.Floor(minY - pad),
		MaxX: maxX + pad, MaxY: maxY + pad,
	}

	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		x0, y0 := a.X-bounds.MinX, a.Y-bounds.MinY
		x1, y1 := b.X-bounds.MinX, b.Y-bounds.MinY
		dx, dy := x1-x0, y1-y0
		if dx*dx+dy*dy < minLengthSq {
			continue
		}
		id := int32(len(edges)) //nolint:gosec // edge count fits int32
		edges = append(edges, Edge{
			X0: float32(x0), Y0: float32(y0),
			X1: float32(x1), Y1: float32(y1),
			ID:      id,
			Channel: id % Channels,
			Width0:  float32(a.Pressure * baseSize),
			Width1:  float32(b.Pressure * baseSize),
		})
	}
	if len(edges) == 0 {
		return nil
	}

	return &Buffer{
		Edges:    edges,
		Bounds:   bounds,
		Width:    max(1, int(math.Ceil(bounds.Width()))),
		Height:   max(1, int(math.Ceil(bounds.Height()))),
		MaxWidth: maxWidth,
		Closed:   closed,
	}
}

// Clean drops non-finite points and clamps pressure into [0, 1].
func Clean(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		p.Pressure = clampPressure(p.Pressure)
		out = append(out, p)
	}
	return out
}

func clampPressure(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return DefaultPressure
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
