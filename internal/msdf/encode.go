package msdf

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ink/internal/edge"
	"github.com/gogpu/ink/internal/parallel"
)

// Encode writes the per-channel signed distance of every texel into a new
// field. seeds may be nil, or p.Exact set, to scan every edge per texel.
func Encode(pool *parallel.WorkerPool, buf *edge.Buffer, seeds *SeedField, p Params) *Field {
	w, h := buf.Width, buf.Height
	out := NewField(w, h)
	edges := buf.Edges
	n := len(edges)
	exact := p.Exact || seeds == nil || n <= 2*p.Window+1

	pool.Dispatch(h, rowsPerGroup, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			py := float32(y) + 0.5
			for x := 0; x < w; x++ {
				px := float32(x) + 0.5

				lo, hi := 0, n-1
				if !exact {
					if s := seeds.Texels[y*w+x]; s.Valid() {
						hint := int(s.EdgeID)
						lo, hi = max(0, hint-p.Window), min(n-1, hint+p.Window)
					}
				}

				inside := false
				if buf.Closed {
					inside = winding(px, py, edges) != 0
				}
				r, g, b := encodeTexel(px, py, edges[lo:hi+1], buf.Closed, inside, p)
				i := (y*w + x) * 3
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = r, g, b
			}
		}
	})
	return out
}

// encodeTexel computes the three stored channel values for one texel.
func encodeTexel(px, py float32, edges []edge.Edge, closed, inside bool, p Params) (r, g, b float32) {
	var ch [edge.Channels]float32
	var seen [edge.Channels]bool
	all := float32(math32.MaxFloat32)
	for _, e := range edges {
		d, t := segmentDistance(px, py, e)
		if !closed {
			d -= e.HalfWidthAt(t)
		}
		c := e.Channel
		if !seen[c] || d < ch[c] {
			ch[c] = d
			seen[c] = true
		}
		all = math32.Min(all, d)
	}
	for c := range ch {
		if !seen[c] {
			ch[c] = all
		}
	}

	// Signed outside distance: negative inside the ink.
	sign := float32(1)
	if closed && inside {
		sign = -1
	}
	med := sign * Median3(ch[0], ch[1], ch[2])
	sd := sign * all
	if (med < 0) != (sd < 0) || math32.Abs(med-sd) > p.Tolerance {
		ch[0], ch[1], ch[2] = all, all, all
	}

	k := float32(edge.Inside) * sign * p.DistanceScale
	return k * ch[0], k * ch[1], k * ch[2]
}

// segmentDistance returns the distance from (px, py) to the segment and the
// clamped parameter of the closest point.
func segmentDistance(px, py float32, e edge.Edge) (float32, float32) {
	dx, dy := e.X1-e.X0, e.Y1-e.Y0
	lenSq := dx*dx + dy*dy
	var t float32
	if lenSq > 0 {
		t = clamp01(((px-e.X0)*dx + (py-e.Y0)*dy) / lenSq)
	}
	cx, cy := e.X0+dx*t, e.Y0+dy*t
	return math32.Sqrt(distSq(px, py, cx, cy)), t
}

// winding returns the nonzero winding number of the closed edge loop
// around (px, py).
func winding(px, py float32, edges []edge.Edge) int {
	wn := 0
	for _, e := range edges {
		cross := (e.X1-e.X0)*(py-e.Y0) - (px-e.X0)*(e.Y1-e.Y0)
		if e.Y0 <= py {
			if e.Y1 > py && cross > 0 {
				wn++
			}
		} else if e.Y1 <= py && cross < 0 {
			wn--
		}
	}
	return wn
}
