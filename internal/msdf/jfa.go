package msdf

import (
	"github.com/gogpu/ink/internal/parallel"
)

// rowsPerGroup is the number of texel rows one CPU workgroup handles.
const rowsPerGroup = 8

// neighbours are the eight offsets visited at each step, in a fixed order
// so ties resolve the same way on every run.
var neighbours = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Iterations returns ceil(log2(max(w, h))), the number of JFA steps needed
// to cover a w×h field.
func Iterations(w, h int) int {
	m := max(w, h)
	n := 0
	for (1 << n) < m {
		n++
	}
	return n
}

// Step returns the neighbour offset used by iteration k of n.
func Step(k, n int) int {
	return 1 << (n - 1 - k)
}

// JFAStep runs one jump-flooding iteration from src into dst.
//
// Each texel starts from its own record and looks at the eight neighbours
// step texels away. Distances are always recomputed from this texel's centre
// to the neighbour's stored seed position; the neighbour's cached distance
// is never reused.
func JFAStep(pool *parallel.WorkerPool, src, dst *SeedField, step int) {
	w, h := src.Width, src.Height
	pool.Dispatch(h, rowsPerGroup, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			py := float32(y) + 0.5
			for x := 0; x < w; x++ {
				px := float32(x) + 0.5

				best := src.Texels[y*w+x]
				if best.Valid() {
					best.DistSq = distSq(px, py, best.X, best.Y)
				}
				for _, o := range neighbours {
					nx, ny := x+o[0]*step, y+o[1]*step
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					s := src.Texels[ny*w+nx]
					if !s.Valid() {
						continue
					}
					if d := distSq(px, py, s.X, s.Y); d < best.DistSq {
						best = Seed{X: s.X, Y: s.Y, EdgeID: s.EdgeID, DistSq: d}
					}
				}
				dst.Texels[y*w+x] = best
			}
		}
	})
}

// JFA runs every iteration, ping-ponging between a and b, and returns the
// field holding the converged result.
func JFA(pool *parallel.WorkerPool, a, b *SeedField) *SeedField {
	n := Iterations(a.Width, a.Height)
	src, dst := a, b
	for k := 0; k < n; k++ {
		JFAStep(pool, src, dst, Step(k, n))
		src, dst = dst, src
	}
	return src
}

func distSq(px, py, sx, sy float32) float32 {
	dx, dy := px-sx, py-sy
	return dx*dx + dy*dy
}
