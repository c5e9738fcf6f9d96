package msdf

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ink/internal/edge"
)

// seedSamples are the edge parameters written by SeedInit.
var seedSamples = [...]float32{0, 0.25, 0.5, 0.75, 1}

// SeedInit clears f and writes five samples per edge. Sample positions are
// clamped to the field, so every edge leaves at least one seed even when
// it runs along the border.
//
// Edges are written in id order; when two samples land in the same texel
// the later edge wins.
func SeedInit(buf *edge.Buffer, f *SeedField) {
	f.Clear()
	if buf == nil {
		return
	}
	maxX := float32(f.Width - 1)
	maxY := float32(f.Height - 1)
	for _, e := range buf.Edges {
		for _, t := range seedSamples {
			sx := clampf(e.X0+(e.X1-e.X0)*t, 0, maxX)
			sy := clampf(e.Y0+(e.Y1-e.Y0)*t, 0, maxY)
			ix, iy := int(sx), int(sy)
			f.Texels[iy*f.Width+ix] = Seed{X: sx, Y: sy, EdgeID: float32(e.ID), DistSq: 0}
		}
	}
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
