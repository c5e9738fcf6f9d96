package msdf

import (
	"github.com/chewxy/math32"
)

// NoSeed is the edge id stored in texels that no seed has reached yet.
const NoSeed = -1

// Seed is one texel of a seed field: the nearest known seed position, the
// edge it was sampled from and the squared distance to it. It has the same
// layout as an RGBA32F texel.
type Seed struct {
	X, Y   float32
	EdgeID float32
	DistSq float32
}

// Valid reports whether the texel holds a seed.
func (s Seed) Valid() bool { return s.EdgeID >= 0 }

// emptySeed is the sentinel written by the clear pass.
var emptySeed = Seed{EdgeID: NoSeed, DistSq: math32.MaxFloat32}

// SeedField is a width×height grid of seed texels sized to one stroke.
type SeedField struct {
	Width, Height int
	Texels        []Seed
}

// NewSeedField allocates a field filled with the sentinel.
func NewSeedField(w, h int) *SeedField {
	f := &SeedField{Width: w, Height: h, Texels: make([]Seed, w*h)}
	f.Clear()
	return f
}

// Clear resets every texel to the sentinel.
func (f *SeedField) Clear() {
	for i := range f.Texels {
		f.Texels[i] = emptySeed
	}
}

// At returns the texel at (x, y).
func (f *SeedField) At(x, y int) Seed {
	return f.Texels[y*f.Width+x]
}

// Field is a three-channel signed distance field. Pix holds R, G, B triples
// in row-major order.
type Field struct {
	Width, Height int
	Pix           []float32
}

// NewField allocates a zeroed field.
func NewField(w, h int) *Field {
	return &Field{Width: w, Height: h, Pix: make([]float32, w*h*3)}
}

// At returns the three channel distances at (x, y).
func (f *Field) At(x, y int) (r, g, b float32) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Median returns the median of the three channels at (x, y).
func (f *Field) Median(x, y int) float32 {
	return Median3(f.At(x, y))
}

// Median3 is the two-min/two-max median of three values.
func Median3(r, g, b float32) float32 {
	return math32.Max(math32.Min(r, g), math32.Min(math32.Max(r, g), b))
}

// Smoothstep is the Hermite step used by the render pass.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
