//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"math/bits"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/internal/edge"
)

// Buffer layouts shared with the WGSL sources.
const (
	paramsSize  = 64 // struct Params
	edgeSize    = 32 // struct Edge
	texelSize   = 16 // vec4<f32> seed or field texel
	keySize     = 4  // atomic<i32> seed key
	seedSamples = 5

	linearGroupSize = 64
	tileGroupSize   = 8

	// maxGroups is the per-dimension dispatch limit guaranteed by
	// gputypes.DefaultLimits.
	maxGroups = 65535

	// maxStorageSize is the largest storage binding the default limits allow.
	maxStorageSize = 128 << 20
)

// frameParams mirrors struct Params. Step is the only field that changes
// between dispatches of the same update.
type frameParams struct {
	Width, Height uint32
	EdgeCount     uint32
	Step          uint32
	DistanceScale float32
	Threshold     float32
	Range         float32
	Window        uint32
	Tolerance     float32
	Exact         bool
	Closed        bool
	Opacity       float32
	Color         [4]float32
}

func newFrameParams(job *ink.Job) frameParams {
	buf := job.Edges
	p := job.Params
	return frameParams{
		Width:         uint32(buf.Width),  //nolint:gosec // bounded by fits
		Height:        uint32(buf.Height), //nolint:gosec // bounded by fits
		EdgeCount:     uint32(buf.Count()),
		DistanceScale: p.DistanceScale,
		Threshold:     p.Threshold,
		Range:         p.Range,
		Window:        uint32(max(p.Window, 0)),
		Tolerance:     p.Tolerance,
		Exact:         p.Exact,
		Closed:        buf.Closed,
		Opacity:       float32(job.Opacity),
		Color:         [4]float32{float32(job.Color.R), float32(job.Color.G), float32(job.Color.B), float32(job.Color.A)},
	}
}

// exact reports whether the encoder scans every edge, in which case the
// seed and JFA passes are skipped.
func (p frameParams) exact() bool {
	return p.Exact || p.EdgeCount <= 2*p.Window+1
}

func (p frameParams) bytes() []byte {
	b := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], p.Width)
	le.PutUint32(b[4:], p.Height)
	le.PutUint32(b[8:], p.EdgeCount)
	le.PutUint32(b[12:], p.Step)
	le.PutUint32(b[16:], math.Float32bits(p.DistanceScale))
	le.PutUint32(b[20:], math.Float32bits(p.Threshold))
	le.PutUint32(b[24:], math.Float32bits(p.Range))
	le.PutUint32(b[28:], p.Window)
	le.PutUint32(b[32:], math.Float32bits(p.Tolerance))
	le.PutUint32(b[36:], boolWord(p.Exact))
	le.PutUint32(b[40:], boolWord(p.Closed))
	le.PutUint32(b[44:], math.Float32bits(p.Opacity))
	for i, c := range p.Color {
		le.PutUint32(b[48+4*i:], math.Float32bits(c))
	}
	return b
}

func boolWord(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// packEdges serializes edges in struct Edge layout.
func packEdges(edges []edge.Edge) []byte {
	b := make([]byte, len(edges)*edgeSize)
	le := binary.LittleEndian
	for i, e := range edges {
		o := b[i*edgeSize:]
		le.PutUint32(o[0:], math.Float32bits(e.X0))
		le.PutUint32(o[4:], math.Float32bits(e.Y0))
		le.PutUint32(o[8:], math.Float32bits(e.X1))
		le.PutUint32(o[12:], math.Float32bits(e.Y1))
		le.PutUint32(o[16:], uint32(e.ID))      //nolint:gosec // ids are non-negative
		le.PutUint32(o[20:], uint32(e.Channel)) //nolint:gosec // channel is 0..2
		le.PutUint32(o[24:], math.Float32bits(e.Width0))
		le.PutUint32(o[28:], math.Float32bits(e.Width1))
	}
	return b
}

// jfaSteps returns the step of every jump-flooding iteration:
// ceil(log2(max(w, h))) halving powers of two ending at 1.
func jfaSteps(w, h int) []uint32 {
	n := bits.Len(uint(max(w, h) - 1))
	steps := make([]uint32, n)
	for k := range steps {
		steps[k] = 1 << (n - 1 - k)
	}
	return steps
}

func linearGroups(n int) uint32 {
	return uint32((n + linearGroupSize - 1) / linearGroupSize) //nolint:gosec // bounded by fits
}

func tileGroups(w, h int) (x, y uint32) {
	return uint32((w + tileGroupSize - 1) / tileGroupSize), //nolint:gosec // bounded by fits
		uint32((h + tileGroupSize - 1) / tileGroupSize) //nolint:gosec // bounded by fits
}

// fits reports whether a w×h target with n edges stays inside the
// default device limits. Larger jobs fall back to the CPU.
func fits(w, h, n int) bool {
	if w <= 0 || h <= 0 || n <= 0 {
		return false
	}
	texels := w * h
	if linearGroups(texels) > maxGroups || linearGroups(n*seedSamples) > maxGroups {
		return false
	}
	if gx, gy := tileGroups(w, h); gx > maxGroups || gy > maxGroups {
		return false
	}
	return texels*texelSize <= maxStorageSize && n*edgeSize <= maxStorageSize
}

// tightPixels returns img's pixels with rows packed at w*4 bytes, the
// layout WriteTexture and CopyTextureToBuffer use.
func tightPixels(img *image.RGBA, w, h int) []byte {
	row := w * 4
	if img.Stride == row && len(img.Pix) >= row*h {
		return img.Pix[:row*h]
	}
	out := make([]byte, row*h)
	for y := 0; y < h; y++ {
		copy(out[y*row:(y+1)*row], img.Pix[y*img.Stride:])
	}
	return out
}
