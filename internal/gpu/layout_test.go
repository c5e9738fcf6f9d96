//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/internal/edge"
	"github.com/gogpu/ink/internal/msdf"
)

func testJob(t *testing.T) *ink.Job {
	t.Helper()
	buf := ink.BuildEdges([]ink.StrokePoint{
		{X: 0, Y: 0, Pressure: 0.5},
		{X: 10, Y: 0, Pressure: 0.8},
		{X: 20, Y: 0, Pressure: 0.5},
	}, 10)
	if buf == nil {
		t.Fatal("BuildEdges returned nil")
	}
	return &ink.Job{
		Edges:   buf,
		Color:   ink.RGBA{R: 1, G: 0.5, B: 0.25, A: 1},
		Opacity: 0.75,
		Params:  msdf.DefaultParams(),
	}
}

func TestFrameParamsLayout(t *testing.T) {
	job := testJob(t)
	p := newFrameParams(job)
	p.Step = 4
	b := p.bytes()
	if len(b) != paramsSize {
		t.Fatalf("len = %d, want %d", len(b), paramsSize)
	}
	le := binary.LittleEndian
	u32 := func(off int) uint32 { return le.Uint32(b[off:]) }
	f32 := func(off int) float32 { return math.Float32frombits(le.Uint32(b[off:])) }

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"width", u32(0), uint32(job.Edges.Width)},
		{"height", u32(4), uint32(job.Edges.Height)},
		{"edge_count", u32(8), uint32(2)},
		{"step", u32(12), uint32(4)},
		{"distance_scale", f32(16), float32(1)},
		{"threshold", f32(20), float32(0)},
		{"range", f32(24), float32(1)},
		{"window", u32(28), uint32(3)},
		{"tolerance", f32(32), float32(0.5)},
		{"exact", u32(36), uint32(0)},
		{"closed", u32(40), uint32(0)},
		{"opacity", f32(44), float32(0.75)},
		{"color.r", f32(48), float32(1)},
		{"color.g", f32(52), float32(0.5)},
		{"color.b", f32(56), float32(0.25)},
		{"color.a", f32(60), float32(1)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestFrameParamsExact(t *testing.T) {
	tests := []struct {
		name   string
		edges  uint32
		window uint32
		exact  bool
		want   bool
	}{
		{"flag", 100, 3, true, true},
		{"small buffer", 7, 3, false, true},
		{"large buffer", 8, 3, false, false},
		{"zero window", 2, 0, false, false},
	}
	for _, tt := range tests {
		p := frameParams{EdgeCount: tt.edges, Window: tt.window, Exact: tt.exact}
		if got := p.exact(); got != tt.want {
			t.Errorf("%s: exact() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPackEdges(t *testing.T) {
	edges := []edge.Edge{
		{X0: 1, Y0: 2, X1: 3, Y1: 4, ID: 0, Channel: 0, Width0: 5, Width1: 6},
		{X0: -1, Y0: 0.5, X1: 7, Y1: 8, ID: 1, Channel: 1, Width0: 2, Width1: 0},
	}
	b := packEdges(edges)
	if len(b) != 2*edgeSize {
		t.Fatalf("len = %d", len(b))
	}
	le := binary.LittleEndian
	second := b[edgeSize:]
	if got := math.Float32frombits(le.Uint32(second[0:])); got != -1 {
		t.Errorf("p0.x = %v", got)
	}
	if got := math.Float32frombits(le.Uint32(second[4:])); got != 0.5 {
		t.Errorf("p0.y = %v", got)
	}
	if got := int32(le.Uint32(second[16:])); got != 1 {
		t.Errorf("id = %d", got)
	}
	if got := int32(le.Uint32(second[20:])); got != 1 {
		t.Errorf("channel = %d", got)
	}
	if got := math.Float32frombits(le.Uint32(second[24:])); got != 2 {
		t.Errorf("w0 = %v", got)
	}
}

func TestJFASteps(t *testing.T) {
	tests := []struct {
		w, h int
		want []uint32
	}{
		{1, 1, []uint32{}},
		{2, 1, []uint32{1}},
		{5, 3, []uint32{4, 2, 1}},
		{8, 8, []uint32{4, 2, 1}},
		{68, 48, []uint32{64, 32, 16, 8, 4, 2, 1}},
	}
	for _, tt := range tests {
		if got := jfaSteps(tt.w, tt.h); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("jfaSteps(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestGroupsAndFits(t *testing.T) {
	if got := linearGroups(65); got != 2 {
		t.Errorf("linearGroups(65) = %d", got)
	}
	if x, y := tileGroups(17, 8); x != 3 || y != 1 {
		t.Errorf("tileGroups(17, 8) = %d, %d", x, y)
	}
	tests := []struct {
		name    string
		w, h, n int
		want    bool
	}{
		{"typical", 68, 48, 2, true},
		{"empty", 0, 10, 2, false},
		{"no edges", 10, 10, 0, false},
		{"too many texels", 4096, 4096, 10, false},
	}
	for _, tt := range tests {
		if got := fits(tt.w, tt.h, tt.n); got != tt.want {
			t.Errorf("%s: fits = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTightPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 2))
	sub := img.SubImage(image.Rect(2, 0, 4, 2)).(*image.RGBA)
	sub.Pix[0] = 7
	sub.Pix[img.Stride] = 9
	got := tightPixels(sub, 2, 2)
	if len(got) != 16 || got[0] != 7 || got[8] != 9 {
		t.Errorf("tightPixels = %v", got)
	}

	tight := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if &tightPixels(tight, 2, 2)[0] != &tight.Pix[0] {
		t.Error("tight image was copied")
	}
}
