package ink

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestRecorderInterpolates(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		to        StrokePoint
		wantAdded int
	}{
		{"within threshold", 2, StrokePoint{X: 1.5, Pressure: 1}, 1},
		{"exactly threshold", 2, StrokePoint{X: 2, Pressure: 1}, 1},
		{"five steps", 2, StrokePoint{X: 10, Pressure: 1}, 5},
		{"diagonal", 1, StrokePoint{X: 3, Y: 4, Pressure: 1}, 5},
		{"disabled", 0, StrokePoint{X: 100, Pressure: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecorder(tt.threshold, 0)
			r.Begin(StrokePoint{Pressure: 0})
			if got := r.Add(tt.to); got != tt.wantAdded {
				t.Fatalf("Add() = %d, want %d", got, tt.wantAdded)
			}
			pts := r.Points()
			if len(pts) != tt.wantAdded+1 {
				t.Fatalf("len = %d", len(pts))
			}
			last := pts[len(pts)-1]
			if last.X != tt.to.X || last.Y != tt.to.Y {
				t.Errorf("last point %v, want the sample", last)
			}
			// Interpolated pressure is monotonic between 0 and 1.
			for i := 1; i < len(pts); i++ {
				if pts[i].Pressure < pts[i-1].Pressure {
					t.Errorf("pressure decreases at %d", i)
				}
			}
		})
	}
}

func TestRecorderGapBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const threshold = 2.0
	r := NewRecorder(threshold, 0)
	for i := 0; i < 300; i++ {
		r.Add(StrokePoint{X: rng.Float64() * 200, Y: rng.Float64() * 200, Pressure: rng.Float64()})
	}
	pts := r.Points()
	for i := 1; i < len(pts); i++ {
		if d := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y); d > threshold+1e-9 {
			t.Fatalf("gap %d = %v, exceeds %v", i, d, threshold)
		}
	}
}

func TestRecorderMinDistance(t *testing.T) {
	r := NewRecorder(2, 0.5)
	r.Add(StrokePoint{X: 0})
	if got := r.Add(StrokePoint{X: 0.2}); got != 0 {
		t.Errorf("close sample added %d points", got)
	}
	if got := r.Add(StrokePoint{X: 1}); got != 1 {
		t.Errorf("far sample added %d points", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestRecorderOptionalFields(t *testing.T) {
	tilt0, tilt1 := 0.0, 10.0
	t0 := time.Unix(100, 0)
	r := NewRecorder(1, 0)
	r.Begin(StrokePoint{TiltX: &tilt0, Time: t0})
	r.Add(StrokePoint{X: 2, TiltX: &tilt1, Time: t0.Add(2 * time.Second)})

	mid := r.Points()[1]
	if mid.TiltX == nil || *mid.TiltX != 5 {
		t.Errorf("TiltX = %v, want 5", mid.TiltX)
	}
	if mid.TiltY != nil {
		t.Error("TiltY interpolated from missing values")
	}
	if !mid.Time.Equal(t0.Add(time.Second)) {
		t.Errorf("Time = %v", mid.Time)
	}
}

func TestRecorderFinishAndReset(t *testing.T) {
	r := NewRecorder(2, 0)
	r.Begin(StrokePoint{X: 1})
	r.Add(StrokePoint{X: 2})
	pts := r.Finish()
	if len(pts) != 2 || r.Len() != 0 {
		t.Fatalf("Finish returned %d, recorder keeps %d", len(pts), r.Len())
	}
	r.Add(StrokePoint{X: 9})
	if pts[0].X != 1 {
		t.Error("Finish result aliased by later Add")
	}
	r.Reset()
	if r.Len() != 0 {
		t.Error("Reset kept points")
	}
}

func TestBuildEdgesScenarioOne(t *testing.T) {
	buf := BuildEdges([]StrokePoint{
		{X: 0, Y: 0, Pressure: 0.5},
		{X: 10, Y: 0, Pressure: 0.8},
		{X: 20, Y: 0, Pressure: 0.5},
	}, 10)
	if buf.Count() != 2 {
		t.Fatalf("Count = %d, want 2", buf.Count())
	}
	want := Bounds{MinX: -24, MinY: -24, MaxX: 44, MaxY: 24}
	if buf.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", buf.Bounds, want)
	}
	if BuildEdges([]StrokePoint{{X: 1, Y: 1, Pressure: 1}}, 10) != nil {
		t.Error("single point produced edges")
	}
}
