package ink

import (
	"math"
	"time"
)

// Recorder accumulates the points of one stroke. When two consecutive
// samples are further apart than the interpolation threshold it inserts
// evenly spaced points between them, so no gap exceeds the threshold.
//
// A Recorder is not safe for concurrent use; Renderer guards its own.
type Recorder struct {
	threshold float64
	minDist   float64
	points    []StrokePoint
}

// NewRecorder creates a recorder. A non-positive threshold disables
// interpolation; samples closer than minDist to the last point are dropped.
func NewRecorder(threshold, minDist float64) *Recorder {
	return &Recorder{threshold: threshold, minDist: minDist}
}

// Begin discards any recorded points and starts a stroke at p.
func (r *Recorder) Begin(p StrokePoint) {
	r.points = append(r.points[:0], p)
}

// Add records p and returns how many points were appended, including
// interpolated ones. The first Add on an empty recorder acts like Begin.
func (r *Recorder) Add(p StrokePoint) int {
	n := len(r.points)
	if n == 0 {
		r.points = append(r.points, p)
		return 1
	}
	last := r.points[n-1]
	d := math.Hypot(p.X-last.X, p.Y-last.Y)
	if d < r.minDist {
		return 0
	}
	added := 0
	if r.threshold > 0 && d > r.threshold {
		steps := int(math.Ceil(d / r.threshold))
		for i := 1; i < steps; i++ {
			r.points = append(r.points, lerpPoint(last, p, float64(i)/float64(steps)))
			added++
		}
	}
	r.points = append(r.points, p)
	return added + 1
}

// Len returns the number of recorded points.
func (r *Recorder) Len() int { return len(r.points) }

// Points returns a copy of the recorded points.
func (r *Recorder) Points() []StrokePoint {
	out := make([]StrokePoint, len(r.points))
	copy(out, r.points)
	return out
}

// Finish returns the recorded points and resets the recorder. The returned
// slice is owned by the caller.
func (r *Recorder) Finish() []StrokePoint {
	out := r.points
	r.points = nil
	return out
}

// Reset discards the recorded points.
func (r *Recorder) Reset() {
	r.points = r.points[:0]
}

func lerpPoint(a, b StrokePoint, t float64) StrokePoint {
	p := StrokePoint{
		X:        a.X + (b.X-a.X)*t,
		Y:        a.Y + (b.Y-a.Y)*t,
		Pressure: a.Pressure + (b.Pressure-a.Pressure)*t,
		TiltX:    lerpOptional(a.TiltX, b.TiltX, t),
		TiltY:    lerpOptional(a.TiltY, b.TiltY, t),
	}
	if !a.Time.IsZero() && !b.Time.IsZero() {
		p.Time = a.Time.Add(time.Duration(float64(b.Time.Sub(a.Time)) * t))
	}
	return p
}

func lerpOptional(a, b *float64, t float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a + (*b-*a)*t
	return &v
}
