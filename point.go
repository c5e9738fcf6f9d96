package ink

import (
	"time"

	"github.com/gogpu/ink/internal/edge"
)

// StrokePoint is one recorded pointer sample in layer-local space.
type StrokePoint struct {
	X, Y     float64
	Pressure float64

	// TiltX and TiltY are nil when the device does not report tilt.
	TiltX, TiltY *float64

	Time time.Time
}

// EventType is the kind of a pointer sample.
type EventType uint8

const (
	EventDown EventType = iota
	EventMove
	EventUp
	EventCancel
)

func (e EventType) String() string {
	switch e {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventCancel:
		return "cancel"
	}
	return "unknown"
}

// Sample is a normalized pointer event delivered by the input layer.
// Coordinates are already layer-local.
type Sample struct {
	X, Y      float64
	Pressure  float64
	PointerID int
	Type      EventType
}

// EdgeBuffer is the packed edge list for one stroke update.
type EdgeBuffer = edge.Buffer

// Bounds is an axis-aligned box in layer-local space.
type Bounds = edge.Bounds

// BuildEdges converts stroke points into an EdgeBuffer. It returns nil for
// fewer than two usable points; callers treat that as an empty frame.
func BuildEdges(points []StrokePoint, baseSize float64) *EdgeBuffer {
	return edge.Build(edgePoints(points), baseSize)
}

func edgePoints(points []StrokePoint) []edge.Point {
	out := make([]edge.Point, len(points))
	for i, p := range points {
		out[i] = edge.Point{X: p.X, Y: p.Y, Pressure: p.Pressure}
	}
	return out
}
