package edge

import (
	"errors"
	"fmt"
)

// ErrUnsupportedInput is returned by Normalize for input shapes it cannot read.
var ErrUnsupportedInput = errors.New("edge: unsupported point input")

// Normalize converts the accepted point representations into []Point.
//
// Accepted forms:
//   - []Point
//   - []map[string]float64 with keys "x", "y" and optional "pressure"
//   - [][2]float64 as (x, y)
//   - [][3]float64 as (x, y, pressure)
//   - []float64 as flat x, y pairs
//
// Missing pressure defaults to DefaultPressure.
func Normalize(input any) ([]Point, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case []Point:
		out := make([]Point, len(v))
		copy(out, v)
		return out, nil
	case []map[string]float64:
		out := make([]Point, 0, len(v))
		for i, m := range v {
			x, okX := m["x"]
			y, okY := m["y"]
			if !okX || !okY {
				return nil, fmt.Errorf("%w: point %d lacks x or y", ErrUnsupportedInput, i)
			}
			p, ok := m["pressure"]
			if !ok {
				p = DefaultPressure
			}
			out = append(out, Point{X: x, Y: y, Pressure: p})
		}
		return out, nil
	case [][2]float64:
		out := make([]Point, len(v))
		for i, p := range v {
			out[i] = Point{X: p[0], Y: p[1], Pressure: DefaultPressure}
		}
		return out, nil
	case [][3]float64:
		out := make([]Point, len(v))
		for i, p := range v {
			out[i] = Point{X: p[0], Y: p[1], Pressure: p[2]}
		}
		return out, nil
	case []float64:
		return FromFlat(v, 2)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedInput, input)
}

// FromFlat reads a flat coordinate array. Stride 2 is (x, y) with default
// pressure; stride 3 is (x, y, pressure). A trailing partial tuple is ignored.
func FromFlat(data []float64, stride int) ([]Point, error) {
	if stride != 2 && stride != 3 {
		return nil, fmt.Errorf("%w: stride %d", ErrUnsupportedInput, stride)
	}
	out := make([]Point, 0, len(data)/stride)
	for i := 0; i+stride <= len(data); i += stride {
		p := Point{X: data[i], Y: data[i+1], Pressure: DefaultPressure}
		if stride == 3 {
			p.Pressure = data[i+2]
		}
		out = append(out, p)
	}
	return out, nil
}
