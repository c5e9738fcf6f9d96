package msdf

import "fmt"

// Params holds the tunable constants shared by the encode and render passes.
type Params struct {
	// DistanceScale multiplies every stored distance.
	// Default: 1
	DistanceScale float32

	// Threshold is the median value treated as the ink edge.
	// Default: 0
	Threshold float32

	// Range is the half width of the smoothstep around Threshold,
	// in scaled distance units. Larger is softer.
	// Default: 1
	Range float32

	// Window is how many edge ids on either side of the seed hint the
	// encoder scans.
	// Default: 3
	Window int

	// Tolerance is how far, in unscaled distance units, the channel median
	// may drift from the true distance before all channels are reset to it.
	// Default: 0.5
	Tolerance float32

	// Exact makes the encoder scan every edge for every texel and lets the
	// pipeline skip the seed and JFA passes.
	Exact bool
}

// DefaultParams returns the defaults listed on each field.
func DefaultParams() Params {
	return Params{
		DistanceScale: 1,
		Threshold:     0,
		Range:         1,
		Window:        3,
		Tolerance:     0.5,
	}
}

// Validate checks the parameters.
func (p *Params) Validate() error {
	if p.DistanceScale <= 0 {
		return &ParamError{Field: "DistanceScale", Reason: "must be positive"}
	}
	if p.Range <= 0 {
		return &ParamError{Field: "Range", Reason: "must be positive"}
	}
	if p.Window < 0 {
		return &ParamError{Field: "Window", Reason: "must not be negative"}
	}
	if p.Tolerance < 0 {
		return &ParamError{Field: "Tolerance", Reason: "must not be negative"}
	}
	return nil
}

// ParamError reports an invalid parameter.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("msdf: invalid params.%s: %s", e.Field, e.Reason)
}
