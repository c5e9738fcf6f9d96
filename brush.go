package ink

// BlendMode selects how a stroke combines with the layer under it.
type BlendMode uint8

const (
	// BlendPen paints premultiplied source-over.
	BlendPen BlendMode = iota
	// BlendEraser removes alpha along the stroke (destination-out).
	BlendEraser
)

func (m BlendMode) String() string {
	switch m {
	case BlendPen:
		return "pen"
	case BlendEraser:
		return "eraser"
	}
	return "unknown"
}

// UnmarshalText accepts "pen" or "eraser".
func (m *BlendMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pen", "":
		*m = BlendPen
	case "eraser":
		*m = BlendEraser
	default:
		return &ConfigError{Field: "Mode", Reason: "must be pen or eraser, got " + string(b)}
	}
	return nil
}

// Brush is the active brush setting.
type Brush struct {
	// Size is the base stroke width at pressure 1.
	Size    float64   `toml:"size" yaml:"size"`
	Color   RGBA      `toml:"color" yaml:"color"`
	Mode    BlendMode `toml:"mode" yaml:"mode"`
	Opacity float64   `toml:"opacity" yaml:"opacity"`
}

// DefaultBrush is an opaque black 8-unit pen.
func DefaultBrush() Brush {
	return Brush{Size: 8, Color: Black, Mode: BlendPen, Opacity: 1}
}

// Validate checks the brush.
func (b Brush) Validate() error {
	if !(b.Size > 0) {
		return &ConfigError{Field: "Brush.Size", Reason: "must be positive"}
	}
	if b.Opacity < 0 || b.Opacity > 1 {
		return &ConfigError{Field: "Brush.Opacity", Reason: "must be in [0, 1]"}
	}
	if b.Mode != BlendPen && b.Mode != BlendEraser {
		return &ConfigError{Field: "Brush.Mode", Reason: "unknown mode"}
	}
	return nil
}
