package ink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ink/internal/msdf"
)

// RenderMode selects the stroke rendering path.
type RenderMode uint8

const (
	// ModeMSDF renders strokes through the seed, JFA, encode and render passes.
	ModeMSDF RenderMode = iota

	// ModeOutline builds the stroke's outline polygon and renders it as a
	// closed distance field.
	ModeOutline

	// ModePolygon fills the union of per-point circles and per-segment
	// trapezoids on the CPU. No distance field is built.
	ModePolygon
)

func (m RenderMode) String() string {
	switch m {
	case ModeMSDF:
		return "msdf"
	case ModeOutline:
		return "outline"
	case ModePolygon:
		return "polygon"
	}
	return "unknown"
}

// UnmarshalText accepts "msdf", "outline" or "polygon".
func (m *RenderMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "msdf", "":
		*m = ModeMSDF
	case "outline":
		*m = ModeOutline
	case "polygon":
		*m = ModePolygon
	default:
		return &ConfigError{Field: "RenderMode", Reason: "unknown mode " + string(b)}
	}
	return nil
}

// Duration is a time.Duration read from strings such as "150ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds the renderer's tunables.
type Config struct {
	// InterpolationThreshold is the largest gap between recorded points.
	// Longer gaps get linearly interpolated points.
	// Default: 2
	InterpolationThreshold float64 `toml:"interpolation_threshold" yaml:"interpolation_threshold"`

	// MinSampleDistance drops samples closer than this to the last point.
	// Default: 0
	MinSampleDistance float64 `toml:"min_sample_distance" yaml:"min_sample_distance"`

	// DistanceScale multiplies stored distances. Default: 1
	DistanceScale float64 `toml:"distance_scale" yaml:"distance_scale"`

	// Threshold is the median value treated as the ink edge. Default: 0
	Threshold float64 `toml:"threshold" yaml:"threshold"`

	// Range is the smoothstep half width around Threshold. Default: 1
	Range float64 `toml:"range" yaml:"range"`

	// SearchWindow is the number of edge ids scanned either side of the
	// JFA hint. Default: 3
	SearchWindow int `toml:"search_window" yaml:"search_window"`

	// CorrectionTolerance is how far the channel median may drift from the
	// true distance before the encoder overrides it. Default: 0.5
	CorrectionTolerance float64 `toml:"correction_tolerance" yaml:"correction_tolerance"`

	// ExactEdgeThreshold switches strokes with at most this many edges to
	// the exact brute-force encoder. Zero always uses JFA.
	ExactEdgeThreshold int `toml:"exact_edge_threshold" yaml:"exact_edge_threshold"`

	// MaxRecoveryAttempts bounds device reinitialization. Default: 3
	MaxRecoveryAttempts int `toml:"max_recovery_attempts" yaml:"max_recovery_attempts"`

	// RecoveryBaseDelay is the first backoff delay; each retry doubles it.
	// Default: 100ms
	RecoveryBaseDelay Duration `toml:"recovery_base_delay" yaml:"recovery_base_delay"`

	// DirectPreview asks the accelerator to hand preview textures over
	// without reading them back. Finalized strokes are always read back.
	DirectPreview bool `toml:"direct_preview" yaml:"direct_preview"`

	// Workers sizes the CPU worker pool. Zero uses GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers"`

	// Mode is the rendering path. Default: msdf
	Mode RenderMode `toml:"mode" yaml:"mode"`

	// Brush is the initial brush.
	Brush Brush `toml:"brush" yaml:"brush"`
}

// DefaultConfig returns the defaults listed on each field.
func DefaultConfig() Config {
	return Config{
		InterpolationThreshold: 2,
		DistanceScale:          1,
		Threshold:              0,
		Range:                  1,
		SearchWindow:           3,
		CorrectionTolerance:    0.5,
		MaxRecoveryAttempts:    3,
		RecoveryBaseDelay:      Duration(100 * time.Millisecond),
		Mode:                   ModeMSDF,
		Brush:                  DefaultBrush(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.InterpolationThreshold < 0:
		return &ConfigError{Field: "InterpolationThreshold", Reason: "must not be negative"}
	case c.MinSampleDistance < 0:
		return &ConfigError{Field: "MinSampleDistance", Reason: "must not be negative"}
	case c.ExactEdgeThreshold < 0:
		return &ConfigError{Field: "ExactEdgeThreshold", Reason: "must not be negative"}
	case c.MaxRecoveryAttempts < 1:
		return &ConfigError{Field: "MaxRecoveryAttempts", Reason: "must be at least 1"}
	case c.RecoveryBaseDelay <= 0:
		return &ConfigError{Field: "RecoveryBaseDelay", Reason: "must be positive"}
	case c.Workers < 0:
		return &ConfigError{Field: "Workers", Reason: "must not be negative"}
	case c.Mode > ModePolygon:
		return &ConfigError{Field: "Mode", Reason: "unknown mode"}
	}
	p := c.params()
	if err := p.Validate(); err != nil {
		return &ConfigError{Field: "Pass", Reason: err.Error()}
	}
	return c.Brush.Validate()
}

// params converts the pass settings into the encoder's parameters.
func (c *Config) params() msdf.Params {
	return msdf.Params{
		DistanceScale: float32(c.DistanceScale),
		Threshold:     float32(c.Threshold),
		Range:         float32(c.Range),
		Window:        c.SearchWindow,
		Tolerance:     float32(c.CorrectionTolerance),
	}
}

// decoderFunc creates a strict decoder for one file format.
type decoderFunc func(r io.Reader) interface{ Decode(v any) error }

var decoders = map[string]decoderFunc{
	".toml": func(r io.Reader) interface{ Decode(v any) error } {
		d := toml.NewDecoder(r)
		d.DisallowUnknownFields()
		return d
	},
	".yaml": newYAMLDecoder,
	".yml":  newYAMLDecoder,
}

func newYAMLDecoder(r io.Reader) interface{ Decode(v any) error } {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
}

// LoadConfig reads a TOML or YAML file, chosen by extension, on top of
// DefaultConfig and validates the result. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ink: read config: %w", err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes data in the format named by ext (".toml", ".yaml"
// or ".yml") on top of DefaultConfig and validates the result.
func ParseConfig(data []byte, ext string) (Config, error) {
	newDec, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return Config{}, &ConfigError{Field: "file", Reason: "unsupported format " + ext}
	}
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := newDec(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("ink: decode config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
