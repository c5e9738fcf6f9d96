package ink

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	p := cfg.params()
	if p.DistanceScale != 1 || p.Threshold != 0 || p.Range != 1 || p.Window != 3 || p.Tolerance != 0.5 {
		t.Errorf("params = %+v", p)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"negative interpolation", func(c *Config) { c.InterpolationThreshold = -1 }, "InterpolationThreshold"},
		{"negative min distance", func(c *Config) { c.MinSampleDistance = -0.1 }, "MinSampleDistance"},
		{"negative exact threshold", func(c *Config) { c.ExactEdgeThreshold = -1 }, "ExactEdgeThreshold"},
		{"zero attempts", func(c *Config) { c.MaxRecoveryAttempts = 0 }, "MaxRecoveryAttempts"},
		{"zero delay", func(c *Config) { c.RecoveryBaseDelay = 0 }, "RecoveryBaseDelay"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "Workers"},
		{"bad mode", func(c *Config) { c.Mode = 9 }, "Mode"},
		{"zero range", func(c *Config) { c.Range = 0 }, "Pass"},
		{"zero scale", func(c *Config) { c.DistanceScale = 0 }, "Pass"},
		{"negative window", func(c *Config) { c.SearchWindow = -1 }, "Pass"},
		{"zero brush", func(c *Config) { c.Brush.Size = 0 }, "Brush.Size"},
		{"opacity above one", func(c *Config) { c.Brush.Opacity = 1.5 }, "Brush.Opacity"},
		{"bad brush mode", func(c *Config) { c.Brush.Mode = 7 }, "Brush.Mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"toml", ".toml", `
interpolation_threshold = 1.5
exact_edge_threshold = 64
recovery_base_delay = "250ms"
mode = "outline"

[brush]
size = 12.0
color = "#ff000080"
mode = "eraser"
opacity = 0.5
`},
		{"yaml", ".yaml", `
interpolation_threshold: 1.5
exact_edge_threshold: 64
recovery_base_delay: 250ms
mode: outline
brush:
  size: 12
  color: "#ff000080"
  mode: eraser
  opacity: 0.5
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if cfg.InterpolationThreshold != 1.5 || cfg.ExactEdgeThreshold != 64 {
				t.Errorf("numbers = %v, %v", cfg.InterpolationThreshold, cfg.ExactEdgeThreshold)
			}
			if time.Duration(cfg.RecoveryBaseDelay) != 250*time.Millisecond {
				t.Errorf("RecoveryBaseDelay = %v", time.Duration(cfg.RecoveryBaseDelay))
			}
			if cfg.Mode != ModeOutline {
				t.Errorf("Mode = %v", cfg.Mode)
			}
			if cfg.Brush.Size != 12 || cfg.Brush.Mode != BlendEraser || cfg.Brush.Opacity != 0.5 {
				t.Errorf("Brush = %+v", cfg.Brush)
			}
			if cfg.Brush.Color.R != 1 || cfg.Brush.Color.A != 128.0/255 {
				t.Errorf("Brush.Color = %+v", cfg.Brush.Color)
			}
			// Unset keys keep their defaults.
			if cfg.SearchWindow != 3 || cfg.MaxRecoveryAttempts != 3 {
				t.Errorf("defaults lost: window %d attempts %d", cfg.SearchWindow, cfg.MaxRecoveryAttempts)
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"unknown toml key", ".toml", "colour = 1\n"},
		{"unknown yaml key", ".yml", "colour: 1\n"},
		{"bad duration", ".toml", `recovery_base_delay = "soon"` + "\n"},
		{"bad mode", ".yaml", "mode: triangles\n"},
		{"bad toml colour", ".toml", "[brush]\ncolor = \"#12345g78\"\n"},
		{"bad yaml colour", ".yaml", "brush:\n  color: nonsense\n"},
		{"invalid value", ".toml", "max_recovery_attempts = 0\n"},
		{"unsupported format", ".json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data), tt.ext); err == nil {
				t.Error("ParseConfig succeeded, want error")
			}
		})
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil, ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("empty file changed defaults: %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ink.TOML")
	if err := os.WriteFile(path, []byte("workers = 2\ndirect_preview = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Workers != 2 || !cfg.DirectPreview {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestRenderModeText(t *testing.T) {
	for _, m := range []RenderMode{ModeMSDF, ModeOutline, ModePolygon} {
		var got RenderMode
		if err := got.UnmarshalText([]byte(m.String())); err != nil || got != m {
			t.Errorf("round trip %v: got %v, %v", m, got, err)
		}
	}
	if RenderMode(9).String() != "unknown" {
		t.Error("unknown mode String")
	}
}
