package ink

import (
	"errors"
	"image/color"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#fff", White},
		{"000", Black},
		{"#ff0000", RGB(1, 0, 0)},
		{"00FF00", RGB(0, 1, 0)},
		{"#0000ff00", RGBA{B: 1}},
		{"#f008", RGBA{R: 1, A: 136.0 / 255}},
		{"nonsense", Black},
		{"#12345g78", Black},
		{"#ggg", Black},
		{"", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(tt.in); got != tt.want {
				t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGBAUnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    RGBA
		wantErr bool
	}{
		{"#ff0000", RGB(1, 0, 0), false},
		{"fff", White, false},
		{"nonsense", Black, true},
		{"#12", Black, true},
		{"", Black, true},
	}
	for _, tt := range tests {
		c := Black
		err := c.UnmarshalText([]byte(tt.in))
		if c != tt.want {
			t.Errorf("UnmarshalText(%q) = %+v, want %+v", tt.in, c, tt.want)
		}
		var ce *ConfigError
		if got := errors.As(err, &ce); got != tt.wantErr {
			t.Errorf("UnmarshalText(%q) err = %v, want ConfigError %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestColorConversion(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: 0, A: 0.5}
	n := c.Color().(color.NRGBA)
	if n != (color.NRGBA{R: 255, G: 128, B: 0, A: 128}) {
		t.Errorf("Color() = %v", n)
	}
	back := FromColor(color.NRGBA{R: 255, G: 0, B: 255, A: 255})
	if back != RGB(1, 0, 1) {
		t.Errorf("FromColor = %+v", back)
	}
	p := c.Premultiply()
	if p.R != 0.5 || p.G != 0.25 || p.A != 0.5 {
		t.Errorf("Premultiply = %+v", p)
	}
}

func TestBlendModeText(t *testing.T) {
	tests := []struct {
		in      string
		want    BlendMode
		wantErr bool
	}{
		{"pen", BlendPen, false},
		{"eraser", BlendEraser, false},
		{"", BlendPen, false},
		{"marker", BlendPen, true},
	}
	for _, tt := range tests {
		var m BlendMode
		err := m.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr || m != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, %v", tt.in, m, err)
		}
	}
	if BlendEraser.String() != "eraser" || BlendMode(5).String() != "unknown" {
		t.Error("BlendMode.String")
	}
}

func TestDefaultBrush(t *testing.T) {
	b := DefaultBrush()
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
	if b.Size != 8 || b.Mode != BlendPen || b.Opacity != 1 || b.Color != Black {
		t.Errorf("DefaultBrush = %+v", b)
	}
}
