//go:build !nogpu

package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestShadersCompile(t *testing.T) {
	for _, src := range shaderSources() {
		t.Run(src.label, func(t *testing.T) {
			if src.source == "" {
				t.Fatal("shader source is empty")
			}
			spirv, err := naga.Compile(src.source)
			if err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
					t.Skipf("naga feature not yet implemented: %v", err)
				}
				if strings.Contains(msg, "lowering error") || strings.Contains(msg, "atomic") {
					t.Skipf("naga atomic/lowering limitation: %v", err)
				}
				t.Fatalf("compile: %v", err)
			}
			if len(spirv) < 4 {
				t.Fatal("SPIR-V too short")
			}
			magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
			if magic != 0x07230203 {
				t.Errorf("SPIR-V magic = %#x", magic)
			}
			t.Logf("%s: %d bytes of SPIR-V", src.label, len(spirv))
		})
	}
}

func TestShaderEntryPoints(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{seedShaderSource, []string{"fn clear_keys", "fn scatter", "fn resolve", "atomicMax"}},
		{jfaShaderSource, []string{"fn main", "@workgroup_size(8, 8)"}},
		{encodeShaderSource, []string{"fn main", "fn winding", "fn median3"}},
		{renderShaderSource, []string{"fn vs_main", "fn fs_main", "smoothstep"}},
	}
	for _, tt := range tests {
		for _, w := range tt.want {
			if !strings.Contains(tt.source, w) {
				t.Errorf("shader missing %q", w)
			}
		}
	}
}

// Every module declares the same Params struct; a drift between copies
// would silently misread the uniform buffer.
func TestShaderParamsAgree(t *testing.T) {
	decl := func(src string) string {
		i := strings.Index(src, "struct Params {")
		j := strings.Index(src[i:], "}")
		return src[i : i+j]
	}
	want := decl(seedShaderSource)
	for _, src := range []string{jfaShaderSource, encodeShaderSource, renderShaderSource} {
		if got := decl(src); got != want {
			t.Errorf("Params declaration differs:\n%s\nwant:\n%s", got, want)
		}
	}
}
