package ink

import (
	"image"
	"testing"
)

func TestSurfaceReleaseOnce(t *testing.T) {
	baseline := LiveSurfaces()
	calls := 0
	s := NewSurface(image.NewRGBA(image.Rect(0, 0, 4, 3)), image.Pt(10, 20), nil, func() { calls++ })
	if LiveSurfaces() != baseline+1 {
		t.Fatalf("live = %d, want %d", LiveSurfaces(), baseline+1)
	}
	if got := s.Bounds(); got != image.Rect(10, 20, 14, 23) {
		t.Errorf("Bounds = %v", got)
	}
	s.Release()
	s.Release()
	if calls != 1 || !s.Released() {
		t.Errorf("release ran %d times", calls)
	}
	if LiveSurfaces() != baseline {
		t.Errorf("live = %d, want %d", LiveSurfaces(), baseline)
	}

	var nilSurface *Surface
	nilSurface.Release()
}

func TestSurfaceNativeOnly(t *testing.T) {
	s := NewSurface(nil, image.Pt(3, 4), "texture", nil)
	defer s.Release()
	if !s.Bounds().Empty() || s.Native != "texture" {
		t.Errorf("native surface = %+v", s)
	}
}

func TestPixelPoolReuseIsZeroed(t *testing.T) {
	var p surfacePool
	img := p.get(10, 10)
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	p.put(img)
	for range 4 {
		again := p.get(9, 11)
		if again.Rect != image.Rect(0, 0, 9, 11) || again.Stride != 36 {
			t.Fatalf("rect %v stride %d", again.Rect, again.Stride)
		}
		for i, v := range again.Pix {
			if v != 0 {
				t.Fatalf("pooled pixel byte %d = %d", i, v)
			}
		}
		p.put(again)
	}
}

func TestBucketOf(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {400, 9}, {512, 9}, {513, 10},
	}
	for _, tt := range tests {
		if got := bucketOf(tt.n); got != tt.want {
			t.Errorf("bucketOf(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
