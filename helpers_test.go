package ink

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"
)

// testComposer records inserted strokes without reading the layer.
type testComposer struct {
	mu      sync.Mutex
	added   []*Surface
	removed []*Surface
	addErr  error
}

func (c *testComposer) AddStroke(s *Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addErr != nil {
		return c.addErr
	}
	c.added = append(c.added, s)
	return nil
}

func (c *testComposer) RemoveStroke(s *Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, s)
}

// testLayer is a pixel layer that composites surfaces and restores the
// previous pixels on removal.
type testLayer struct {
	img   *image.RGBA
	saved map[*Surface]*image.RGBA
}

func newTestLayer(w, h int, fill color.RGBA) *testLayer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	return &testLayer{img: img, saved: make(map[*Surface]*image.RGBA)}
}

func (l *testLayer) ReadRegion(r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), l.img, r.Min, draw.Src)
	return out
}

func (l *testLayer) AddStroke(s *Surface) error {
	l.saved[s] = l.ReadRegion(s.Bounds())
	op := draw.Over
	if s.Composited {
		op = draw.Src
	}
	draw.Draw(l.img, s.Bounds(), s.Image, image.Point{}, op)
	return nil
}

func (l *testLayer) RemoveStroke(s *Surface) {
	if prev, ok := l.saved[s]; ok {
		draw.Draw(l.img, s.Bounds(), prev, image.Point{}, draw.Src)
		delete(l.saved, s)
	}
}

type testHistory struct {
	cmds []Command
}

func (h *testHistory) Push(c Command) { h.cmds = append(h.cmds, c) }

// fakeAccel wraps the CPU accelerator and injects failures.
type fakeAccel struct {
	cpu *CPUAccelerator

	mu        sync.Mutex
	renderErr error
	initErrs  []error
	inits     int
	closes    int
	renders   int
}

func newFakeAccel() *fakeAccel {
	return &fakeAccel{cpu: NewCPUAccelerator(2)}
}

func (a *fakeAccel) Name() string { return "fake" }

func (a *fakeAccel) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inits++
	if len(a.initErrs) > 0 {
		err := a.initErrs[0]
		a.initErrs = a.initErrs[1:]
		if err != nil {
			return err
		}
	}
	return a.cpu.Init()
}

func (a *fakeAccel) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closes++
	a.cpu.Close()
}

func (a *fakeAccel) Render(job *Job) (*Surface, error) {
	a.mu.Lock()
	a.renders++
	err := a.renderErr
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return a.cpu.Render(job)
}

func (a *fakeAccel) setRenderErr(err error) {
	a.mu.Lock()
	a.renderErr = err
	a.mu.Unlock()
}

func (a *fakeAccel) renderCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renders
}

// fakeScheduler captures scheduled callbacks so tests run them by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
	stops  int
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
	return func() {
		s.mu.Lock()
		s.stops++
		s.mu.Unlock()
	}
}

// runNext runs the oldest pending callback and reports whether one existed.
func (s *fakeScheduler) runNext() bool {
	s.mu.Lock()
	if len(s.funcs) == 0 {
		s.mu.Unlock()
		return false
	}
	f := s.funcs[0]
	s.funcs = s.funcs[1:]
	s.mu.Unlock()
	f()
	return true
}

var errInitFailed = errors.New("init failed")

func alphaAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).A
}
