// Command inkdemo replays synthetic pen and eraser strokes through the ink
// renderer and saves the resulting layer as a PNG.
package main

import (
	"flag"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/bridge"
	_ "github.com/gogpu/ink/gpu" // enable GPU stroke rendering when available
)

// stack is a minimal undo history.
type stack struct{ cmds []ink.Command }

func (s *stack) Push(c ink.Command) { s.cmds = append(s.cmds, c) }

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		output  = flag.String("output", "ink.png", "output file")
		config  = flag.String("config", "", "TOML or YAML renderer config")
		cpuOnly = flag.Bool("cpu", false, "render on the CPU even if a GPU is available")
		undo    = flag.Bool("undo", false, "undo the eraser stroke before saving")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := ink.DefaultConfig()
	if *config != "" {
		loaded, err := ink.LoadConfig(*config)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	layer, err := bridge.NewLayer(nil, *width, *height)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = layer.Close() }()
	layer.Fill(color.White)

	opts := []ink.Option{ink.WithConfig(cfg)}
	if *cpuOnly {
		opts = append(opts, ink.WithAccelerator(ink.NewCPUAccelerator(cfg.Workers)))
	}
	history := &stack{}
	r, err := ink.NewRenderer(layer, history, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	w, h := float64(*width), float64(*height)
	palette := []ink.RGBA{ink.Hex("#1d3557"), ink.Hex("#e63946"), ink.Hex("#2a9d8f")}
	for i, c := range palette {
		brush := ink.Brush{Color: c, Size: 10 + 6*float64(i), Opacity: 1, Mode: ink.BlendPen}
		y0 := h * float64(i+1) / float64(len(palette)+1)
		if err := drawStroke(r, brush, wave(w, y0, h/10, float64(i))); err != nil {
			log.Fatalf("Pen stroke %d: %v", i, err)
		}
	}

	eraser := ink.Brush{Color: ink.Black, Size: 30, Opacity: 1, Mode: ink.BlendEraser}
	if err := drawStroke(r, eraser, diagonal(w, h)); err != nil {
		log.Fatalf("Eraser stroke: %v", err)
	}
	if *undo {
		if err := history.cmds[len(history.cmds)-1].Undo(); err != nil {
			log.Fatalf("Undo: %v", err)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := png.Encode(f, layer.Snapshot()); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := r.Stats()
	log.Printf("Saved %s (%dx%d): %d strokes, %d flushes, %d edges in the last update, accelerator %s",
		*output, *width, *height, st.Strokes, st.Flushes, st.LastEdges, st.Accelerator)
}

// drawStroke feeds pts through the renderer one frame per sample.
func drawStroke(r *ink.Renderer, brush ink.Brush, pts []ink.StrokePoint) error {
	if err := r.SetBrush(brush); err != nil {
		return err
	}
	if err := r.StartStroke(pts[0].X, pts[0].Y, pts[0].Pressure); err != nil {
		return err
	}
	for _, p := range pts[1:] {
		if err := r.UpdateStroke(p.X, p.Y, p.Pressure); err != nil {
			return err
		}
		if err := r.Flush(); err != nil {
			return err
		}
	}
	return r.FinalizeStroke()
}

// wave is a horizontal sine stroke whose pressure swells mid-way.
func wave(w, y0, amp, phase float64) []ink.StrokePoint {
	const n = 60
	pts := make([]ink.StrokePoint, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / n
		pts = append(pts, ink.StrokePoint{
			X:        w*0.1 + t*w*0.8,
			Y:        y0 + amp*math.Sin(t*2*math.Pi+phase),
			Pressure: 0.3 + 0.7*math.Sin(t*math.Pi),
		})
	}
	return pts
}

func diagonal(w, h float64) []ink.StrokePoint {
	const n = 20
	pts := make([]ink.StrokePoint, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / n
		pts = append(pts, ink.StrokePoint{X: w * (0.2 + 0.6*t), Y: h * (0.15 + 0.7*t), Pressure: 1})
	}
	return pts
}
