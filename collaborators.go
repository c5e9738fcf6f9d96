package ink

import (
	"errors"
	"image"
	"sync"
)

// Compositor owns the visible layer. It receives finalized stroke surfaces
// and inserts or removes them.
type Compositor interface {
	AddStroke(s *Surface) error
	RemoveStroke(s *Surface)
}

// RegionReader is implemented by compositors that can hand out the layer
// pixels under a stroke. Renderers use it to preload the render target so
// the eraser has something to remove.
type RegionReader interface {
	// ReadRegion returns a premultiplied copy of the layer pixels in r,
	// sized r.Dx() × r.Dy(). Pixels outside the layer are transparent.
	ReadRegion(r image.Rectangle) *image.RGBA
}

// Command is an undoable action registered with History.
type Command interface {
	Do() error
	Undo() error
}

// History receives one Command per finalized stroke. The renderer never
// calls Undo or Do again itself.
type History interface {
	Push(c Command)
}

// BrushSource supplies the brush when a stroke starts.
type BrushSource interface {
	Brush() Brush
}

// BrushFunc adapts a function to BrushSource.
type BrushFunc func() Brush

// Brush returns f().
func (f BrushFunc) Brush() Brush { return f() }

var errRenderFailed = errors.New("ink: stroke could not be rendered")

// strokeCommand inserts a finalized stroke into the compositor. Undo
// removes it and releases its surface; Do after Undo renders it again from
// the recorded points.
type strokeCommand struct {
	comp   Compositor
	render func() *Surface

	mu      sync.Mutex
	surf    *Surface
	applied bool
}

func (c *strokeCommand) Do() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied {
		return nil
	}
	if c.surf == nil || c.surf.Released() {
		c.surf = c.render()
		if c.surf == nil {
			return errRenderFailed
		}
	}
	if err := c.comp.AddStroke(c.surf); err != nil {
		return err
	}
	c.applied = true
	return nil
}

func (c *strokeCommand) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.applied {
		return nil
	}
	c.comp.RemoveStroke(c.surf)
	c.surf.Release()
	c.applied = false
	return nil
}

// Surface returns the stroke's current surface, nil after Undo released it.
func (c *strokeCommand) Surface() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surf == nil || c.surf.Released() {
		return nil
	}
	return c.surf
}
