// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package bridge

import "errors"

// Errors returned by Present.
var (
	// ErrNoTextureCreator is returned when the drawer has no texture creator.
	ErrNoTextureCreator = errors.New("bridge: drawer has no texture creator")

	// ErrNotDrawable is returned when the creator made a texture the drawer rejects.
	ErrNotDrawable = errors.New("bridge: texture is not drawable")
)

// TextureCreator creates host textures from premultiplied RGBA pixels.
// gogpu's renderer satisfies it.
type TextureCreator interface {
	NewTextureFromRGBA(width, height int, data []byte) (any, error)
}

// TextureUpdater is implemented by host textures that accept new pixels
// of the same size in place.
type TextureUpdater interface {
	UpdateData(data []byte) error
}

// TextureDrawer draws host textures into the current frame.
type TextureDrawer interface {
	DrawTexture(tex any, x, y float32) error
	TextureCreator() TextureCreator
}

// NativeDrawer is implemented by drawers that can sample a texture owned
// by the ink accelerator (gpu.Texture) without an upload.
type NativeDrawer interface {
	DrawNative(handle any, x, y float32) error
}

// textureDestroyer matches the host texture's Destroy method.
type textureDestroyer interface {
	Destroy()
}

// premultiplier is implemented by gogpu textures that select their blend
// pipeline from the alpha convention of the data.
type premultiplier interface {
	SetPremultiplied(bool)
}

// hostTexture is one lazily created texture and its deferred predecessors.
type hostTexture struct {
	tex           any
	width, height int
	retired       []any
}

// upload writes data into the texture, creating it on first use and
// recreating it when the size changed or it cannot be updated in place.
func (h *hostTexture) upload(creator TextureCreator, width, height int, data []byte) error {
	if h.tex != nil && h.width == width && h.height == height {
		if u, ok := h.tex.(TextureUpdater); ok {
			return u.UpdateData(data)
		}
	}
	if creator == nil {
		return ErrNoTextureCreator
	}
	tex, err := creator.NewTextureFromRGBA(width, height, data)
	if err != nil {
		return err
	}
	if p, ok := tex.(premultiplier); ok {
		p.SetPremultiplied(true)
	}
	if h.tex != nil {
		h.retired = append(h.retired, h.tex)
	}
	h.tex, h.width, h.height = tex, width, height
	return nil
}

// collect destroys textures retired before the previous frame.
func (h *hostTexture) collect() {
	for _, t := range h.retired {
		destroy(t)
	}
	h.retired = h.retired[:0]
}

func (h *hostTexture) destroy() {
	h.collect()
	if h.tex != nil {
		destroy(h.tex)
		h.tex = nil
	}
}

// live counts textures not yet destroyed.
func (h *hostTexture) live() int {
	n := len(h.retired)
	if h.tex != nil {
		n++
	}
	return n
}

func destroy(t any) {
	if d, ok := t.(textureDestroyer); ok {
		d.Destroy()
	}
}
