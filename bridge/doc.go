// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package bridge presents ink strokes through a host GPU window.
//
// A Layer is the pixel layer strokes are committed to. It implements
// ink.Compositor and ink.RegionReader, so it can be handed straight to
// ink.NewRenderer, and it uploads its pixels to a host texture once per
// frame:
//
//	layer, _ := bridge.NewLayer(app.GPUContextProvider(), 800, 600)
//	r, _ := ink.NewRenderer(layer, history)
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    r.Flush()
//	    layer.SetPreview(r.Preview())
//	    layer.Present(drawer) // drawer adapts dc to TextureDrawer
//	})
//
// Previews rendered on the CPU are composed into the uploaded frame.
// Previews that carry a native accelerator texture are drawn directly
// when the drawer implements NativeDrawer, skipping the upload.
//
// Replaced host textures may still be referenced by in-flight command
// buffers, so they are destroyed on the next Present rather than at once.
package bridge
