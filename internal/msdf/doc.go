// Package msdf generates multi-channel signed distance fields for freehand
// strokes on the CPU, mirroring the compute shaders in internal/gpu pass for
// pass and word for word.
//
// # Passes
//
//  1. SeedInit clears a seed field to the "no seed" sentinel and writes five
//     samples per edge (both ends, the midpoint and the quarter points).
//  2. JFA propagates the nearest seed to every texel in ceil(log2(max(w,h)))
//     halving-step iterations, ping-ponging between two seed fields.
//  3. Encode uses the converged seed's edge id as a hint and scans a small
//     window of edges around it, keeping the minimum distance per channel.
//  4. Render takes the median of the three channels and maps it through a
//     smoothstep into coverage, then blends it as pen or eraser.
//
// Edges are assigned round-robin to the R, G and B channels (edge id mod 3).
// Where the median of the three channels disagrees with the true distance,
// all three channels are reset to it, so open polylines never show holes.
//
// # Sign convention
//
// Stored values are positive inside the ink and negative outside. Render
// treats the zero crossing as the edge of the stroke.
//
// # WGSL equivalent
//
//	fn median3(v: vec3<f32>) -> f32 {
//	    return max(min(v.r, v.g), min(max(v.r, v.g), v.b));
//	}
//
//	let alpha = smoothstep(threshold - range, threshold + range, median3(d));
package msdf
