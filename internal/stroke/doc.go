// Package stroke converts pressure-varying polylines into filled geometry
// for the simpler rendering paths.
//
// Three shapes are produced:
//   - Dot: a disc for single-point taps, shaded from each pixel centre's
//     distance to the rim.
//   - Capsules: one circle per point and one trapezoid per segment, all wound
//     the same way so the rasterizer fills their union.
//   - Outline: a single closed polygon made of a forward offset path, a round
//     end cap, the backward offset path and a round start cap. The polygon is
//     fed to the distance-field pipeline as a closed edge buffer.
//
// The offset path at each point uses the normal averaged from its two
// segments, scaled so the stroke keeps its width through gentle turns.
//
// Capsules and polygons are filled with golang.org/x/image/vector, which
// accumulates signed area, so overlapping pieces only merge when they share
// a winding direction.
package stroke
