// Package palette extracts a perceptual color palette from album artwork.
//
// # Pipeline
//
//  1. The image is loaded through a [Loader] (HTTP by default, bounded by a timeout) and stretched onto a
//     square canvas of [Config.CanvasSize] pixels.
//  2. Every second pixel on both axes is sampled. Transparent, near-white and near-black pixels are dropped
//     and the rest are weighted by a Gaussian falloff from the image center (see [Config.CenterBias]).
//  3. Weighted median cut splits the samples log2([Config.ClusterCount]) times into [ColorCluster] values.
//  4. Clusters are assigned the dominant, vibrant, muted, dark and light roles, and complementary and analogous
//     harmony colors are derived from the dominant hue.
//
// # Failure Handling
//
// [Extractor.Extract] never returns an error. Load failures, decode failures, timeouts and degenerate images
// all resolve to [BrandPalette], whose [ColorPalette.Confidence] is 0. Callers that care whether a real
// extraction happened check [ColorPalette.IsFallback].
package palette
