// Package tasks runs palette extraction over many images with real-time progress reporting.
//
// # Bulk Extraction
//
// [PaletteEngine.BulkExtract] fans a list of image URLs out over a worker pool:
//   - A producer feeds jobs through a [rate.Limiter] so artwork hosts see at most RateLimit fetches per second
//   - Workers extract each palette and write it as json, css or txt, one file per input
//   - A palette_manifest.json summarizes every input, flagging fallbacks and write failures
//
// Extraction never fails; unreachable or undecodable images produce the brand palette and are counted as fallbacks.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Palette Caching
//
// The optional [PaletteCacher] interface lets repeated runs skip images that were already extracted.
// Cacher errors are logged and ignored so persistence problems never abort a run.
package tasks
