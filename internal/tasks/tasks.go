// package tasks implements long-running palette operations over many images.
//
// The core abstraction is PaletteEngine, which fans extraction out over a worker pool.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/formatter"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// PaletteExtractor produces a palette for an image URL, falling back to the brand palette on failure.
type PaletteExtractor interface {
	Extract(ctx context.Context, imageURL string) palette.ColorPalette
}

// PaletteCacher persists palettes between runs. repositories.PaletteStore implements it.
type PaletteCacher interface {
	Lookup(imageURL string) (palette.ColorPalette, bool, error)
	Save(imageURL string, p palette.ColorPalette) error
}

// PaletteResult is the outcome for one input URL.
type PaletteResult struct {
	Index   int                  // Position in the input list
	URL     string               // Image URL
	Palette palette.ColorPalette // Extracted or fallback palette
	File    string               // Written file, empty on failure
	Cached  bool                 // Served from the cacher
	Error   error                // Write error; extraction itself never fails
}

// Fallback reports whether extraction failed and the brand palette was used.
func (r PaletteResult) Fallback() bool {
	return r.Error == nil && r.Palette.IsFallback()
}

// BulkExtractResult summarizes a bulk extraction.
type BulkExtractResult struct {
	TotalImages     int
	Succeeded       int
	Fallbacks       int
	Failed          int
	OutputDirectory string
	ManifestPath    string
	Results         []PaletteResult // Ordered by input index
}

// Manifest converts r into the serialized manifest.
func (r *BulkExtractResult) Manifest(format formatter.Format) *formatter.Manifest {
	m := &formatter.Manifest{
		Format:          format,
		OutputDirectory: r.OutputDirectory,
		Total:           r.TotalImages,
		Succeeded:       r.Succeeded,
		Fallbacks:       r.Fallbacks,
		Failed:          r.Failed,
		Entries:         make([]formatter.ManifestEntry, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			URL:        res.URL,
			File:       res.File,
			Dominant:   res.Palette.Dominant,
			Confidence: res.Palette.Confidence,
			Fallback:   res.Fallback(),
			Cached:     res.Cached,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}

// PaletteEngine runs bulk palette operations.
type PaletteEngine struct {
	extractor PaletteExtractor
	cacher    PaletteCacher
	logger    *log.Logger
}

// NewPaletteEngine creates an engine. cacher and logger are optional.
func NewPaletteEngine(extractor PaletteExtractor, cacher PaletteCacher, logger *log.Logger) *PaletteEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PaletteEngine{extractor: extractor, cacher: cacher, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PaletteEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// palette returns the cached palette for url or extracts a fresh one. Cacher errors are logged and ignored.
func (e *PaletteEngine) palette(ctx context.Context, url string) (palette.ColorPalette, bool) {
	if e.cacher != nil {
		p, ok, err := e.cacher.Lookup(url)
		if err != nil {
			e.logger.Warn("palette lookup failed", "url", url, "error", err)
		} else if ok {
			return p, true
		}
	}

	p := e.extractor.Extract(ctx, url)

	if e.cacher != nil && !p.IsFallback() {
		if err := e.cacher.Save(url, p); err != nil {
			e.logger.Warn("failed to cache palette", "url", url, "error", err)
		}
	}
	return p, false
}
