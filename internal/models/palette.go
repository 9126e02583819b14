package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// PaletteSource records how a palette was produced.
type PaletteSource string

const (
	SourceExtracted PaletteSource = "extracted"
	SourceFallback  PaletteSource = "fallback"
)

// PaletteRecord is a persisted palette for one image URL.
type PaletteRecord struct {
	id        string
	sequence  int
	imageURL  string
	palette   palette.ColorPalette
	source    PaletteSource
	createdAt time.Time
	updatedAt time.Time
}

// NewPaletteRecord creates a record for imageURL. The source is derived from the palette.
func NewPaletteRecord(sequence int, imageURL string, p palette.ColorPalette) *PaletteRecord {
	now := time.Now()
	source := SourceExtracted
	if p.IsFallback() {
		source = SourceFallback
	}

	return &PaletteRecord{
		sequence:  sequence,
		imageURL:  imageURL,
		palette:   p,
		source:    source,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *PaletteRecord) ID() string { return r.id }
func (r *PaletteRecord) Sequence() int { return r.sequence }
func (r *PaletteRecord) ImageURL() string { return r.imageURL }
func (r *PaletteRecord) Palette() palette.ColorPalette { return r.palette }
func (r *PaletteRecord) Source() PaletteSource { return r.source }
func (r *PaletteRecord) CreatedAt() time.Time { return r.createdAt }
func (r *PaletteRecord) UpdatedAt() time.Time { return r.updatedAt }

func (r *PaletteRecord) SetID(id string) { r.id = id }
func (r *PaletteRecord) SetSequence(seq int) { r.sequence = seq }
func (r *PaletteRecord) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *PaletteRecord) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *PaletteRecord) SetSource(s PaletteSource) { r.source = s }
func (r *PaletteRecord) SetPalette(p palette.ColorPalette) { r.palette = p }

// Age returns how long ago the record was last written.
func (r *PaletteRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.updatedAt)
}

// Validate checks the image URL, every color, the confidence range and the source.
func (r *PaletteRecord) Validate() error {
	if strings.TrimSpace(r.imageURL) == "" {
		return fmt.Errorf("%w: image URL is required", shared.ErrInvalidInput)
	}

	p := r.palette
	colors := []struct{ role, hex string }{
		{"dominant", p.Dominant},
		{"vibrant", p.Vibrant},
		{"muted", p.Muted},
		{"dark", p.Dark},
		{"light", p.Light},
		{"complementary", p.Complementary},
		{"analogous", p.Analogous[0]},
		{"analogous", p.Analogous[1]},
	}
	for _, c := range colors {
		if !palette.IsHexColor(c.hex) {
			return fmt.Errorf("%w: %s color %q is not #rrggbb", shared.ErrInvalidInput, c.role, c.hex)
		}
	}

	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", shared.ErrInvalidInput, p.Confidence)
	}

	switch r.source {
	case SourceExtracted, SourceFallback:
	default:
		return fmt.Errorf("%w: unknown palette source %q", shared.ErrInvalidInput, r.source)
	}
	return nil
}
