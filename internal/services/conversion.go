package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/cache"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// PaletteExtractor produces a palette for an image URL. It never fails; errors yield the brand palette.
type PaletteExtractor interface {
	Extract(ctx context.Context, imageURL string) palette.ColorPalette
}

// PaletteStorer is the persistent palette tier, implemented by repositories.PaletteStore.
type PaletteStorer interface {
	Lookup(imageURL string) (palette.ColorPalette, bool, error)
	Save(imageURL string, p palette.ColorPalette) error
}

// Conversion is the result of converting a link.
type Conversion struct {
	Link       Link                 `json:"link"`
	ArtworkURL string               `json:"artworkUrl"`
	Palette    palette.ColorPalette `json:"palette"`
	Cached     bool                 `json:"cached"`
}

// ConversionOpts configures [NewConversionService]. Cache and Store are optional.
type ConversionOpts struct {
	Resolver  ArtworkResolver
	Extractor PaletteExtractor
	Cache     *cache.TTL[string, palette.ColorPalette]
	Store     PaletteStorer
	Logger    *log.Logger
}

// ConversionService turns music links into artwork palettes.
type ConversionService struct {
	resolver  ArtworkResolver
	extractor PaletteExtractor
	cache     *cache.TTL[string, palette.ColorPalette]
	store     PaletteStorer
	logger    *log.Logger
}

func NewConversionService(opts ConversionOpts) *ConversionService {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolverSet()
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = palette.NewExtractor(palette.ExtractorOpts{Logger: opts.Logger})
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &ConversionService{
		resolver:  resolver,
		extractor: extractor,
		cache:     opts.Cache,
		store:     opts.Store,
		logger:    logger,
	}
}

// Resolve parses raw and finds its artwork URL.
func (s *ConversionService) Resolve(ctx context.Context, raw string) (Link, string, error) {
	link, err := ParseLink(raw)
	if err != nil {
		return Link{}, "", err
	}

	artwork, err := s.resolver.ResolveArtwork(ctx, link)
	if err != nil {
		return link, "", fmt.Errorf("failed to resolve artwork for %s: %w", link.Platform, err)
	}
	return link, artwork, nil
}

// Convert parses raw, resolves its artwork and extracts the palette.
func (s *ConversionService) Convert(ctx context.Context, raw string) (*Conversion, error) {
	link, artwork, err := s.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	p, cached, err := s.Palette(ctx, artwork)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("converted link", "platform", link.Platform, "type", link.ContentType, "cached", cached)
	return &Conversion{Link: link, ArtworkURL: artwork, Palette: p, Cached: cached}, nil
}

// Palette returns the palette for imageURL from the memory cache, the store or a fresh extraction.
//
// The boolean reports whether either cache tier answered. Fallback palettes are returned but never kept.
func (s *ConversionService) Palette(ctx context.Context, imageURL string) (palette.ColorPalette, bool, error) {
	if imageURL == "" {
		return palette.ColorPalette{}, false, fmt.Errorf("%w: image url", shared.ErrMissingArgument)
	}

	if s.cache == nil {
		return s.load(ctx, imageURL)
	}

	var stored bool
	p, cached, err := s.cache.GetOrRefresh(ctx, imageURL, func(ctx context.Context) (palette.ColorPalette, error) {
		p, hit, err := s.load(ctx, imageURL)
		stored = hit
		return p, err
	})
	if err != nil {
		return palette.ColorPalette{}, false, err
	}
	if p.IsFallback() {
		s.cache.Invalidate(imageURL)
	}
	return p, cached || stored, nil
}

func (s *ConversionService) load(ctx context.Context, imageURL string) (palette.ColorPalette, bool, error) {
	if s.store != nil {
		p, ok, err := s.store.Lookup(imageURL)
		switch {
		case err != nil:
			s.logger.Warn("palette store lookup failed", "url", imageURL, "error", err)
		case ok:
			return p, true, nil
		}
	}

	p := s.extractor.Extract(ctx, imageURL)

	if s.store != nil && !p.IsFallback() {
		if err := s.store.Save(imageURL, p); err != nil {
			s.logger.Warn("failed to persist palette", "url", imageURL, "error", err)
		}
	}
	return p, false, nil
}
