package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/unilink/internal/cache"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// fakeExtractor returns a fixed palette per URL and counts calls.
type fakeExtractor struct {
	mu       sync.Mutex
	palettes map[string]palette.ColorPalette
	calls    int
}

func (f *fakeExtractor) Extract(_ context.Context, imageURL string) palette.ColorPalette {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if p, ok := f.palettes[imageURL]; ok {
		return p
	}
	return palette.BrandPalette()
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryStore is an in-memory PaletteStorer.
type memoryStore struct {
	mu        sync.Mutex
	palettes  map[string]palette.ColorPalette
	lookupErr error
	saveErr   error
	saves     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{palettes: make(map[string]palette.ColorPalette)}
}

func (m *memoryStore) Lookup(imageURL string) (palette.ColorPalette, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return palette.ColorPalette{}, false, m.lookupErr
	}
	p, ok := m.palettes[imageURL]
	return p, ok, nil
}

func (m *memoryStore) Save(imageURL string, p palette.ColorPalette) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.palettes[imageURL] = p
	return nil
}

var testPalette = palette.ColorPalette{
	Dominant:      "#1e2a4a",
	Vibrant:       "#e04a3a",
	Muted:         "#6a7080",
	Dark:          "#101522",
	Light:         "#f0e8d8",
	Complementary: "#4a3e1e",
	Analogous:     [2]string{"#1e3e4a", "#2a1e4a"},
	Confidence:    0.8,
}

const testArtwork = "https://i.scdn.co/image/a1"

func newTestConversion(store PaletteStorer, withCache bool) (*ConversionService, *fakeExtractor) {
	extractor := &fakeExtractor{palettes: map[string]palette.ColorPalette{testArtwork: testPalette}}
	resolver := NewResolverSet().Register(Spotify, ArtworkResolverFunc(func(_ context.Context, link Link) (string, error) {
		if link.ID == "a1" {
			return testArtwork, nil
		}
		return "https://i.scdn.co/image/" + link.ID, nil
	}))

	opts := ConversionOpts{Resolver: resolver, Extractor: extractor, Store: store}
	if withCache {
		opts.Cache = cache.NewTTL[string, palette.ColorPalette](time.Minute, time.Now)
	}
	return NewConversionService(opts), extractor
}

func TestConversionServiceConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and extracts", func(t *testing.T) {
		svc, extractor := newTestConversion(nil, true)

		conv, err := svc.Convert(ctx, "https://open.spotify.com/album/a1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conv.ArtworkURL != testArtwork {
			t.Errorf("expected artwork %s, got %s", testArtwork, conv.ArtworkURL)
		}
		if conv.Palette != testPalette {
			t.Errorf("unexpected palette %+v", conv.Palette)
		}
		if conv.Cached {
			t.Error("first conversion should not be cached")
		}
		if conv.Link.Platform != Spotify || conv.Link.ID != "a1" {
			t.Errorf("unexpected link %+v", conv.Link)
		}

		again, err := svc.Convert(ctx, "spotify:album:a1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !again.Cached {
			t.Error("second conversion should come from the cache")
		}
		if extractor.Calls() != 1 {
			t.Errorf("expected one extraction, got %d", extractor.Calls())
		}
	})

	t.Run("unsupported link", func(t *testing.T) {
		svc, _ := newTestConversion(nil, false)
		if _, err := svc.Convert(ctx, "https://example.com/nothing"); !errors.Is(err, shared.ErrUnsupportedLink) {
			t.Errorf("expected ErrUnsupportedLink, got %v", err)
		}
	})

	t.Run("resolver failure", func(t *testing.T) {
		svc, extractor := newTestConversion(nil, false)
		_, err := svc.Convert(ctx, "https://www.deezer.com/track/1")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if extractor.Calls() != 0 {
			t.Error("extraction should not run when artwork cannot be resolved")
		}
	})
}

func TestConversionServicePalette(t *testing.T) {
	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		svc, _ := newTestConversion(nil, true)
		if _, _, err := svc.Palette(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("store hit skips extraction", func(t *testing.T) {
		store := newMemoryStore()
		store.palettes[testArtwork] = testPalette
		svc, extractor := newTestConversion(store, true)

		p, cached, err := svc.Palette(ctx, testArtwork)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cached {
			t.Error("expected store hit to report cached")
		}
		if p != testPalette {
			t.Errorf("unexpected palette %+v", p)
		}
		if extractor.Calls() != 0 {
			t.Errorf("expected no extraction, got %d", extractor.Calls())
		}
	})

	t.Run("extraction is persisted", func(t *testing.T) {
		store := newMemoryStore()
		svc, _ := newTestConversion(store, false)

		if _, _, err := svc.Palette(ctx, testArtwork); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := store.palettes[testArtwork]; got != testPalette {
			t.Errorf("expected palette to be saved, got %+v", got)
		}
	})

	t.Run("fallback is neither persisted nor cached", func(t *testing.T) {
		store := newMemoryStore()
		svc, extractor := newTestConversion(store, true)
		url := "https://i.scdn.co/image/broken"

		for range 2 {
			p, cached, err := svc.Palette(ctx, url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.IsFallback() {
				t.Errorf("expected fallback palette, got %+v", p)
			}
			if cached {
				t.Error("fallback should never be reported as cached")
			}
		}
		if extractor.Calls() != 2 {
			t.Errorf("expected fallback to be retried, got %d extractions", extractor.Calls())
		}
		if store.saves != 0 {
			t.Errorf("expected no saves, got %d", store.saves)
		}
	})

	t.Run("store errors are ignored", func(t *testing.T) {
		store := newMemoryStore()
		store.lookupErr = errors.New("disk full")
		store.saveErr = errors.New("disk full")
		svc, extractor := newTestConversion(store, false)

		p, cached, err := svc.Palette(ctx, testArtwork)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cached || p != testPalette {
			t.Errorf("expected fresh extraction, got cached=%v palette=%+v", cached, p)
		}
		if extractor.Calls() != 1 {
			t.Errorf("expected one extraction, got %d", extractor.Calls())
		}
	})
}
