package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/unilink/internal/formatter"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
	th "github.com/desertthunder/unilink/internal/testing"
)

func TestBulkExtract_SuccessfulExtraction(t *testing.T) {
	tests := []struct {
		name          string
		format        formatter.Format
		urls          []string
		wantSucceeded int
		wantFallbacks int
		wantExt       string
	}{
		{
			name:          "single image json",
			format:        formatter.FormatJSON,
			urls:          []string{"a.png"},
			wantSucceeded: 1,
			wantExt:       ".json",
		},
		{
			name:          "multiple images css",
			format:        formatter.FormatCSS,
			urls:          []string{"a.png", "b.png", "c.png"},
			wantSucceeded: 3,
			wantExt:       ".css",
		},
		{
			name:          "fallbacks are written and counted",
			format:        formatter.FormatText,
			urls:          []string{"a.png", "broken.png"},
			wantSucceeded: 1,
			wantFallbacks: 1,
			wantExt:       ".txt",
		},
		{
			name:          "default format",
			format:        "",
			urls:          []string{"b.png"},
			wantSucceeded: 1,
			wantExt:       ".json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &mockExtractor{palettes: map[string]palette.ColorPalette{
				"a.png": navyPalette, "b.png": navyPalette, "c.png": navyPalette,
			}}
			engine := NewPaletteEngine(extractor, nil, nil)
			dir := t.TempDir()

			result, err := engine.BulkExtract(context.Background(), nil, tt.urls, BulkExtractOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
				RateLimit:  1000,
			})
			if err != nil {
				t.Fatalf("BulkExtract failed: %v", err)
			}

			if result.TotalImages != len(tt.urls) {
				t.Errorf("expected total %d, got %d", len(tt.urls), result.TotalImages)
			}
			if result.Succeeded != tt.wantSucceeded {
				t.Errorf("expected %d succeeded, got %d", tt.wantSucceeded, result.Succeeded)
			}
			if result.Fallbacks != tt.wantFallbacks {
				t.Errorf("expected %d fallbacks, got %d", tt.wantFallbacks, result.Fallbacks)
			}
			if result.Failed != 0 {
				t.Errorf("expected no failures, got %d", result.Failed)
			}

			if len(result.Results) != len(tt.urls) {
				t.Fatalf("expected %d results, got %d", len(tt.urls), len(result.Results))
			}
			for i, res := range result.Results {
				if res.Index != i || res.URL != tt.urls[i] {
					t.Errorf("results should follow input order, got %d:%s at %d", res.Index, res.URL, i)
				}
				if filepath.Ext(res.File) != tt.wantExt {
					t.Errorf("expected %s file, got %s", tt.wantExt, res.File)
				}
				th.AssertFileExists(t, res.File)
			}

			th.AssertFileExists(t, filepath.Join(dir, ManifestName))
			if result.ManifestPath != filepath.Join(dir, ManifestName) {
				t.Errorf("unexpected manifest path %s", result.ManifestPath)
			}
		})
	}
}

func TestBulkExtract_Manifest(t *testing.T) {
	extractor := &mockExtractor{palettes: map[string]palette.ColorPalette{"a.png": navyPalette}}
	engine := NewPaletteEngine(extractor, nil, nil)
	dir := t.TempDir()

	result, err := engine.BulkExtract(context.Background(), nil, []string{"a.png", "broken.png"}, BulkExtractOpts{
		Format:    formatter.FormatCSS,
		OutputDir: dir,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("BulkExtract failed: %v", err)
	}

	var manifest formatter.Manifest
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}

	if manifest.Format != formatter.FormatCSS {
		t.Errorf("expected css format, got %s", manifest.Format)
	}
	if manifest.Total != 2 || manifest.Succeeded != 1 || manifest.Fallbacks != 1 {
		t.Errorf("unexpected counts %+v", manifest)
	}
	if manifest.GeneratedAt.IsZero() {
		t.Error("expected generation time")
	}
	if len(manifest.Entries) != 2 || manifest.Entries[0].URL != "a.png" || !manifest.Entries[1].Fallback {
		t.Errorf("unexpected entries %+v", manifest.Entries)
	}
}

func TestBulkExtract_Progress(t *testing.T) {
	extractor := &mockExtractor{palettes: map[string]palette.ColorPalette{"a.png": navyPalette, "b.png": navyPalette}}
	engine := NewPaletteEngine(extractor, nil, nil)
	progress := make(chan ProgressUpdate, 32)

	_, err := engine.BulkExtract(context.Background(), progress, []string{"a.png", "b.png"}, BulkExtractOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("BulkExtract failed: %v", err)
	}

	counts := map[Phase]int{}
	updates := drain(progress)
	for _, u := range updates {
		counts[u.Phase]++
	}

	if counts[QueueImages] != 2 {
		t.Errorf("expected 2 queue updates, got %d", counts[QueueImages])
	}
	if counts[ExtractPalette] != 2 {
		t.Errorf("expected 2 extract updates, got %d", counts[ExtractPalette])
	}
	if counts[WriteManifest] != 1 {
		t.Errorf("expected 1 manifest update, got %d", counts[WriteManifest])
	}
	if last := updates[len(updates)-1]; last.Phase != WriteManifest {
		t.Errorf("expected manifest update last, got %s", last.Phase)
	}
}

func TestBulkExtract_Errors(t *testing.T) {
	t.Run("no urls", func(t *testing.T) {
		engine := NewPaletteEngine(&mockExtractor{}, nil, nil)
		_, err := engine.BulkExtract(context.Background(), nil, nil, BulkExtractOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("nil extractor", func(t *testing.T) {
		engine := NewPaletteEngine(nil, nil, nil)
		_, err := engine.BulkExtract(context.Background(), nil, []string{"a.png"}, BulkExtractOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		engine := NewPaletteEngine(&mockExtractor{}, nil, nil)
		_, err := engine.BulkExtract(context.Background(), nil, []string{"a.png"}, BulkExtractOpts{
			Format:    "yaml",
			OutputDir: t.TempDir(),
		})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("output directory is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		engine := NewPaletteEngine(&mockExtractor{}, nil, nil)
		_, err := engine.BulkExtract(context.Background(), nil, []string{"a.png"}, BulkExtractOpts{OutputDir: path})
		if err == nil || !strings.Contains(err.Error(), "output directory") {
			t.Errorf("expected output directory error, got %v", err)
		}
	})

	t.Run("write failure is recorded per image", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "palette_001.json"), 0755); err != nil {
			t.Fatal(err)
		}

		extractor := &mockExtractor{palettes: map[string]palette.ColorPalette{"a.png": navyPalette, "b.png": navyPalette}}
		engine := NewPaletteEngine(extractor, nil, nil)
		result, err := engine.BulkExtract(context.Background(), nil, []string{"a.png", "b.png"}, BulkExtractOpts{
			OutputDir: dir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("BulkExtract failed: %v", err)
		}

		if result.Failed != 1 || result.Succeeded != 1 {
			t.Errorf("expected one failure and one success, got %+v", result)
		}
		if result.Results[0].Error == nil || result.Results[0].File != "" {
			t.Errorf("expected first result to fail, got %+v", result.Results[0])
		}
	})

	t.Run("canceled context still writes manifest", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dir := t.TempDir()
		engine := NewPaletteEngine(&mockExtractor{}, nil, nil)
		result, err := engine.BulkExtract(ctx, nil, []string{"a.png", "b.png"}, BulkExtractOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil {
			t.Fatal("expected partial result")
		}
		if len(result.Results) != 0 {
			t.Errorf("expected no results, got %d", len(result.Results))
		}
		th.AssertFileExists(t, filepath.Join(dir, ManifestName))
	})
}
