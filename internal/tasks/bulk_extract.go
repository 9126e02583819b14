package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/unilink/internal/formatter"
	"github.com/desertthunder/unilink/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the manifest file written into the output directory.
const ManifestName = "palette_manifest.json"

// BulkExtractOpts contains configuration for bulk palette extraction.
type BulkExtractOpts struct {
	Format     formatter.Format // Output format: json, css, txt
	OutputDir  string           // Base output directory (default: palettes_{epoch})
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Image fetches per second (default: 5)
}

type extractJob struct {
	index int
	url   string
}

// BulkExtract extracts palettes for many images concurrently with rate limiting and progress tracking.
//
// Each palette is written to its own file named by input position. Fallback palettes are written too and flagged
// in the manifest. The manifest is written even when ctx is canceled partway, covering the images that finished.
func (e *PaletteEngine) BulkExtract(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	urls []string,
	opts BulkExtractOpts,
) (*BulkExtractResult, error) {
	if e.extractor == nil {
		return nil, fmt.Errorf("%w: extractor not initialized", shared.ErrServiceUnavailable)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no image urls", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("palettes_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(urls)
	result := &BulkExtractResult{
		TotalImages:     total,
		OutputDirectory: opts.OutputDir,
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan extractJob, total)
	results := make(chan PaletteResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.extractWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, url := range urls {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- extractJob{index: i, url: url}
			e.sendProgress(prog, queueUpdate(i+1, total, url))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byIndex := make([]*PaletteResult, total)
	completed := 0
	for res := range results {
		completed++
		byIndex[res.Index] = &res

		switch {
		case res.Error != nil:
			result.Failed++
		case res.Fallback():
			result.Fallbacks++
		default:
			result.Succeeded++
		}
		e.sendProgress(prog, extractedUpdate(completed, total, res))
	}

	result.Results = make([]PaletteResult, 0, completed)
	for _, res := range byIndex {
		if res != nil {
			result.Results = append(result.Results, *res)
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))

	manifest := result.Manifest(opts.Format)
	manifest.GeneratedAt = time.Now().UTC()
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("extraction completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk extraction finished",
		"total", total, "succeeded", result.Succeeded, "fallbacks", result.Fallbacks, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("bulk extraction interrupted after %d of %d images: %w", completed, total, err)
	}
	return result, nil
}

// extractWorker is a worker goroutine that extracts palettes from the jobs channel.
func (e *PaletteEngine) extractWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan extractJob,
	results chan<- PaletteResult,
	opts BulkExtractOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.extractOne(ctx, job, opts)
	}
}

// extractOne extracts a single palette and writes it in the requested format.
func (e *PaletteEngine) extractOne(ctx context.Context, j extractJob, opts BulkExtractOpts) PaletteResult {
	p, cached := e.palette(ctx, j.url)
	result := PaletteResult{Index: j.index, URL: j.url, Palette: p, Cached: cached}

	path := filepath.Join(opts.OutputDir, fmt.Sprintf("palette_%03d%s", j.index+1, opts.Format.Extension()))
	if err := formatter.WritePalette(p, opts.Format, path); err != nil {
		result.Error = err
		return result
	}
	result.File = path
	return result
}
