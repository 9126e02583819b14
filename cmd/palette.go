package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/unilink/internal/formatter"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
	"github.com/desertthunder/unilink/internal/tasks"
	"github.com/desertthunder/unilink/internal/ui"
	"github.com/urfave/cli/v3"
)

// PaletteExtract extracts the full palette for one image.
//
// Flags override the [palette] config section. Extraction never fails; a bad image prints the brand palette
// and a warning.
func (r *Runner) PaletteExtract(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: image url is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	cfg := paletteConfig(r.config.Palette)
	if cmd.IsSet("canvas-size") {
		cfg.CanvasSize = cmd.Int("canvas-size")
	}
	if cmd.IsSet("clusters") {
		cfg.ClusterCount = cmd.Int("clusters")
	}
	if cmd.IsSet("center-bias") {
		cfg.CenterBias = cmd.Float("center-bias")
	}
	if cmd.IsSet("min-saturation") {
		cfg.MinSaturationVibrant = cmd.Float("min-saturation")
	}
	if cmd.IsSet("timeout") {
		cfg.LoadTimeout = cmd.Duration("timeout")
	}

	r.logger.Info("extracting palette", "url", url, "clusters", cfg.ClusterCount)
	p := r.newExtractor(cfg, true).Extract(ctx, url)
	if p.IsFallback() {
		r.logger.Warn("extraction failed, using brand palette", "url", url)
	}

	if out := cmd.String("output"); out != "" {
		if err := formatter.WritePalette(p, format, out); err != nil {
			return err
		}
		return r.writePlain("✓ Palette written to %s\n", out)
	}

	if cmd.Bool("swatches") {
		return r.writePlain("%s\n", ui.Swatches(p))
	}
	return r.writePalette(p, format, cmd.Bool("pretty"))
}

// PaletteDominant prints the dominant color subset for one image.
func (r *Runner) PaletteDominant(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: image url is required", shared.ErrMissingArgument)
	}

	dominant := r.newExtractor(paletteConfig(r.config.Palette), true).ExtractDominant(ctx, url)
	return r.writeJSON(dominant, cmd.Bool("pretty"))
}

// PaletteBrand prints the palette used whenever extraction fails.
func (r *Runner) PaletteBrand(ctx context.Context, cmd *cli.Command) error {
	p := palette.BrandPalette()
	if cmd.Bool("swatches") {
		return r.writePlain("%s\n", ui.Swatches(p))
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePalette(p, format, true)
}

// PaletteBulk extracts palettes for every URL listed in --input, writing one file per image plus a manifest.
func (r *Runner) PaletteBulk(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	urls, err := readURLs(cmd.String("input"))
	if err != nil {
		return err
	}

	var cacher tasks.PaletteCacher
	store, closeStore, err := r.openStore()
	if err != nil {
		r.logger.Warn("palette store unavailable, extracting everything", "error", err)
	} else {
		cacher = store
	}
	defer closeStore()

	engine := tasks.NewPaletteEngine(r.newExtractor(paletteConfig(r.config.Palette), true), cacher, r.logger)

	opts := tasks.BulkExtractOpts{
		Format:     formatter.Format(cmd.String("format")),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("starting bulk extraction", "images", len(urls), "workers", opts.NumWorkers)
	r.writePlain("Extracting palettes for %d images...\n\n", len(urls))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ExtractPalette:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.BulkExtract(ctx, progressCh, urls, opts)
	close(progressCh)
	<-printed

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Bulk Extraction Complete")
		r.writePlain("Output: %s\n", result.OutputDirectory)
		r.writePlain("Extracted: %d/%d\n", result.Succeeded, result.TotalImages)
		if result.Fallbacks > 0 {
			r.writePlain("Fallback palettes: %d\n", result.Fallbacks)
		}
		if result.Failed > 0 {
			r.writePlain("Failed: %d\n", result.Failed)
		}
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}
	return err
}

func (r *Runner) writePalette(p palette.ColorPalette, format formatter.Format, pretty bool) error {
	data, err := formatter.Render(p, format, pretty)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readURLs reads one URL per line, skipping blanks and # comments.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s contains no urls", shared.ErrMissingArgument, path)
	}
	return urls, nil
}
