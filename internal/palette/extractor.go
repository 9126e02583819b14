package palette

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/shared"
)

// Config tunes extraction. A zero Config is [DefaultConfig]; otherwise non-positive fields take
// their defaults, except MinSaturationVibrant where 0 is a valid threshold and only negatives reset.
type Config struct {
	CanvasSize           int           `toml:"canvas_size" json:"canvasSize"`
	ClusterCount         int           `toml:"cluster_count" json:"clusterCount"`
	CenterBias           float64       `toml:"center_bias" json:"centerBias"`
	MinSaturationVibrant float64       `toml:"min_saturation_vibrant" json:"minSaturationVibrant"`
	LoadTimeout          time.Duration `toml:"load_timeout" json:"loadTimeout"`
}

// DefaultConfig returns the tuned defaults: a 100px canvas, 8 clusters, 1.5 center bias,
// 0.25 vibrant saturation and a 10s load timeout.
func DefaultConfig() Config {
	return Config{
		CanvasSize:           100,
		ClusterCount:         8,
		CenterBias:           1.5,
		MinSaturationVibrant: 0.25,
		LoadTimeout:          10 * time.Second,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	n := c

	if n.CanvasSize <= 0 {
		n.CanvasSize = d.CanvasSize
	}
	if n.ClusterCount <= 0 {
		n.ClusterCount = d.ClusterCount
	}
	if n.CenterBias <= 0 {
		n.CenterBias = d.CenterBias
	}
	if n.MinSaturationVibrant < 0 {
		n.MinSaturationVibrant = d.MinSaturationVibrant
	}
	n.MinSaturationVibrant = clamp01(n.MinSaturationVibrant)
	if n.LoadTimeout <= 0 {
		n.LoadTimeout = d.LoadTimeout
	}
	return n
}

// ColorPalette is the extraction result. Every color is a lowercase "#rrggbb" string.
type ColorPalette struct {
	Dominant      string    `json:"dominant"`
	Vibrant       string    `json:"vibrant"`
	Muted         string    `json:"muted"`
	Dark          string    `json:"dark"`
	Light         string    `json:"light"`
	Complementary string    `json:"complementary"`
	Analogous     [2]string `json:"analogous"`
	Confidence    float64   `json:"confidence"`
}

// IsFallback reports whether p is the brand palette returned on failure.
//
// Real extractions score at least 0.3 for a single cluster; 0 marks the fallback.
func (p ColorPalette) IsFallback() bool {
	return p.Confidence == 0
}

// DominantColor returns the legacy-shaped subset of p.
func (p ColorPalette) DominantColor() DominantColor {
	return DominantColor{
		DominantColor: p.Dominant,
		VibrantColor:  p.Vibrant,
		DarkColor:     p.Dark,
		LightColor:    p.Light,
	}
}

// DominantColor is the older response shape kept for existing consumers.
type DominantColor struct {
	DominantColor string `json:"dominantColor"`
	VibrantColor  string `json:"vibrantColor,omitempty"`
	DarkColor     string `json:"darkColor,omitempty"`
	LightColor    string `json:"lightColor,omitempty"`
}

// BrandPalette returns the fixed product palette used whenever extraction fails.
func BrandPalette() ColorPalette {
	return ColorPalette{
		Dominant:      "#7d56f4",
		Vibrant:       "#9b7bff",
		Muted:         "#8a80a8",
		Dark:          "#2a1b5c",
		Light:         "#ece6ff",
		Complementary: "#04b575",
		Analogous:     [2]string{"#5668f4", "#c456f4"},
		Confidence:    0,
	}
}

// Extractor runs the palette pipeline. It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	config Config
	loader Loader
	logger *log.Logger
}

// ExtractorOpts configures [NewExtractor]. A nil Loader uses an [HTTPLoader] and a nil Logger discards output.
type ExtractorOpts struct {
	Config Config
	Loader Loader
	Logger *log.Logger
}

func NewExtractor(opts ExtractorOpts) *Extractor {
	loader := opts.Loader
	if loader == nil {
		loader = NewHTTPLoader(nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	return &Extractor{config: cfg.normalized(), loader: loader, logger: logger}
}

// Config returns the normalized configuration in use.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract loads imageURL and returns its palette. It never fails: every error resolves to [BrandPalette].
func (e *Extractor) Extract(ctx context.Context, imageURL string) (p ColorPalette) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("palette extraction panicked, using brand palette", "url", imageURL, "panic", r)
			p = BrandPalette()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.config.LoadTimeout)
	defer cancel()

	img, err := e.load(ctx, imageURL)
	if err != nil {
		e.logger.Warn("failed to load image, using brand palette", "url", imageURL, "error", err)
		return BrandPalette()
	}

	p, err = e.extract(img)
	if err != nil {
		e.logger.Warn("palette extraction failed, using brand palette", "url", imageURL, "error", err)
		return BrandPalette()
	}

	e.logger.Debug("extracted palette", "url", imageURL, "dominant", p.Dominant, "confidence", p.Confidence)
	return p
}

type loadResult struct {
	img image.Image
	err error
}

// load bounds the loader by ctx even when the loader itself ignores it.
func (e *Extractor) load(ctx context.Context, imageURL string) (image.Image, error) {
	results := make(chan loadResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- loadResult{err: fmt.Errorf("%w: loader panicked: %v", shared.ErrAPIRequest, r)}
			}
		}()
		img, err := e.loader.Load(ctx, imageURL)
		results <- loadResult{img: img, err: err}
	}()

	select {
	case res := <-results:
		return res.img, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
	}
}

// ExtractImage runs the pipeline on an already decoded image.
func (e *Extractor) ExtractImage(img image.Image) (p ColorPalette) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("palette extraction panicked, using brand palette", "panic", r)
			p = BrandPalette()
		}
	}()

	p, err := e.extract(img)
	if err != nil {
		e.logger.Warn("palette extraction failed, using brand palette", "error", err)
		return BrandPalette()
	}
	return p
}

// ExtractDominant is [Extractor.Extract] reduced to the legacy shape.
func (e *Extractor) ExtractDominant(ctx context.Context, imageURL string) DominantColor {
	return e.Extract(ctx, imageURL).DominantColor()
}

func (e *Extractor) extract(img image.Image) (ColorPalette, error) {
	if img == nil || img.Bounds().Empty() {
		return ColorPalette{}, fmt.Errorf("%w: empty image", shared.ErrInvalidInput)
	}

	canvas := toCanvas(img, e.config.CanvasSize)
	pixels := samplePixels(canvas, e.config.CenterBias)
	if len(pixels) < minPixelSample {
		return ColorPalette{}, fmt.Errorf("%w: only %d usable pixels", shared.ErrInvalidInput, len(pixels))
	}

	clusters := medianCut(pixels, splitDepth(e.config.ClusterCount))
	if len(clusters) == 0 {
		return ColorPalette{}, fmt.Errorf("%w: no clusters", shared.ErrInvalidInput)
	}

	return buildPalette(clusters, e.config), nil
}

func buildPalette(clusters []ColorCluster, cfg Config) ColorPalette {
	r := assignRoles(clusters, cfg.MinSaturationVibrant)
	return ColorPalette{
		Dominant:      r.dominant.Hex,
		Vibrant:       r.vibrant.Hex,
		Muted:         r.muted.Hex,
		Dark:          r.dark.Hex,
		Light:         r.light.Hex,
		Complementary: complementary(r.dominant.HSL),
		Analogous:     analogous(r.dominant.HSL),
		Confidence:    confidence(clusters, cfg.ClusterCount),
	}
}
