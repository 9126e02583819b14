package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/cache"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/repositories"
	"github.com/desertthunder/unilink/internal/services"
	"github.com/desertthunder/unilink/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	resolver   services.ArtworkResolver
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Resolver   services.ArtworkResolver // overrides the resolvers built from config
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		resolver:   opts.Resolver,
	}
}

// SetLogger swaps the logger, used while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, paletteCommand, convertCommand, simulateCommand, cacheCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig replaces the startup config when a command is given an explicit --config path.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if !cmd.IsSet("config") {
		return nil
	}

	path := cmd.String("config")
	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config, r.configPath = config, path
	return nil
}

// paletteConfig maps the [palette] section onto the extractor config.
func paletteConfig(c shared.PaletteConfig) palette.Config {
	return palette.Config{
		CanvasSize:           c.CanvasSize,
		ClusterCount:         c.ClusterCount,
		CenterBias:           c.CenterBias,
		MinSaturationVibrant: c.MinSaturationVibrant,
		LoadTimeout:          c.LoadTimeout.Duration,
	}
}

// progressTimings overlays the [progress] section on the default simulator clock.
func progressTimings(c shared.ProgressConfig) progress.Timings {
	t := progress.DefaultTimings()
	if c.TickMs > 0 {
		t.Tick = time.Duration(c.TickMs) * time.Millisecond
	}
	if c.RapidIntervalMs > 0 {
		t.RapidInterval = time.Duration(c.RapidIntervalMs) * time.Millisecond
	}
	if c.SlowThresholdMs > 0 {
		t.SlowThreshold = time.Duration(c.SlowThresholdMs) * time.Millisecond
	}
	return t
}

// newExtractor builds an extractor. Only local commands pass allowFiles; the server never reads file:// urls.
func (r *Runner) newExtractor(cfg palette.Config, allowFiles bool) *palette.Extractor {
	var opts []palette.LoaderOption
	if allowFiles {
		opts = append(opts, palette.AllowFiles())
	}
	return palette.NewExtractor(palette.ExtractorOpts{
		Config: cfg,
		Loader: palette.NewHTTPLoader(r.httpClient, opts...),
		Logger: shared.WithLogger(r.logger, "component", "extractor"),
	})
}

// newResolver registers Deezer always and Spotify when credentials are configured.
func (r *Runner) newResolver() services.ArtworkResolver {
	if r.resolver != nil {
		return r.resolver
	}

	set := services.NewResolverSet().
		Register(services.Deezer, services.NewDeezerService("", r.httpClient))

	creds := r.config.Credentials.Spotify
	if strings.HasPrefix(creds.ClientID, "your_") {
		r.logger.Debug("spotify resolver disabled", "reason", "placeholder credentials")
		return set
	}
	spotify, err := services.NewSpotifyService(services.SpotifyOpts{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		HTTPClient:   r.httpClient,
	})
	if err != nil {
		r.logger.Debug("spotify resolver disabled", "error", err)
		return set
	}
	return set.Register(services.Spotify, spotify)
}

// openStore opens the palette database. The returned close func is never nil.
func (r *Runner) openStore() (*repositories.PaletteStore, func(), error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, func() {}, err
	}

	repo := repositories.NewPaletteRepository(db)
	store := repositories.NewPaletteStore(repo, r.config.Cache.MaxAge.Duration, shared.WithLogger(r.logger, "component", "store"))
	return store, func() { closeDB(db, r.logger) }, nil
}

func closeDB(db *sql.DB, logger *log.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
}

// newConversionService wires resolvers, extractor, the in-memory cache and, when the database opens, the store.
func (r *Runner) newConversionService(allowFiles bool) (*services.ConversionService, func()) {
	opts := services.ConversionOpts{
		Resolver:  r.newResolver(),
		Extractor: r.newExtractor(paletteConfig(r.config.Palette), allowFiles),
		Cache:     cache.NewTTL[string, palette.ColorPalette](r.config.Cache.TTL.Duration, nil),
		Logger:    shared.WithLogger(r.logger, "component", "conversion"),
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		r.logger.Warn("palette store unavailable, continuing without persistence", "error", err)
	} else {
		opts.Store = store
	}
	return services.NewConversionService(opts), closeStore
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
