// package server contains middleware & handlers for the palette HTTP service
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
	"github.com/desertthunder/unilink/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the palette service.
// Implementations handle specific endpoints (palettes, conversions).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Converter is the conversion pipeline the handlers drive. services.ConversionService implements it.
type Converter interface {
	Convert(ctx context.Context, raw string) (*services.Conversion, error)
	Palette(ctx context.Context, imageURL string) (palette.ColorPalette, bool, error)
}

// Opts configures [New].
type Opts struct {
	Converter Converter
	Config    shared.ServerConfig
	Timings   progress.Timings // simulator clock for /api/convert
	Logger    *log.Logger
}

// Server serves the palette API.
type Server struct {
	router *BasicRouter
	addr   string
	logger *log.Logger
}

// New builds the router with logging, recovery, CORS and per-client rate limiting.
func New(opts Opts) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	router := NewBasicRouter()
	router.Use(
		RequestLogger(logger),
		Recoverer(logger),
		CORS(opts.Config.AllowedOrigins),
		RateLimit(NewClientLimiter(opts.Config.RateLimit, max(int(opts.Config.RateLimit), 1))),
	)

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	router.Handler(NewPaletteHandler(opts.Converter, logger))
	router.Handler(NewConvertHandler(opts.Converter, opts.Timings, logger))

	return &Server{router: router, addr: opts.Config.Addr(), logger: logger}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// URL returns the base URL for browsers.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.URL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
